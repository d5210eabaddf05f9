// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package gormstore implements [store.Store] with gorm for SQLite and MySQL.

Rows are read into attribute maps, so no per-table Go model is declared.
Identifiers are passed as [clause.Column] values and quoted by the dialect.

SQLite runs on the pure-Go modernc driver:

	db, err := gormstore.Open(config.DriverSQLite, "file:panel.db?_pragma=foreign_keys(1)")

MySQL DSNs must set parseTime=true so DATETIME columns come back as time.Time.
*/
package gormstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	// Pure-Go SQLite driver registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/platform/config"
	"github.com/taibuivan/panelkit/internal/platform/dberr"
	"github.com/taibuivan/panelkit/internal/store"
)

// Open connects gorm to the given driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", driver, err)
	}
	return db, nil
}

type txKey struct{}

// Store is the gorm implementation of [store.Store].
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

var _ store.Store = (*Store)(nil)

func (repository *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return repository.db.WithContext(ctx)
}

// Ping implements [store.Store].
func (repository *Store) Ping(ctx context.Context) error {
	sqlDB, err := repository.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction implements [store.Store].
func (repository *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return repository.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// # Reads

// Select implements [store.Store].
func (repository *Store) Select(ctx context.Context, model entity.Model, q store.Query) ([]*entity.Record, int, error) {
	if err := store.Validate(model, q); err != nil {
		return nil, 0, err
	}

	scoped := scope(repository.conn(ctx).Table(model.Table), model, q).Session(&gorm.Session{})

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, dberr.Wrap(err, "count_"+model.Table)
	}

	page := order(scoped.Select(model.AllColumns()), model, q.Sorts)
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	if q.Offset > 0 {
		page = page.Offset(q.Offset)
	}

	var rows []map[string]any
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, dberr.Wrap(err, "select_"+model.Table)
	}

	return hydrate(model, rows), int(total), nil
}

// Find implements [store.Store].
func (repository *Store) Find(ctx context.Context, model entity.Model, key any, trashed store.TrashedMode) (*entity.Record, error) {
	q := store.Query{Trashed: trashed}
	q.Where(model.KeyName(), key)

	var rows []map[string]any
	err := scope(repository.conn(ctx).Table(model.Table), model, q).
		Select(model.AllColumns()).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, dberr.Wrap(err, "find_"+model.Table)
	}
	if len(rows) == 0 {
		return nil, dberr.ErrNotFound
	}
	return entity.Hydrate(model, rows[0]), nil
}

// # Writes

// Insert implements [store.Store].
func (repository *Store) Insert(ctx context.Context, record *entity.Record) error {
	model := record.Model()
	store.PrepareInsert(record, repository.now().UTC())

	if err := repository.conn(ctx).Table(model.Table).Create(store.InsertValues(record)).Error; err != nil {
		return dberr.Wrap(err, "insert_"+model.Table)
	}

	record.MarkPersisted()
	return nil
}

// Update implements [store.Store].
func (repository *Store) Update(ctx context.Context, record *entity.Record) error {
	model := record.Model()
	changes := store.PrepareUpdate(record, repository.now().UTC())
	if changes == nil {
		return nil
	}

	result := repository.conn(ctx).
		Table(model.Table).
		Where(clause.Eq{Column: clause.Column{Name: model.KeyName()}, Value: record.Key()}).
		Updates(changes)
	if result.Error != nil {
		return dberr.Wrap(result.Error, "update_"+model.Table)
	}
	if result.RowsAffected == 0 {
		return dberr.ErrNotFound
	}

	record.MarkPersisted()
	return nil
}

// Delete implements [store.Store].
func (repository *Store) Delete(ctx context.Context, record *entity.Record) error {
	model := record.Model()
	result := repository.conn(ctx).Exec("DELETE FROM ? WHERE ? = ?",
		clause.Table{Name: model.Table}, clause.Column{Name: model.KeyName()}, record.Key())
	if result.Error != nil {
		return dberr.Wrap(result.Error, "delete_"+model.Table)
	}
	if result.RowsAffected == 0 {
		return dberr.ErrNotFound
	}

	record.MarkRemoved()
	return nil
}

// # Query Building

func scope(db *gorm.DB, model entity.Model, q store.Query) *gorm.DB {
	deletedAt := clause.Column{Name: entity.ColumnDeletedAt}
	if model.SoftDeletes {
		switch q.Trashed {
		case store.ExcludeTrashed:
			db = db.Where(clause.Eq{Column: deletedAt, Value: nil})
		case store.OnlyTrashed:
			db = db.Where(clause.Neq{Column: deletedAt, Value: nil})
		}
	}

	for _, condition := range q.Conditions {
		db = db.Where(conditionExpr(condition))
	}

	if q.Search != "" && len(q.SearchColumns) > 0 {
		pattern := strings.ToLower(store.LikePattern(q.Search))
		ors := make([]clause.Expression, len(q.SearchColumns))
		for i, column := range q.SearchColumns {
			ors[i] = clause.Expr{
				SQL:  "LOWER(?) LIKE ? ESCAPE '" + store.LikeEscape + "'",
				Vars: []any{clause.Column{Name: column}, pattern},
			}
		}
		db = db.Where(clause.Or(ors...))
	}
	return db
}

func conditionExpr(condition store.Condition) clause.Expression {
	column := clause.Column{Name: condition.Column}
	switch condition.Operator {
	case store.OpNotEq:
		return clause.Neq{Column: column, Value: condition.Value}
	case store.OpGt:
		return clause.Gt{Column: column, Value: condition.Value}
	case store.OpGte:
		return clause.Gte{Column: column, Value: condition.Value}
	case store.OpLt:
		return clause.Lt{Column: column, Value: condition.Value}
	case store.OpLte:
		return clause.Lte{Column: column, Value: condition.Value}
	case store.OpLike:
		return clause.Like{Column: column, Value: condition.Value}
	case store.OpIn:
		values := store.InValues(condition.Value)
		if len(values) == 0 {
			return clause.Expr{SQL: "1 = 0"}
		}
		return clause.IN{Column: column, Values: values}
	case store.OpIsNull:
		return clause.Eq{Column: column, Value: nil}
	case store.OpNotNull:
		return clause.Neq{Column: column, Value: nil}
	default:
		return clause.Eq{Column: column, Value: condition.Value}
	}
}

func order(db *gorm.DB, model entity.Model, sorts []store.Sort) *gorm.DB {
	keySorted := false
	for _, sort := range sorts {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column}, Desc: sort.Descending})
		keySorted = keySorted || sort.Column == model.KeyName()
	}
	if !keySorted {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: model.KeyName()}})
	}
	return db
}

func hydrate(model entity.Model, rows []map[string]any) []*entity.Record {
	records := make([]*entity.Record, len(rows))
	for i, row := range rows {
		records[i] = entity.Hydrate(model, row)
	}
	return records
}
