// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres implements [store.Store] on a pgx connection pool.
//
// # Architecture
//
// SQL is generated from the model description with every identifier quoted
// through [pgx.Identifier]. Values always travel as positional arguments.
// Transactions are carried in the context so nested store calls join them.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/platform/dberr"
	platformpg "github.com/taibuivan/panelkit/internal/platform/postgres"
	"github.com/taibuivan/panelkit/internal/store"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txKey struct{}

// Store is the pgx implementation of [store.Store].
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New wraps a connected pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

var _ store.Store = (*Store)(nil)

func (repository *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return repository.pool
}

// Ping implements [store.Store].
func (repository *Store) Ping(ctx context.Context) error {
	return platformpg.Ping(ctx, repository.pool)
}

// Transaction implements [store.Store].
func (repository *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(ctx), "commit_tx")
}

// # Reads

// Select implements [store.Store].
func (repository *Store) Select(ctx context.Context, model entity.Model, q store.Query) ([]*entity.Record, int, error) {
	if err := store.Validate(model, q); err != nil {
		return nil, 0, err
	}

	args := &arguments{}
	where := whereClause(model, q, args)

	countSQL := fmt.Sprintf("SELECT count(*) FROM %s%s", table(model), where)
	var total int
	if err := repository.conn(ctx).QueryRow(ctx, countSQL, args.values...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_"+model.Table)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM %s%s%s", columns(model), table(model), where, orderClause(model, q.Sorts))
	if q.Limit > 0 {
		selectSQL += " LIMIT " + args.add(q.Limit)
	}
	if q.Offset > 0 {
		selectSQL += " OFFSET " + args.add(q.Offset)
	}

	records, err := repository.query(ctx, model, selectSQL, args.values)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Find implements [store.Store].
func (repository *Store) Find(ctx context.Context, model entity.Model, key any, trashed store.TrashedMode) (*entity.Record, error) {
	q := store.Query{Trashed: trashed, Limit: 1}
	q.Where(model.KeyName(), key)

	args := &arguments{}
	findSQL := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", columns(model), table(model), whereClause(model, q, args))

	records, err := repository.query(ctx, model, findSQL, args.values)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, dberr.ErrNotFound
	}
	return records[0], nil
}

func (repository *Store) query(ctx context.Context, model entity.Model, sql string, args []any) ([]*entity.Record, error) {
	rows, err := repository.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "select_"+model.Table)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_"+model.Table)
	}

	records := make([]*entity.Record, len(maps))
	for i, row := range maps {
		records[i] = entity.Hydrate(model, row)
	}
	return records, nil
}

// # Writes

// Insert implements [store.Store].
func (repository *Store) Insert(ctx context.Context, record *entity.Record) error {
	model := record.Model()
	store.PrepareInsert(record, repository.now().UTC())

	values := store.InsertValues(record)
	keys := store.SortedKeys(values)

	args := &arguments{}
	placeholders := make([]string, len(keys))
	quoted := make([]string, len(keys))
	for i, column := range keys {
		quoted[i] = ident(column)
		placeholders[i] = args.add(values[column])
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table(model), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	if _, err := repository.conn(ctx).Exec(ctx, insertSQL, args.values...); err != nil {
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

	args := &arguments{}
	assignments := make([]string, 0, len(changes))
	for _, column := range store.SortedKeys(changes) {
		assignments = append(assignments, ident(column)+" = "+args.add(changes[column]))
	}

	updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table(model), strings.Join(assignments, ", "), ident(model.KeyName()), args.add(record.Key()))

	tag, err := repository.conn(ctx).Exec(ctx, updateSQL, args.values...)
	if err != nil {
		return dberr.Wrap(err, "update_"+model.Table)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	record.MarkPersisted()
	return nil
}

// Delete implements [store.Store].
func (repository *Store) Delete(ctx context.Context, record *entity.Record) error {
	model := record.Model()
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table(model), ident(model.KeyName()))

	tag, err := repository.conn(ctx).Exec(ctx, deleteSQL, record.Key())
	if err != nil {
		return dberr.Wrap(err, "delete_"+model.Table)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	record.MarkRemoved()
	return nil
}
