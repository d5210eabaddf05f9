// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package store defines the persistence contract the panel runs on.

Resources describe their tables with [entity.Model]; a [Store] turns a
[Query] into rows and persists [entity.Record] values. Two implementations
exist: store/postgres (pgx) and store/gormstore (gorm over sqlite or mysql).

Transactions:

	err := st.Transaction(ctx, func(ctx context.Context) error {
	    return st.Insert(ctx, record)
	})

The transaction travels in the context handed to the callback. Every store
call made with that context joins it.
*/
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/pkg/uuid"
)

// # Store Contract

// Store persists entity records.
type Store interface {
	// Select returns one page of rows matching q and the total match count.
	Select(ctx context.Context, model entity.Model, q Query) ([]*entity.Record, int, error)

	// Find loads one row by key. Trashed controls whether soft-deleted rows match.
	// It returns dberr.ErrNotFound when nothing matches.
	Find(ctx context.Context, model entity.Model, key any, trashed TrashedMode) (*entity.Record, error)

	// Insert persists a new record, assigning a key and timestamps when absent.
	Insert(ctx context.Context, record *entity.Record) error

	// Update persists the record's dirty attributes.
	Update(ctx context.Context, record *entity.Record) error

	// Delete removes the row permanently.
	Delete(ctx context.Context, record *entity.Record) error

	// Transaction runs fn atomically. Nested calls join the outer transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// # Query

// TrashedMode selects how soft-deleted rows are treated.
type TrashedMode int

const (
	// ExcludeTrashed hides soft-deleted rows. It is the default.
	ExcludeTrashed TrashedMode = iota
	// WithTrashed includes soft-deleted rows.
	WithTrashed
	// OnlyTrashed returns soft-deleted rows only.
	OnlyTrashed
)

// ParseTrashed maps the "trashed" query value ("with", "only") to a mode.
func ParseTrashed(value string) TrashedMode {
	switch value {
	case "with":
		return WithTrashed
	case "only":
		return OnlyTrashed
	default:
		return ExcludeTrashed
	}
}

// Operator is a comparison applied by a [Condition].
type Operator string

const (
	OpEq      Operator = "="
	OpNotEq   Operator = "<>"
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpLike    Operator = "LIKE"
	OpIn      Operator = "IN"
	OpIsNull  Operator = "IS NULL"
	OpNotNull Operator = "IS NOT NULL"
)

// Condition is one column predicate. Conditions of a query are AND-ed.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
}

// Sort orders results by one column.
type Sort struct {
	Column     string
	Descending bool
}

// Query describes one read.
type Query struct {
	// Search is matched case-insensitively as a substring of any SearchColumns.
	Search        string
	SearchColumns []string

	Conditions []Condition
	Sorts      []Sort
	Trashed    TrashedMode

	// Limit of zero means unbounded.
	Limit  int
	Offset int
}

// Where appends an equality condition.
func (q *Query) Where(column string, value any) *Query {
	return q.WhereOp(column, OpEq, value)
}

// WhereOp appends a condition with an explicit operator.
func (q *Query) WhereOp(column string, operator Operator, value any) *Query {
	q.Conditions = append(q.Conditions, Condition{Column: column, Operator: operator, Value: value})
	return q
}

// WhereIn appends an IN condition.
func (q *Query) WhereIn(column string, values ...any) *Query {
	return q.WhereOp(column, OpIn, values)
}

// OrderBy appends a sort.
func (q *Query) OrderBy(column string, descending bool) *Query {
	q.Sorts = append(q.Sorts, Sort{Column: column, Descending: descending})
	return q
}

// # Helpers Shared By Implementations

// NewKey returns a fresh time-ordered primary key.
func NewKey() string {
	return uuid.New()
}

// PrepareInsert assigns the key and timestamps a new record needs.
func PrepareInsert(record *entity.Record, now time.Time) {
	model := record.Model()
	if record.Get(model.KeyName()) == nil {
		record.Set(model.KeyName(), NewKey())
	}
	if model.Timestamps {
		if record.Get(entity.ColumnCreatedAt) == nil {
			record.Set(entity.ColumnCreatedAt, now)
		}
		record.Set(entity.ColumnUpdatedAt, now)
	}
}

// PrepareUpdate returns the columns to write for an update, touching
// updated_at. Unknown attributes are dropped. It returns nil when nothing changed.
func PrepareUpdate(record *entity.Record, now time.Time) map[string]any {
	model := record.Model()
	changes := make(map[string]any)
	for column, value := range record.Dirty() {
		if column == model.KeyName() || !model.HasColumn(column) {
			continue
		}
		changes[column] = value
	}
	if len(changes) == 0 {
		return nil
	}
	if model.Timestamps {
		record.Set(entity.ColumnUpdatedAt, now)
		changes[entity.ColumnUpdatedAt] = now
	}
	return changes
}

// InsertValues returns the known columns of a record ready for an INSERT.
func InsertValues(record *entity.Record) map[string]any {
	model := record.Model()
	values := make(map[string]any)
	for column, value := range record.Attributes() {
		if model.HasColumn(column) {
			values[column] = value
		}
	}
	return values
}

// LikeEscape is the escape character used in LIKE patterns by every backend.
const LikeEscape = "!"

// LikePattern wraps term in wildcards after escaping LIKE metacharacters.
func LikePattern(term string) string {
	replacer := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return "%" + replacer.Replace(term) + "%"
}

// Validate rejects queries naming columns the model does not persist.
// Column names reach SQL as identifiers, so they must never come from
// unchecked input.
func Validate(model entity.Model, q Query) error {
	check := func(column string) error {
		if !model.HasColumn(column) {
			return fmt.Errorf("store: unknown column %q on %s", column, model.Table)
		}
		return nil
	}
	for _, column := range q.SearchColumns {
		if err := check(column); err != nil {
			return err
		}
	}
	for _, condition := range q.Conditions {
		if err := check(condition.Column); err != nil {
			return err
		}
	}
	for _, order := range q.Sorts {
		if err := check(order.Column); err != nil {
			return err
		}
	}
	return nil
}

// SortedKeys returns the keys of values in lexical order so generated SQL is stable.
func SortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// InValues normalizes the value of an IN condition into a slice.
func InValues(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}
		return values
	case nil:
		return nil
	}
	return []any{value}
}
