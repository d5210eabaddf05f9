// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entity describes the persisted records a resource wraps.

A [Model] is the static shape of one table (name, key, columns, soft-delete and
timestamp markers). A [Record] is one live row: its current attributes, the
snapshot loaded from storage, and whether it has been persisted yet.

Records are plain attribute maps. The only writer of attribute values outside
the store is the field fill path.
*/
package entity

import (
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/taibuivan/panelkit/pkg/convert"
)

// # Conventional Columns

const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnDeletedAt = "deleted_at"
)

// # Model

// Model is the static description of one persisted entity type.
type Model struct {
	// Table is the storage table, optionally schema-qualified ("core.product").
	Table string
	// PrimaryKey defaults to [ColumnID] when empty.
	PrimaryKey string
	// Columns lists every persisted column, primary key included.
	Columns []string
	// SoftDeletes marks the type as carrying a [ColumnDeletedAt] column.
	SoftDeletes bool
	// Timestamps marks the type as carrying created/updated columns managed by the store.
	Timestamps bool
}

// KeyName returns the primary key column.
func (m Model) KeyName() string {
	if m.PrimaryKey == "" {
		return ColumnID
	}
	return m.PrimaryKey
}

// HasColumn reports whether column is persisted for this model.
func (m Model) HasColumn(column string) bool {
	if column == m.KeyName() {
		return true
	}
	if m.Timestamps && (column == ColumnCreatedAt || column == ColumnUpdatedAt) {
		return true
	}
	if m.SoftDeletes && column == ColumnDeletedAt {
		return true
	}
	return slices.Contains(m.Columns, column)
}

// AllColumns returns the declared columns plus the managed ones, without duplicates.
func (m Model) AllColumns() []string {
	columns := []string{m.KeyName()}
	add := func(column string) {
		if !slices.Contains(columns, column) {
			columns = append(columns, column)
		}
	}
	for _, column := range m.Columns {
		add(column)
	}
	if m.Timestamps {
		add(ColumnCreatedAt)
		add(ColumnUpdatedAt)
	}
	if m.SoftDeletes {
		add(ColumnDeletedAt)
	}
	return columns
}

// # Record

// Record is one live entity instance.
//
// # Concurrency
//
// Record is not safe for concurrent use. It lives for a single request.
type Record struct {
	model      Model
	attributes map[string]any
	original   map[string]any
	exists     bool
}

// New returns a fresh, unsaved record of the given model.
func New(model Model) *Record {
	return &Record{
		model:      model,
		attributes: make(map[string]any),
		original:   make(map[string]any),
	}
}

// Hydrate returns a persisted record built from a storage row.
func Hydrate(model Model, row map[string]any) *Record {
	record := &Record{
		model:      model,
		attributes: make(map[string]any, len(row)),
		exists:     true,
	}
	for column, value := range row {
		record.attributes[column] = normalize(value)
	}
	record.original = maps.Clone(record.attributes)
	return record
}

// Model returns the record's static description.
func (r *Record) Model() Model { return r.model }

// Exists reports whether the record has been persisted.
func (r *Record) Exists() bool { return r.exists }

// Get returns the attribute value, or nil when unset.
func (r *Record) Get(attribute string) any { return r.attributes[attribute] }

// Has reports whether the attribute carries a value (possibly nil).
func (r *Record) Has(attribute string) bool {
	_, ok := r.attributes[attribute]
	return ok
}

// Set assigns an attribute value.
func (r *Record) Set(attribute string, value any) { r.attributes[attribute] = value }

// Key returns the primary key value.
func (r *Record) Key() any { return r.attributes[r.model.KeyName()] }

// KeyString returns the primary key formatted for URLs and cache keys.
func (r *Record) KeyString() string { return convert.ToString(r.Key()) }

// Attributes returns a copy of the current attributes.
func (r *Record) Attributes() map[string]any { return maps.Clone(r.attributes) }

// Dirty returns the attributes whose value differs from the stored snapshot.
func (r *Record) Dirty() map[string]any {
	dirty := make(map[string]any)
	for attribute, value := range r.attributes {
		previous, ok := r.original[attribute]
		if !ok || !reflect.DeepEqual(previous, value) {
			dirty[attribute] = value
		}
	}
	return dirty
}

// IsDirty reports whether any attribute changed since the last sync.
func (r *Record) IsDirty() bool { return len(r.Dirty()) > 0 }

// Original returns the stored value of attribute as last loaded or saved.
func (r *Record) Original(attribute string) any { return r.original[attribute] }

// MarkPersisted flags the record as stored and syncs the snapshot.
func (r *Record) MarkPersisted() {
	r.exists = true
	r.original = maps.Clone(r.attributes)
}

// MarkRemoved flags the record as no longer stored.
func (r *Record) MarkRemoved() { r.exists = false }

// Checkpoint captures the record's state. Calling the returned function puts
// the record back as it was, e.g. after its transaction rolled back.
func (r *Record) Checkpoint() func() {
	attributes, original, exists := maps.Clone(r.attributes), maps.Clone(r.original), r.exists
	return func() {
		r.attributes, r.original, r.exists = attributes, original, exists
	}
}

// # Soft Delete State

// DeletedAt returns the deletion timestamp, or nil when the record is active.
func (r *Record) DeletedAt() *time.Time {
	if !r.model.SoftDeletes {
		return nil
	}
	return convert.ToTime(r.attributes[ColumnDeletedAt])
}

// Trashed reports whether the record is soft deleted.
func (r *Record) Trashed() bool { return r.DeletedAt() != nil }

// normalize converts driver byte slices into strings so attribute values are
// comparable and JSON friendly.
func normalize(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}
	return value
}
