// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package filter provides the built-in index filters.
//
// Every filter ignores values outside its options, so a crafted query string
// can never reach the store as an arbitrary condition.
package filter

import (
	"slices"

	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/slug"
)

// # Select

// SelectFilter narrows a column to one of a fixed set of values.
type SelectFilter struct {
	key     string
	name    string
	column  string
	options []field.Option
}

var _ resource.Filter = (*SelectFilter)(nil)

// Select builds an equality filter on column. The key is derived from name.
func Select(name, column string, options ...field.Option) *SelectFilter {
	return &SelectFilter{key: slug.From(name), name: name, column: column, options: options}
}

// Key implements [resource.Filter].
func (f *SelectFilter) Key() string { return f.key }

// Name implements [resource.Filter].
func (f *SelectFilter) Name() string { return f.name }

// Component implements [resource.Filter].
func (f *SelectFilter) Component() string { return "select-filter" }

// Options implements [resource.Filter].
func (f *SelectFilter) Options(*request.Request) []field.Option { return f.options }

// Apply implements [resource.Filter].
func (f *SelectFilter) Apply(_ *request.Request, q *store.Query, value string) {
	if !hasOption(f.options, value) {
		return
	}
	q.Where(f.column, value)
}

// # Boolean

// BooleanFilter narrows a boolean column.
type BooleanFilter struct {
	key    string
	name   string
	column string
}

var _ resource.Filter = (*BooleanFilter)(nil)

// Boolean builds a true/false filter on column.
func Boolean(name, column string) *BooleanFilter {
	return &BooleanFilter{key: slug.From(name), name: name, column: column}
}

func (f *BooleanFilter) Key() string       { return f.key }
func (f *BooleanFilter) Name() string      { return f.name }
func (f *BooleanFilter) Component() string { return "boolean-filter" }

func (f *BooleanFilter) Options(*request.Request) []field.Option {
	return []field.Option{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}
}

func (f *BooleanFilter) Apply(_ *request.Request, q *store.Query, value string) {
	switch value {
	case "true", "1":
		q.Where(f.column, true)
	case "false", "0":
		q.Where(f.column, false)
	}
}

// # Trashed

// TrashedKey is the filter key of [Trashed].
const TrashedKey = "trashed"

// TrashedFilter switches the index between live, all and trashed rows.
type TrashedFilter struct{}

var _ resource.Filter = TrashedFilter{}

// Trashed builds the soft-delete filter.
func Trashed() TrashedFilter { return TrashedFilter{} }

func (TrashedFilter) Key() string       { return TrashedKey }
func (TrashedFilter) Name() string      { return "Trashed" }
func (TrashedFilter) Component() string { return "select-filter" }

func (TrashedFilter) Options(*request.Request) []field.Option {
	return []field.Option{{Value: "with", Label: "With Trashed"}, {Value: "only", Label: "Only Trashed"}}
}

func (TrashedFilter) Apply(_ *request.Request, q *store.Query, value string) {
	q.Trashed = store.ParseTrashed(value)
}

func hasOption(options []field.Option, value string) bool {
	return slices.ContainsFunc(options, func(option field.Option) bool { return option.Value == value })
}
