// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resource

import (
	"slices"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/store"
)

// Type is a registered resource: the definition plus everything derived
// from it once at registration.
//
// # Concurrency
//
// Type is immutable after registration and safe for concurrent use. Field
// values are built fresh per call, so resolved state never leaks between
// requests.
type Type struct {
	resource Resource
	names    Names
	model    entity.Model
	group    string
	policies *policy.Registry
}

// Resource returns the definition.
func (t *Type) Resource() Resource { return t.resource }

// Name returns the Go type name of the definition.
func (t *Type) Name() string { return t.names.Name }

// URIKey returns the slug addressing the resource in routes.
func (t *Type) URIKey() string { return t.names.URIKey }

// Label returns the plural display label.
func (t *Type) Label() string { return t.names.Label }

// SingularLabel returns the singular display label.
func (t *Type) SingularLabel() string { return t.names.SingularLabel }

// Group returns the navigation group, or "".
func (t *Type) Group() string { return t.group }

// Model returns the wrapped entity model.
func (t *Type) Model() entity.Model { return t.model }

// NewRecord returns a fresh, unsaved entity.
func (t *Type) NewRecord() *entity.Record { return entity.New(t.model) }

// Title returns the attribute used as a record label. It defaults to the primary key.
func (t *Type) Title() string {
	if titled, ok := t.resource.(Titled); ok && titled.Title() != "" {
		return titled.Title()
	}
	return t.model.KeyName()
}

// TitleOf returns the display label of a record.
func (t *Type) TitleOf(record *entity.Record) any {
	return record.Get(t.Title())
}

// # Fields

// Fields returns every field regardless of context.
func (t *Type) Fields(req *request.Request) field.Fields {
	return t.resource.Fields(req)
}

// AvailableFields returns the fields the request may see.
func (t *Type) AvailableFields(req *request.Request) field.Fields {
	return t.Fields(req).Filter(func(f *field.Field) bool { return f.Authorize(req) })
}

// IndexFields returns available fields shown on index listings.
func (t *Type) IndexFields(req *request.Request) field.Fields {
	return t.AvailableFields(req).Filter((*field.Field).IsShownOnIndex)
}

// DetailFields returns available fields shown on the detail view.
func (t *Type) DetailFields(req *request.Request) field.Fields {
	return t.AvailableFields(req).Filter((*field.Field).IsShownOnDetail)
}

// CreationFields returns available fields shown on the creation form.
func (t *Type) CreationFields(req *request.Request) field.Fields {
	return t.AvailableFields(req).Filter((*field.Field).IsShownOnCreation)
}

// UpdateFields returns available fields shown on the update form.
func (t *Type) UpdateFields(req *request.Request) field.Fields {
	return t.AvailableFields(req).Filter((*field.Field).IsShownOnUpdate)
}

// ResolveFields resolves every available field against record.
// It mutates the fields' value slots, never the record.
func (t *Type) ResolveFields(req *request.Request, record *entity.Record) field.Fields {
	return t.AvailableFields(req).Resolve(record)
}

// Fill writes request input into record through the creation fields for a
// new record, or the update fields for a persisted one.
func (t *Type) Fill(req *request.Request, record *entity.Record) error {
	fields := t.UpdateFields(req)
	if !record.Exists() {
		fields = t.CreationFields(req)
	}
	for _, f := range fields {
		if err := f.Fill(req, record); err != nil {
			return err
		}
	}
	return nil
}

// # Validation Rules

// CreationRules assembles the rules of the creation fields: base rules
// united with creation rules.
func (t *Type) CreationRules(req *request.Request) map[string][]string {
	rules := make(map[string][]string)
	for _, f := range t.CreationFields(req) {
		if assembled := f.CreationValidationRules(); len(assembled) > 0 {
			rules[f.Attribute()] = assembled
		}
	}
	return rules
}

// UpdateRules assembles the rules of the update fields: update rules when
// present, otherwise base rules.
func (t *Type) UpdateRules(req *request.Request) map[string][]string {
	rules := make(map[string][]string)
	for _, f := range t.UpdateFields(req) {
		if assembled := f.UpdateValidationRules(); len(assembled) > 0 {
			rules[f.Attribute()] = assembled
		}
	}
	return rules
}

// # Authorization

// AuthorizedTo reports whether the request may perform ability on record.
// A resource-level [Authorizer] decides first; otherwise the bound policy
// answers, with a nil user always denied.
func (t *Type) AuthorizedTo(req *request.Request, ability policy.Ability, record *entity.Record) bool {
	if authorizer, ok := t.resource.(Authorizer); ok {
		if allowed, decided := authorizer.AuthorizedTo(req, ability, record); decided {
			return allowed
		}
	}
	return t.policies.Authorize(req.Context(), t.URIKey(), t.Name(), req.User(), ability, record)
}

// # Query Shape

// SearchableColumns returns the union of explicit search columns and
// searchable fields, falling back to the title attribute.
func (t *Type) SearchableColumns(req *request.Request) []string {
	var columns []string
	if searchable, ok := t.resource.(Searchable); ok {
		columns = append(columns, searchable.Search()...)
	}
	for _, f := range t.Fields(req) {
		if f.IsSearchable() && !slices.Contains(columns, f.Attribute()) {
			columns = append(columns, f.Attribute())
		}
	}
	if len(columns) == 0 {
		columns = []string{t.Title()}
	}
	return columns
}

// IsSearchable reports whether the index accepts a search term.
func (t *Type) IsSearchable(req *request.Request) bool {
	return len(t.SearchableColumns(req)) > 0
}

// SortableColumns returns the columns an index may be sorted by: sortable
// index fields, the primary key and the managed timestamps.
func (t *Type) SortableColumns(req *request.Request) []string {
	columns := []string{t.model.KeyName()}
	if t.model.Timestamps {
		columns = append(columns, entity.ColumnCreatedAt, entity.ColumnUpdatedAt)
	}
	for _, f := range t.IndexFields(req) {
		if f.IsSortable() && t.model.HasColumn(f.Attribute()) && !slices.Contains(columns, f.Attribute()) {
			columns = append(columns, f.Attribute())
		}
	}
	return columns
}

// DefaultSort is newest first when timestamps exist, otherwise by key.
func (t *Type) DefaultSort() store.Sort {
	if t.model.Timestamps {
		return store.Sort{Column: entity.ColumnCreatedAt, Descending: true}
	}
	return store.Sort{Column: t.model.KeyName(), Descending: true}
}

// ApplyIndexQuery lets the resource scope an index query.
func (t *Type) ApplyIndexQuery(req *request.Request, q *store.Query) {
	if scoped, ok := t.resource.(IndexQuerier); ok {
		scoped.IndexQuery(req, q)
	}
}

// ApplyDetailQuery lets the resource scope a single-record query.
func (t *Type) ApplyDetailQuery(req *request.Request, q *store.Query) {
	if scoped, ok := t.resource.(DetailQuerier); ok {
		scoped.DetailQuery(req, q)
	}
}

// # Filters & Actions

// Filters returns the resource's filters.
func (t *Type) Filters(req *request.Request) []Filter {
	if filterable, ok := t.resource.(Filterable); ok {
		return filterable.Filters(req)
	}
	return nil
}

// Actions returns the resource's actions.
func (t *Type) Actions(req *request.Request) []Action {
	if actionable, ok := t.resource.(Actionable); ok {
		return actionable.Actions(req)
	}
	return nil
}

// FindAction returns the action with key, or nil.
func (t *Type) FindAction(req *request.Request, key string) Action {
	for _, action := range t.Actions(req) {
		if action.Key() == key {
			return action
		}
	}
	return nil
}

// ApplyFilters applies every filter whose key appears in the request.
func (t *Type) ApplyFilters(req *request.Request, q *store.Query) {
	values := req.Filters()
	for _, filter := range t.Filters(req) {
		if value, ok := values[filter.Key()]; ok {
			filter.Apply(req, q, value)
		}
	}
}

// # Metadata

// Meta is the navigation payload of a resource.
type Meta struct {
	URIKey             string          `json:"uriKey"`
	Label              string          `json:"label"`
	SingularLabel      string          `json:"singularLabel"`
	Group              string          `json:"group,omitempty"`
	Title              string          `json:"title"`
	Searchable         bool            `json:"searchable"`
	GloballySearchable bool            `json:"globallySearchable"`
	SoftDeletes        bool            `json:"softDeletes"`
	Filters            []FilterPayload `json:"filters,omitempty"`
	Actions            []ActionPayload `json:"actions,omitempty"`
}

// Meta describes the resource for navigation and index rendering.
func (t *Type) Meta(req *request.Request) Meta {
	meta := Meta{
		URIKey:        t.URIKey(),
		Label:         t.Label(),
		SingularLabel: t.SingularLabel(),
		Group:         t.Group(),
		Title:         t.Title(),
		Searchable:    t.IsSearchable(req),
		SoftDeletes:   t.model.SoftDeletes,
	}
	if global, ok := t.resource.(GloballySearchable); ok {
		meta.GloballySearchable = global.GloballySearchable()
	}
	for _, filter := range t.Filters(req) {
		meta.Filters = append(meta.Filters, FilterPayload{
			Key:       filter.Key(),
			Name:      filter.Name(),
			Component: filter.Component(),
			Options:   filter.Options(req),
		})
	}
	for _, action := range t.Actions(req) {
		payload := ActionPayload{Key: action.Key(), Name: action.Name()}
		if destructive, ok := action.(Destructive); ok {
			payload.Destructive = destructive.Destructive()
		}
		for _, f := range action.Fields(req) {
			payload.Fields = append(payload.Fields, f.Payload())
		}
		meta.Actions = append(meta.Actions, payload)
	}
	return meta
}
