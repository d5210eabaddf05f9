// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package resource turns declarative resource definitions into the runtime
[Type] the controller drives.

A resource implements [Resource] and, optionally, any of the capability
interfaces below. Capabilities are detected once, when the resource is
registered, and recorded on its [Type].

	type ProductResource struct{}

	func (ProductResource) Model() entity.Model { return productModel }
	func (ProductResource) Fields(req *request.Request) field.Fields {
	    return field.Fields{field.ID(), field.Text("Name").Sortable().Rules("required")}
	}

Cross-cutting concerns (caching, trash, export, versioning, observers) declare
their own capability interfaces in their packages.
*/
package resource

import (
	"context"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/store"
)

// Resource pairs an entity model with its field schema.
type Resource interface {
	Model() entity.Model
	Fields(req *request.Request) field.Fields
}

// # Optional Capabilities

// Titled names the attribute used as a record's display label.
type Titled interface{ Title() string }

// Searchable declares explicit search columns.
type Searchable interface{ Search() []string }

// Labeled overrides the derived labels.
type Labeled interface {
	Label() string
	SingularLabel() string
}

// URIKeyed overrides the derived URI key.
type URIKeyed interface{ URIKey() string }

// Grouped places the resource under a navigation group.
type Grouped interface{ Group() string }

// GloballySearchable opts the resource into global search.
type GloballySearchable interface{ GloballySearchable() bool }

// Filterable exposes index filters.
type Filterable interface {
	Filters(req *request.Request) []Filter
}

// Actionable exposes actions runnable on selected records.
type Actionable interface {
	Actions(req *request.Request) []Action
}

// IndexQuerier scopes the index listing query.
type IndexQuerier interface {
	IndexQuery(req *request.Request, q *store.Query)
}

// DetailQuerier scopes the query locating a single record.
type DetailQuerier interface {
	DetailQuery(req *request.Request, q *store.Query)
}

// Authorizer overrides policy checks. decided=false defers to the policy.
type Authorizer interface {
	AuthorizedTo(req *request.Request, ability policy.Ability, record *entity.Record) (allowed, decided bool)
}

// # Filters

// Filter narrows an index query from a request-provided value.
type Filter interface {
	// Key is the query parameter name: filters[<key>]=value.
	Key() string
	Name() string
	Component() string
	Options(req *request.Request) []field.Option

	// Apply mutates q for value. Values outside the options are ignored.
	Apply(req *request.Request, q *store.Query, value string)
}

// FilterPayload is the JSON shape of a filter.
type FilterPayload struct {
	Key       string         `json:"key"`
	Name      string         `json:"name"`
	Component string         `json:"component"`
	Options   []field.Option `json:"options"`
}

// # Actions

// Action runs against a set of selected records.
type Action interface {
	// Key is the URI segment used to invoke the action.
	Key() string
	Name() string
	Fields(req *request.Request) field.Fields
	Handle(ctx context.Context, req *request.Request, records []*entity.Record) (ActionResult, error)
}

// Destructive marks actions that confirm before running.
type Destructive interface{ Destructive() bool }

// ActionResult is returned to the client after an action ran.
type ActionResult struct {
	Message  string `json:"message,omitempty"`
	Danger   string `json:"danger,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Message builds a success result.
func Message(text string) ActionResult { return ActionResult{Message: text} }

// Danger builds an error result.
func Danger(text string) ActionResult { return ActionResult{Danger: text} }

// ActionPayload is the JSON shape of an action.
type ActionPayload struct {
	Key         string          `json:"uriKey"`
	Name        string          `json:"name"`
	Destructive bool            `json:"destructive"`
	Fields      []field.Payload `json:"fields"`
}
