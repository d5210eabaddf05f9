// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/panelkit/internal/panel/caching"
	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/filter"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/convert"
)

// ProductsKey is the URI key of [ProductResource].
const ProductsKey = "products"

// Product statuses.
const (
	ProductDraft    = "draft"
	ProductActive   = "active"
	ProductArchived = "archived"
)

var productStatuses = []field.Option{
	{Value: ProductDraft, Label: "Draft"},
	{Value: ProductActive, Label: "Active"},
	{Value: ProductArchived, Label: "Archived"},
}

// ProductResource is the catalogue. It uses every optional concern.
type ProductResource struct {
	store store.Store
}

func (ProductResource) Model() entity.Model {
	return entity.Model{
		Table:       "products",
		Columns:     []string{"name", "sku", "description", "price", "status", "featured", "country", "attributes"},
		SoftDeletes: true,
		Timestamps:  true,
	}
}

func (ProductResource) Title() string            { return "name" }
func (ProductResource) Search() []string         { return []string{"name", "sku"} }
func (ProductResource) Group() string            { return "Catalog" }
func (ProductResource) GloballySearchable() bool { return true }

func (ProductResource) Fields(*request.Request) field.Fields {
	return field.Fields{
		field.ID(),
		field.Text("Name").
			Rules("required", "max:255").
			UpdateRules("sometimes", "required", "max:255").
			Sortable().Searchable(),
		field.Text("SKU", "sku").Rules("nullable", "max:64").Nullable(),
		field.Textarea("Description").Nullable(),
		field.Currency("Price", "USD").
			Rules("required", "numeric", "min:0").
			UpdateRules("sometimes", "required", "numeric", "min:0").
			Sortable(),
		field.Select("Status").WithOptions(productStatuses...).Rules("sometimes", "in:draft,active,archived"),
		field.Boolean("Featured").Rules("sometimes", "boolean"),
		field.Country("Country").Nullable(),
		field.KeyValue("Attributes").Nullable(),
		field.DateTime("Created At", entity.ColumnCreatedAt).Readonly().ExceptOnForms(),
	}
}

func (ProductResource) Filters(*request.Request) []resource.Filter {
	return []resource.Filter{
		filter.Select("Status", "status", productStatuses...),
		filter.Boolean("Featured", "featured"),
		filter.Trashed(),
	}
}

func (r ProductResource) Actions(*request.Request) []resource.Action {
	return []resource.Action{
		statusAction{store: r.store, key: "publish", name: "Publish", status: ProductActive},
		statusAction{store: r.store, key: "archive", name: "Archive", status: ProductArchived, destructive: true},
	}
}

// # Concerns

func (ProductResource) CacheConfig() caching.Config {
	return caching.Config{Enabled: true, TTL: 10 * time.Minute}
}

func (ProductResource) TrashConfig() trash.Config { return trash.Config{RetentionDays: 30} }

func (ProductResource) ExportConfig() export.Config {
	return export.Config{
		MaxRecords: 5000,
		Transforms: map[string]export.TransformFunc{
			"price": func(value any, _ *entity.Record) any {
				if amount, ok := convert.AsFloat(value); ok {
					return fmt.Sprintf("%.2f", amount)
				}
				return value
			},
		},
	}
}

func (ProductResource) VersionConfig() versioning.Config {
	return versioning.Config{Enabled: true, MaxVersions: 20, Compress: true}
}

// Observers keeps SKUs upper-cased and trimmed, and files new products as
// drafts unless a status was given.
func (ProductResource) Observers() []observer.Observer {
	normalize := func(_ context.Context, record *entity.Record) error {
		if sku := strings.ToUpper(strings.TrimSpace(convert.ToString(record.Get("sku")))); sku != "" {
			record.Set("sku", sku)
		}
		return nil
	}
	return []observer.Observer{observer.Funcs{
		observer.Creating: func(ctx context.Context, record *entity.Record) error {
			if record.Get("status") == nil {
				record.Set("status", ProductDraft)
			}
			return normalize(ctx, record)
		},
		observer.Updating: normalize,
	}}
}

// # Actions

// statusAction moves the selected products to one status.
type statusAction struct {
	store       store.Store
	key, name   string
	status      string
	destructive bool
}

func (action statusAction) Key() string                          { return action.key }
func (action statusAction) Name() string                         { return action.name }
func (action statusAction) Destructive() bool                    { return action.destructive }
func (action statusAction) Fields(*request.Request) field.Fields { return nil }

func (action statusAction) Handle(ctx context.Context, _ *request.Request, records []*entity.Record) (resource.ActionResult, error) {
	changed := 0
	for _, record := range records {
		if record.Get("status") == action.status {
			continue
		}
		record.Set("status", action.status)
		if err := action.store.Update(ctx, record); err != nil {
			return resource.ActionResult{}, err
		}
		changed++
	}
	return resource.Message(fmt.Sprintf("%d of %d products moved to %s", changed, len(records), action.status)), nil
}
