// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/store"
)

var productModel = entity.Model{
	Table:       "panel.products",
	Columns:     []string{"name", "price", "status"},
	SoftDeletes: true,
	Timestamps:  true,
}

func TestWhereClause(t *testing.T) {
	q := store.Query{Search: "50%", SearchColumns: []string{"name"}}
	q.Where("status", "active").WhereIn("id", "a", "b")

	args := &arguments{}
	where := whereClause(productModel, q, args)

	assert.Equal(t,
		` WHERE "deleted_at" IS NULL AND "status" = $1 AND "id" IN ($2, $3) AND ("name"::text ILIKE $4 ESCAPE '!')`,
		where,
	)
	assert.Equal(t, []any{"active", "a", "b", "%50!%%"}, args.values)
}

func TestWhereClause_TrashedModes(t *testing.T) {
	only := whereClause(productModel, store.Query{Trashed: store.OnlyTrashed}, &arguments{})
	assert.Equal(t, ` WHERE "deleted_at" IS NOT NULL`, only)

	with := whereClause(productModel, store.Query{Trashed: store.WithTrashed}, &arguments{})
	assert.Empty(t, with)
}

func TestWhereClause_EmptyIn(t *testing.T) {
	q := store.Query{Trashed: store.WithTrashed}
	q.WhereIn("id")
	assert.Equal(t, " WHERE FALSE", whereClause(productModel, q, &arguments{}))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, ` ORDER BY "id"`, orderClause(productModel, nil))
	assert.Equal(t,
		` ORDER BY "price" DESC, "id"`,
		orderClause(productModel, []store.Sort{{Column: "price", Descending: true}}),
	)
	assert.Equal(t, ` ORDER BY "id" ASC`, orderClause(productModel, []store.Sort{{Column: "id"}}))
}

func TestTableQuoting(t *testing.T) {
	assert.Equal(t, `"panel"."products"`, table(productModel))
}
