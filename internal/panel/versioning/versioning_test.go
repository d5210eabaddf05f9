// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package versioning

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/internal/store/storetest"
)

type ProductResource struct{ compress bool }

func (ProductResource) Model() entity.Model {
	return entity.Model{
		Table:       "products",
		Columns:     []string{"name", "sku", "description", "price", "status"},
		SoftDeletes: true,
		Timestamps:  true,
	}
}

func (ProductResource) Fields(*request.Request) field.Fields {
	return field.Fields{field.ID(), field.Text("Name")}
}

func (r ProductResource) VersionConfig() Config {
	return Config{Enabled: true, MaxVersions: 3, Compress: r.compress}
}

type fixture struct {
	store   store.Store
	service *Service
	typ     *resource.Type
	record  *entity.Record
}

func newFixture(t *testing.T, compress bool) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := storetest.SQLite(t)

	typ, err := resource.NewRegistry(nil).Register(ProductResource{compress: compress})
	require.NoError(t, err)

	record := typ.NewRecord()
	record.Set("name", "v1")
	record.Set("description", "old")
	record.Set("price", 10.0)
	record.Set("status", "active")
	require.NoError(t, st.Insert(context.Background(), record))

	return &fixture{
		store:   st,
		service: NewService(st, observer.NewDispatcher(logger, false), logger, 50),
		typ:     typ,
		record:  record,
	}
}

func (fx *fixture) save(t *testing.T, attributes map[string]any) {
	t.Helper()
	for attribute, value := range attributes {
		fx.record.Set(attribute, value)
	}
	require.NoError(t, fx.store.Update(context.Background(), fx.record))
}

func TestCreateVersion_NumbersAndSnapshot(t *testing.T) {
	for _, compress := range []bool{false, true} {
		fx := newFixture(t, compress)
		ctx := context.Background()

		first, err := fx.service.CreateVersion(ctx, fx.typ, fx.record, "created", map[string]any{"source": "test"}, "u1")
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, 1, first.Version)
		assert.Equal(t, compress, first.Compressed)
		assert.Len(t, first.Checksum, 64)
		assert.Equal(t, "v1", first.Data["name"])
		assert.NotContains(t, first.Data, "id")
		assert.NotContains(t, first.Data, "created_at")

		fx.save(t, map[string]any{"name": "v2"})
		second, err := fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 2, second.Version)

		stored, err := fx.service.GetVersion(ctx, fx.typ, fx.record.KeyString(), 1)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "v1", stored.Data["name"])
		assert.Equal(t, "created", stored.Reason)
		assert.Equal(t, "u1", stored.CreatedBy)
		assert.Equal(t, map[string]any{"source": "test"}, stored.Metadata)
	}
}

func TestCreateVersion_EnforcesRetention(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	for i := range 4 {
		fx.save(t, map[string]any{"price": float64(i)})
		_, err := fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
		require.NoError(t, err)
	}

	versions, err := fx.service.Versions(ctx, fx.typ, fx.record.KeyString())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{versions[0].Version, versions[1].Version, versions[2].Version})
}

func TestGetVersion_MissingAndCorrupt(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	missing, err := fx.service.GetVersion(ctx, fx.typ, fx.record.KeyString(), 9)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
	require.NoError(t, err)

	rows, _, err := fx.store.Select(ctx, versionModel, historyQuery(fx.typ.URIKey(), fx.record.KeyString()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rows[0].Set("data", `{"name":"tampered"}`)
	require.NoError(t, fx.store.Update(ctx, rows[0]))

	corrupt, err := fx.service.GetVersion(ctx, fx.typ, fx.record.KeyString(), 1)
	require.NoError(t, err)
	assert.Nil(t, corrupt)
}

func TestCompareVersions(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	_, err := fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
	require.NoError(t, err)
	fx.save(t, map[string]any{"name": "v2", "description": nil, "sku": "SKU-1"})
	_, err = fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
	require.NoError(t, err)

	comparison, err := fx.service.CompareVersions(ctx, fx.typ, fx.record.KeyString(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, comparison)

	assert.Equal(t, Change{Type: Modified, Old: "v1", New: "v2"}, comparison.Changes["name"])
	assert.Equal(t, Change{Type: Removed, Old: "old", New: nil}, comparison.Changes["description"])
	assert.Equal(t, Change{Type: Added, Old: nil, New: "SKU-1"}, comparison.Changes["sku"])
	assert.NotContains(t, comparison.Changes, "status")

	missing, err := fx.service.CompareVersions(ctx, fx.typ, fx.record.KeyString(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRestoreToVersion(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	_, err := fx.service.CreateVersion(ctx, fx.typ, fx.record, "", nil, "")
	require.NoError(t, err)
	fx.save(t, map[string]any{"name": "v2"})

	restored, err := fx.service.RestoreToVersion(ctx, fx.typ, fx.record, 1, "", "u1")
	require.NoError(t, err)
	assert.True(t, restored)

	reloaded, err := fx.store.Find(ctx, fx.typ.Model(), fx.record.Key(), store.WithTrashed)
	require.NoError(t, err)
	assert.Equal(t, "v1", reloaded.Get("name"))

	versions, err := fx.service.Versions(ctx, fx.typ, fx.record.KeyString())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].Data["name"], "pre-restore state is kept")
	assert.Equal(t, "Before restore to version 1", versions[0].Reason)

	none, err := fx.service.RestoreToVersion(ctx, fx.typ, fx.record, 42, "", "")
	require.NoError(t, err)
	assert.False(t, none)
}

func TestDiff(t *testing.T) {
	changes := Diff(
		map[string]any{"a": 1.0, "b": "x", "c": nil},
		map[string]any{"a": 1.0, "b": "y", "d": true},
	)
	assert.Equal(t, map[string]Change{
		"b": {Type: Modified, Old: "x", New: "y"},
		"d": {Type: Added, Old: nil, New: true},
	}, changes)
}
