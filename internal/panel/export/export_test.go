// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/internal/store/storetest"
)

var userModel = entity.Model{
	Table:      "users",
	Columns:    []string{"name", "email", "password", "role", "remember_token"},
	Timestamps: true,
}

type UserResource struct{}

func (UserResource) Model() entity.Model { return userModel }
func (UserResource) Fields(*request.Request) field.Fields {
	return field.Fields{
		field.Text("Name"),
		field.Email("Email"),
		field.Text("Remember Token"),
		field.Password("Password"),
		field.Select("Role").WithOptions(field.Option{Value: "admin", Label: "Administrator"}),
	}
}
func (UserResource) ExportConfig() export.Config {
	return export.Config{
		MaxRecords: 2,
		Transforms: map[string]export.TransformFunc{
			"email": func(value any, _ *entity.Record) any { return strings.ToUpper(value.(string)) },
		},
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func seed(t *testing.T) (store.Store, *resource.Type) {
	t.Helper()
	st := storetest.SQLite(t)
	typ, err := resource.NewRegistry(nil).Register(UserResource{})
	require.NoError(t, err)

	for _, name := range []string{"ann", "bob", "cat"} {
		record := typ.NewRecord()
		record.Set("name", name)
		record.Set("email", name+"@example.com")
		record.Set("password", "hash")
		record.Set("remember_token", "secret")
		record.Set("role", "admin")
		require.NoError(t, st.Insert(context.Background(), record))
	}
	return st, typ
}

func sortedByName() store.Query {
	var q store.Query
	q.OrderBy("name", false)
	return q
}

func TestExport_CSV(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(st, discard, 100)
	req := request.New(context.Background(), nil, nil, nil)

	result := service.Export(context.Background(), typ, req, sortedByName(), export.CSV, 50)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, 2, result.Count, "clamped to the resource cap")
	assert.True(t, strings.HasPrefix(result.Filename, "users-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	rows, err := csv.NewReader(bytes.NewReader(result.Content)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Email", "Role"},
		{"ann", "ANN@EXAMPLE.COM", "Administrator"},
		{"bob", "BOB@EXAMPLE.COM", "Administrator"},
	}, rows)
}

func TestExport_JSONExcludesSecrets(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(st, discard, 100)
	req := request.New(context.Background(), nil, nil, nil)

	result := service.Export(context.Background(), typ, req, sortedByName(), export.JSON, 1)
	require.True(t, result.Success)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	require.Len(t, decoded, 1)
	assert.NotContains(t, decoded[0], "password")
	assert.NotContains(t, decoded[0], "remember_token")
	assert.Equal(t, "ann", decoded[0]["name"])
}

func TestExport_XLSX(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(st, discard, 100)
	req := request.New(context.Background(), nil, nil, nil)

	result := service.Export(context.Background(), typ, req, sortedByName(), export.XLSX, 0)
	require.True(t, result.Success, result.Message)

	book, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", header)

	first, err := book.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ann", first)
}

func TestExport_XMLAndPDF(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(st, discard, 100)
	req := request.New(context.Background(), nil, nil, nil)

	xmlResult := service.Export(context.Background(), typ, req, sortedByName(), export.XML, 0)
	require.True(t, xmlResult.Success)
	assert.Contains(t, string(xmlResult.Content), "<name>ann</name>")

	pdfResult := service.Export(context.Background(), typ, req, sortedByName(), export.PDF, 0)
	require.True(t, pdfResult.Success, pdfResult.Message)
	assert.True(t, bytes.HasPrefix(pdfResult.Content, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", pdfResult.ContentType)
}

func TestExport_UnknownFormat(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(st, discard, 100)

	result := service.Export(context.Background(), typ, request.New(context.Background(), nil, nil, nil), store.Query{}, export.Format("docx"), 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "docx")
}

type failingStore struct{ store.Store }

func (failingStore) Select(context.Context, entity.Model, store.Query) ([]*entity.Record, int, error) {
	return nil, 0, errors.New("database is locked")
}

func TestExport_StoreFailureBecomesResult(t *testing.T) {
	st, typ := seed(t)
	service := export.NewService(failingStore{st}, discard, 100)

	result := service.Export(context.Background(), typ, request.New(context.Background(), nil, nil, nil), store.Query{}, export.CSV, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "database is locked")
}

func TestLimit(t *testing.T) {
	_, typ := seed(t)
	service := export.NewService(nil, discard, 100)

	assert.Equal(t, 2, service.Limit(typ, 0))
	assert.Equal(t, 1, service.Limit(typ, 1))
	assert.Equal(t, 2, service.Limit(typ, 1000))
}

func TestParseFormat(t *testing.T) {
	format, ok := export.ParseFormat("Excel")
	assert.True(t, ok)
	assert.Equal(t, export.XLSX, format)

	_, ok = export.ParseFormat("docx")
	assert.False(t, ok)
}
