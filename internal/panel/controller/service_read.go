// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"context"
	"slices"

	"github.com/taibuivan/panelkit/internal/panel/caching"
	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/pagination"
)

// Sort directions accepted by the index.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

/*
listing turns the index query string into a store query.

It reads "search", "trashed", "sort_field", "sort_direction" and
"filters[key]". Unknown sort columns fall back to the resource default sort,
and the trashed mode only applies to soft-deleting models.

Returns:
  - store.Query: the unpaged query
  - caching.IndexShape: the normalized inputs, echoed back to the client and
    used as the cache key
*/
func (service *Service) listing(req *request.Request, t *resource.Type) (store.Query, caching.IndexShape) {
	shape := caching.IndexShape{
		Search:  req.Param("search"),
		Filters: req.Filters(),
	}

	q := store.Query{}
	t.ApplyIndexQuery(req, &q)

	if shape.Search != "" {
		q.Search = shape.Search
		q.SearchColumns = t.SearchableColumns(req)
	}

	if t.Model().SoftDeletes {
		if trashed := req.Param("trashed"); trashed != "" {
			q.Trashed = store.ParseTrashed(trashed)
			shape.Trashed = trashed
		}
	}
	t.ApplyFilters(req, &q)

	shape.SortField = req.Param("sort_field")
	shape.SortDirection = SortDesc
	if req.Param("sort_direction") == SortAsc {
		shape.SortDirection = SortAsc
	}
	if shape.SortField != "" && slices.Contains(t.SortableColumns(req), shape.SortField) {
		q.OrderBy(shape.SortField, shape.SortDirection == SortDesc)
	} else {
		fallback := t.DefaultSort()
		q.OrderBy(fallback.Column, fallback.Descending)
		shape.SortField = fallback.Column
		shape.SortDirection = SortAsc
		if fallback.Descending {
			shape.SortDirection = SortDesc
		}
	}

	if _, scoped := t.Resource().(resource.IndexQuerier); scoped {
		shape.Scope = req.UserID()
	}
	return q, shape
}

// # Index

// Index lists one page of records with their index fields.
func (service *Service) Index(req *request.Request, uriKey string) (*IndexPayload, pagination.Meta, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	payload, meta, err := service.index(req, t)
	service.observe(t.URIKey(), "index", err)
	return payload, meta, err
}

func (service *Service) index(req *request.Request, t *resource.Type) (*IndexPayload, pagination.Meta, error) {
	if err := service.authorize(req, t, policy.ViewAny, nil); err != nil {
		return nil, pagination.Meta{}, err
	}

	q, shape := service.listing(req, t)
	params := pagination.Resolve(req.ParamInt("page", pagination.DefaultPage), req.ParamInt("per_page", 0), service.bounds)
	q.Limit, q.Offset = params.Limit, params.Offset()
	shape.Page, shape.PerPage = params.Page, params.Limit

	records, total, err := service.cache.RememberIndex(req.Context(), t.Resource(), t.URIKey(), t.Model(), shape,
		func(ctx context.Context) ([]*entity.Record, int, error) {
			return service.store.Select(ctx, t.Model(), q)
		})
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, service.row(req, t, record))
	}

	payload := &IndexPayload{
		Resource:      t.Meta(req),
		Fields:        payloads(t.IndexFields(req)),
		Rows:          rows,
		Search:        shape.Search,
		Filters:       shape.Filters,
		SortField:     shape.SortField,
		SortDirection: shape.SortDirection,
		Trashed:       shape.Trashed,
	}
	return payload, pagination.NewMeta(params.Page, params.Limit, total), nil
}

func (service *Service) row(req *request.Request, t *resource.Type, record *entity.Record) Row {
	fields := t.IndexFields(req).Resolve(record)
	row := Row{
		ID:             record.Key(),
		Title:          t.TitleOf(record),
		Values:         fields.Values(),
		SoftDeleted:    record.Trashed(),
		Authorizations: service.authorizations(req, t, record),
	}
	for _, f := range fields {
		if display := f.DisplayValue(); display != nil {
			if row.Display == nil {
				row.Display = make(map[string]any)
			}
			row.Display[f.Attribute()] = display
		}
	}
	return row
}

// # Detail

// Show returns one record, trashed or not, with its detail fields.
func (service *Service) Show(req *request.Request, uriKey, key string) (*DetailPayload, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	payload, err := service.show(req, t, key)
	service.observe(t.URIKey(), "show", err)
	return payload, err
}

func (service *Service) show(req *request.Request, t *resource.Type, key string) (*DetailPayload, error) {
	record, err := service.find(req, t, key, store.WithTrashed, true)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.View, record); err != nil {
		return nil, err
	}
	return service.detail(req, t, record)
}

// detail resolves the detail payload of record. Resolved fields are cached
// per caller because field visibility depends on who asks.
func (service *Service) detail(req *request.Request, t *resource.Type, record *entity.Record) (*DetailPayload, error) {
	fields, err := caching.RememberFields(req.Context(), service.cache, t.Resource(), t.URIKey(), record.KeyString(), "detail", req.UserID(),
		func(context.Context) ([]field.Payload, error) {
			return payloads(t.DetailFields(req).Resolve(record)), nil
		})
	if err != nil {
		return nil, err
	}

	payload := &DetailPayload{
		Resource:       t.Meta(req),
		ID:             record.Key(),
		Title:          t.TitleOf(record),
		Fields:         fields,
		SoftDeleted:    record.Trashed(),
		Authorizations: service.authorizations(req, t, record),
	}
	if record.Trashed() {
		payload.DaysSinceDeletion = service.trash.DaysSinceDeletion(record)
		payload.PermanentlyDeletable = service.trash.IsPermanentlyDeletable(t, record)
	}
	return payload, nil
}

// # Forms

// CreateSchema returns the empty creation form.
func (service *Service) CreateSchema(req *request.Request, uriKey string) (*FormPayload, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.Create, nil); err != nil {
		return nil, err
	}
	return &FormPayload{
		Resource: t.Meta(req),
		Fields:   payloads(t.CreationFields(req).Resolve(t.NewRecord())),
	}, nil
}

// Edit returns the update form filled with the record's current values.
func (service *Service) Edit(req *request.Request, uriKey, key string) (*FormPayload, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	record, err := service.find(req, t, key, store.ExcludeTrashed, false)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.Update, record); err != nil {
		return nil, err
	}

	fields, err := caching.RememberFields(req.Context(), service.cache, t.Resource(), t.URIKey(), record.KeyString(), "update", req.UserID(),
		func(context.Context) ([]field.Payload, error) {
			return updatePayloads(t.UpdateFields(req).Resolve(record)), nil
		})
	if err != nil {
		return nil, err
	}
	return &FormPayload{Resource: t.Meta(req), ID: record.Key(), Fields: fields}, nil
}
