// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package controller serves every registered resource through one generic
request pipeline.

# Pipeline

Each operation resolves the resource type by URI key, authorizes the caller
through the resource or its policy, validates input against the field rules,
writes through the store inside a transaction and finally emits observer
events. Events named "-ing" run inside the transaction and may abort it;
"-ed" events are delivered after commit.

# Concerns

Caching, soft deletes, exports and version history are optional. A resource
opts into each one by implementing the capability interface declared in the
concern's package.
*/
package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/panelkit/internal/panel/caching"
	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/metrics"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/convert"
	"github.com/taibuivan/panelkit/pkg/pagination"
	"github.com/taibuivan/panelkit/pkg/slice"
)

// Options wires the collaborators of a [Service]. Registry and Store are
// required; every other collaborator may be nil.
type Options struct {
	Registry   *resource.Registry
	Store      store.Store
	Dispatcher *observer.Dispatcher
	Cache      *caching.Service
	Trash      *trash.Service
	Exports    *export.Service
	Versions   *versioning.Service
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Bounds     pagination.Bounds
}

// Service runs the resource pipeline.
type Service struct {
	registry   *resource.Registry
	store      store.Store
	dispatcher *observer.Dispatcher
	cache      *caching.Service
	trash      *trash.Service
	exports    *export.Service
	versions   *versioning.Service
	metrics    *metrics.Metrics
	logger     *slog.Logger
	bounds     pagination.Bounds
}

// NewService fills missing optional collaborators with defaults backed by
// the same store.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = observer.NewDispatcher(logger, false)
	}
	if opts.Trash == nil {
		opts.Trash = trash.NewService(opts.Store, opts.Dispatcher, logger, 0)
	}
	if opts.Exports == nil {
		opts.Exports = export.NewService(opts.Store, logger, 0)
	}
	if opts.Versions == nil {
		opts.Versions = versioning.NewService(opts.Store, opts.Dispatcher, logger, 0)
	}
	if opts.Bounds == (pagination.Bounds{}) {
		opts.Bounds = pagination.DefaultBounds()
	}

	return &Service{
		registry:   opts.Registry,
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		cache:      opts.Cache,
		trash:      opts.Trash,
		exports:    opts.Exports,
		versions:   opts.Versions,
		metrics:    opts.Metrics,
		logger:     logger,
		bounds:     opts.Bounds,
	}
}

// Registry returns the resource registry the service serves.
func (service *Service) Registry() *resource.Registry { return service.registry }

// # Helpers

func (service *Service) locate(uriKey string) (*resource.Type, error) {
	t, ok := service.registry.Get(uriKey)
	if !ok {
		return nil, apperr.NotFound("Resource")
	}
	return t, nil
}

func (service *Service) authorize(req *request.Request, t *resource.Type, ability policy.Ability, record *entity.Record) error {
	if !t.AuthorizedTo(req, ability, record) {
		return apperr.Forbidden("This action is unauthorized")
	}
	return nil
}

// observe records the outcome of one operation.
func (service *Service) observe(uriKey, operation string, err error) {
	service.metrics.ObserveOperation(uriKey, operation, outcomeOf(err))
}

func outcomeOf(err error) metrics.Outcome {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	appErr := apperr.As(err)
	if appErr == nil {
		return metrics.OutcomeError
	}
	switch appErr.HTTPStatus {
	case http.StatusForbidden, http.StatusUnauthorized:
		return metrics.OutcomeForbidden
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return metrics.OutcomeInvalid
	case http.StatusNotFound:
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

/*
find loads one record of t by key.

Parameters:
  - mode: how soft-deleted rows match
  - cached: read through the record cache; only used for plain detail reads

Returns:
  - *entity.Record: the record
  - error: NOT_FOUND when no row matches the detail query
*/
func (service *Service) find(req *request.Request, t *resource.Type, key string, mode store.TrashedMode, cached bool) (*entity.Record, error) {
	load := func(ctx context.Context) (*entity.Record, error) {
		q := store.Query{Trashed: mode, Limit: 1}
		q.Where(t.Model().KeyName(), key)
		t.ApplyDetailQuery(req, &q)

		records, _, err := service.store.Select(ctx, t.Model(), q)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, apperr.NotFound(t.SingularLabel())
		}
		return records[0], nil
	}

	// Scoped detail queries depend on the caller and bypass the shared cache.
	if _, scoped := t.Resource().(resource.DetailQuerier); scoped || !cached {
		return load(req.Context())
	}
	return service.cache.RememberRecord(req.Context(), t.Resource(), t.URIKey(), t.Model(), key, load)
}

// selectKeys loads the records among keys, applying the detail scope.
func (service *Service) selectKeys(req *request.Request, t *resource.Type, keys []string, mode store.TrashedMode) ([]*entity.Record, error) {
	if len(keys) == 0 {
		return nil, apperr.ValidationError("No resources selected",
			apperr.FieldError{Field: "resources", Message: "Select at least one resource"})
	}

	q := store.Query{Trashed: mode}
	q.WhereIn(t.Model().KeyName(), slice.Any(keys)...)
	t.ApplyDetailQuery(req, &q)

	records, _, err := service.store.Select(req.Context(), t.Model(), q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.NotFound(t.Label())
	}
	return records, nil
}

// authorizeEach requires ability on every record.
func (service *Service) authorizeEach(req *request.Request, t *resource.Type, ability policy.Ability, records []*entity.Record) error {
	for _, record := range records {
		if err := service.authorize(req, t, ability, record); err != nil {
			return err
		}
	}
	return nil
}

func (service *Service) authorizations(req *request.Request, t *resource.Type, record *entity.Record) Authorizations {
	granted := Authorizations{
		View:   t.AuthorizedTo(req, policy.View, record),
		Update: t.AuthorizedTo(req, policy.Update, record),
		Delete: t.AuthorizedTo(req, policy.Delete, record),
	}
	if trash.Supports(t) {
		granted.Restore = t.AuthorizedTo(req, policy.Restore, record)
		granted.ForceDelete = t.AuthorizedTo(req, policy.ForceDelete, record)
	}
	return granted
}

// dispatchAfter delivers a post-commit event. Its observers cannot fail the
// request any more, so errors are only logged by the dispatcher.
func (service *Service) dispatchAfter(ctx context.Context, t *resource.Type, event observer.Event, record *entity.Record) {
	_ = service.dispatcher.Dispatch(ctx, t.URIKey(), event, record)
}

// selection decodes the "resources" key list and "fields" map of a body.
func selection(input map[string]any) Selection {
	var selected Selection
	if raw, ok := input["resources"].([]any); ok {
		for _, key := range raw {
			if s, isString := key.(string); isString && s != "" {
				selected.Keys = append(selected.Keys, s)
				continue
			}
			if key != nil {
				selected.Keys = append(selected.Keys, convert.ToString(key))
			}
		}
	}
	if fields, ok := input["fields"].(map[string]any); ok {
		selected.Fields = fields
	}
	return selected
}

// # Navigation

// Resources lists the resources the caller may view.
func (service *Service) Resources(req *request.Request) []resource.Meta {
	metas := make([]resource.Meta, 0)
	for _, t := range service.registry.All() {
		if t.AuthorizedTo(req, policy.ViewAny, nil) {
			metas = append(metas, t.Meta(req))
		}
	}
	return metas
}

func requireTrash(t *resource.Type) error {
	if !trash.Supports(t) {
		return apperr.BadRequest(t.Label() + " do not support soft deletes")
	}
	return nil
}
