// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"context"
	"log/slog"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/platform/validate"
	"github.com/taibuivan/panelkit/internal/store"
)

// Version reasons recorded by the write pipeline.
const (
	ReasonCreated = "created"
	ReasonUpdated = "updated"
)

// # Create

/*
Store creates a record from the request body.

Flow:
 1. Authorize "create" without a subject.
 2. Validate the body against the creation rules of the visible fields.
 3. Fill, dispatch "creating" and insert inside one transaction.
 4. Dispatch "created" after commit and capture the first version.

Returns:
  - *DetailPayload: the created record
  - error: FORBIDDEN, VALIDATION_ERROR, or a store/observer failure
*/
func (service *Service) Store(req *request.Request, uriKey string) (*DetailPayload, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	payload, err := service.create(req, t)
	service.observe(t.URIKey(), "store", err)
	return payload, err
}

func (service *Service) create(req *request.Request, t *resource.Type) (*DetailPayload, error) {
	if err := service.authorize(req, t, policy.Create, nil); err != nil {
		return nil, err
	}
	if err := validate.Check(req.InputMap(), t.CreationRules(req)); err != nil {
		return nil, err
	}

	record := t.NewRecord()
	err := service.store.Transaction(req.Context(), func(ctx context.Context) error {
		scoped := req.WithContext(ctx)
		if err := t.Fill(scoped, record); err != nil {
			return err
		}
		if err := service.dispatcher.Dispatch(ctx, t.URIKey(), observer.Creating, record); err != nil {
			return err
		}
		return service.store.Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	service.dispatchAfter(req.Context(), t, observer.Created, record)
	service.captureVersion(req, t, record, ReasonCreated)

	service.logger.InfoContext(req.Context(), "resource_created",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
		slog.String("user_id", req.UserID()),
	)
	return service.detail(req, t, record)
}

// # Update

// Update applies the request body to an existing record. A body that
// changes nothing still succeeds but records no version.
func (service *Service) Update(req *request.Request, uriKey, key string) (*DetailPayload, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	payload, err := service.update(req, t, key)
	service.observe(t.URIKey(), "update", err)
	return payload, err
}

func (service *Service) update(req *request.Request, t *resource.Type, key string) (*DetailPayload, error) {
	record, err := service.find(req, t, key, store.ExcludeTrashed, false)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.Update, record); err != nil {
		return nil, err
	}
	if err := validate.Check(req.InputMap(), t.UpdateRules(req)); err != nil {
		return nil, err
	}

	changed := false
	err = service.store.Transaction(req.Context(), func(ctx context.Context) error {
		scoped := req.WithContext(ctx)
		if err := t.Fill(scoped, record); err != nil {
			return err
		}
		changed = record.IsDirty()
		if err := service.dispatcher.Dispatch(ctx, t.URIKey(), observer.Updating, record); err != nil {
			return err
		}
		return service.store.Update(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	service.dispatchAfter(req.Context(), t, observer.Updated, record)
	if changed {
		service.captureVersion(req, t, record, ReasonUpdated)
	}

	service.logger.InfoContext(req.Context(), "resource_updated",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
		slog.Bool("changed", changed),
	)
	return service.detail(req, t, record)
}

// # Delete

// Destroy deletes a record. Soft-deleting resources move it to the trash.
func (service *Service) Destroy(req *request.Request, uriKey, key string) error {
	t, err := service.locate(uriKey)
	if err != nil {
		return err
	}
	err = service.destroy(req, t, key)
	service.observe(t.URIKey(), "destroy", err)
	return err
}

func (service *Service) destroy(req *request.Request, t *resource.Type, key string) error {
	record, err := service.find(req, t, key, store.ExcludeTrashed, false)
	if err != nil {
		return err
	}
	if err := service.authorize(req, t, policy.Delete, record); err != nil {
		return err
	}

	if trash.Supports(t) {
		_, err := service.trash.SoftDelete(req.Context(), t, record)
		if err == nil {
			service.logger.InfoContext(req.Context(), "resource_trashed",
				slog.String("resource", t.URIKey()),
				slog.String("id", record.KeyString()),
			)
		}
		return err
	}

	err = service.store.Transaction(req.Context(), func(ctx context.Context) error {
		if err := service.dispatcher.Dispatch(ctx, t.URIKey(), observer.Deleting, record); err != nil {
			return err
		}
		return service.store.Delete(ctx, record)
	})
	if err != nil {
		return err
	}

	service.dispatchAfter(req.Context(), t, observer.Deleted, record)
	service.logger.WarnContext(req.Context(), "resource_deleted",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
	)
	return nil
}

// captureVersion snapshots record for versioned resources. The write has
// already committed, so a failure here only degrades the history.
func (service *Service) captureVersion(req *request.Request, t *resource.Type, record *entity.Record, reason string) {
	if _, enabled := versioning.ConfigOf(t); !enabled {
		return
	}
	if _, err := service.versions.CreateVersion(req.Context(), t, record, reason, nil, req.UserID()); err != nil {
		service.metrics.ObserveDegraded(t.URIKey(), "versioning")
		service.logger.WarnContext(req.Context(), "version_capture_failed",
			slog.String("resource", t.URIKey()),
			slog.String("id", record.KeyString()),
			slog.Any("error", err),
		)
	}
}
