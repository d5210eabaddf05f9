// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"log/slog"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/slice"
)

// Restore brings a trashed record back.
func (service *Service) Restore(req *request.Request, uriKey, key string) (payload *DetailPayload, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	defer func() { service.observe(t.URIKey(), "restore", err) }()

	if err := requireTrash(t); err != nil {
		return nil, err
	}
	record, err := service.find(req, t, key, store.WithTrashed, false)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.Restore, record); err != nil {
		return nil, err
	}

	restored, err := service.trash.Restore(req.Context(), t, record)
	if err != nil {
		return nil, err
	}
	if !restored {
		return nil, apperr.Conflict(t.SingularLabel() + " is not in the trash")
	}

	service.logger.InfoContext(req.Context(), "resource_restored",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
	)
	return service.detail(req, t, record)
}

// ForceDelete permanently deletes a record, trashed or not.
func (service *Service) ForceDelete(req *request.Request, uriKey, key string) (err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return err
	}
	defer func() { service.observe(t.URIKey(), "force_delete", err) }()

	if err := requireTrash(t); err != nil {
		return err
	}
	record, err := service.find(req, t, key, store.WithTrashed, false)
	if err != nil {
		return err
	}
	if err := service.authorize(req, t, policy.ForceDelete, record); err != nil {
		return err
	}

	if _, err := service.trash.ForceDelete(req.Context(), t, record); err != nil {
		return err
	}

	service.logger.WarnContext(req.Context(), "resource_force_deleted",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
	)
	return nil
}

// BulkRestore restores the trashed records listed in the body. The caller
// must be allowed to restore every one of them.
func (service *Service) BulkRestore(req *request.Request, uriKey string) (payload *BulkPayload, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	defer func() { service.observe(t.URIKey(), "bulk_restore", err) }()

	if err := requireTrash(t); err != nil {
		return nil, err
	}
	records, err := service.selectKeys(req, t, selection(req.InputMap()).Keys, store.OnlyTrashed)
	if err != nil {
		return nil, err
	}
	if err := service.authorizeEach(req, t, policy.Restore, records); err != nil {
		return nil, err
	}

	keys := slice.Map(records, (*entity.Record).KeyString)
	count, err := service.trash.BulkRestore(req.Context(), t, keys)
	if err != nil {
		return nil, err
	}
	return &BulkPayload{Count: count}, nil
}

// BulkForceDelete permanently deletes the records listed in the body.
func (service *Service) BulkForceDelete(req *request.Request, uriKey string) (payload *BulkPayload, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	defer func() { service.observe(t.URIKey(), "bulk_force_delete", err) }()

	if err := requireTrash(t); err != nil {
		return nil, err
	}
	records, err := service.selectKeys(req, t, selection(req.InputMap()).Keys, store.WithTrashed)
	if err != nil {
		return nil, err
	}
	if err := service.authorizeEach(req, t, policy.ForceDelete, records); err != nil {
		return nil, err
	}

	keys := slice.Map(records, (*entity.Record).KeyString)
	count, err := service.trash.BulkForceDelete(req.Context(), t, keys)
	if err != nil {
		return nil, err
	}

	service.logger.WarnContext(req.Context(), "resources_force_deleted",
		slog.String("resource", t.URIKey()),
		slog.Int("count", count),
	)
	return &BulkPayload{Count: count}, nil
}
