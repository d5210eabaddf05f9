// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"log/slog"

	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/store"
)

// viewable locates a versioned resource and a record the caller may view.
func (service *Service) viewable(req *request.Request, uriKey, key string) (*resource.Type, string, error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, "", err
	}
	if _, enabled := versioning.ConfigOf(t); !enabled {
		return nil, "", apperr.NotFound("Version history")
	}
	record, err := service.find(req, t, key, store.WithTrashed, false)
	if err != nil {
		return nil, "", err
	}
	if err := service.authorize(req, t, policy.View, record); err != nil {
		return nil, "", err
	}
	return t, record.KeyString(), nil
}

// Versions lists the history of a record, newest first.
func (service *Service) Versions(req *request.Request, uriKey, key string) ([]*versioning.Version, error) {
	t, id, err := service.viewable(req, uriKey, key)
	if err != nil {
		return nil, err
	}
	versions, err := service.versions.Versions(req.Context(), t, id)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []*versioning.Version{}
	}
	return versions, nil
}

// Version returns one snapshot of a record.
func (service *Service) Version(req *request.Request, uriKey, key string, number int) (*versioning.Version, error) {
	t, id, err := service.viewable(req, uriKey, key)
	if err != nil {
		return nil, err
	}
	version, err := service.versions.GetVersion(req.Context(), t, id, number)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperr.NotFound("Version")
	}
	return version, nil
}

// CompareVersions diffs two snapshots of a record.
func (service *Service) CompareVersions(req *request.Request, uriKey, key string, from, to int) (*versioning.Comparison, error) {
	t, id, err := service.viewable(req, uriKey, key)
	if err != nil {
		return nil, err
	}
	comparison, err := service.versions.CompareVersions(req.Context(), t, id, from, to)
	if err != nil {
		return nil, err
	}
	if comparison == nil {
		return nil, apperr.NotFound("Version")
	}
	return comparison, nil
}

// RestoreVersion overwrites a record with one of its snapshots. The state
// being replaced is kept as a new version.
func (service *Service) RestoreVersion(req *request.Request, uriKey, key string, number int) (payload *DetailPayload, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return nil, err
	}
	defer func() { service.observe(t.URIKey(), "restore_version", err) }()

	if _, enabled := versioning.ConfigOf(t); !enabled {
		return nil, apperr.NotFound("Version history")
	}
	record, err := service.find(req, t, key, store.ExcludeTrashed, false)
	if err != nil {
		return nil, err
	}
	if err := service.authorize(req, t, policy.Update, record); err != nil {
		return nil, err
	}

	restored, err := service.versions.RestoreToVersion(req.Context(), t, record, number, "", req.UserID())
	if err != nil {
		return nil, err
	}
	if !restored {
		return nil, apperr.NotFound("Version")
	}

	service.logger.InfoContext(req.Context(), "version_restored",
		slog.String("resource", t.URIKey()),
		slog.String("id", record.KeyString()),
		slog.Int("version", number),
	)
	return service.detail(req, t, record)
}
