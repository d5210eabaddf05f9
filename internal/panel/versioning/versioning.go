// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package versioning keeps an append-only history of record snapshots.

Each snapshot is stored in the resource_versions table with a version number
(max existing + 1 per resource type and record), a SHA-256 checksum of its
payload and, when configured, a zstd-compressed body. History is capped per
record: after every new version only the newest MaxVersions are kept.

Missing versions and checksum mismatches yield nil rather than an error.
*/
package versioning

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/convert"
)

// DefaultExcluded are attributes never captured in a snapshot.
var DefaultExcluded = []string{
	entity.ColumnID, entity.ColumnCreatedAt, entity.ColumnUpdatedAt, entity.ColumnDeletedAt,
	"password", "remember_token",
}

// Config is the per-resource versioning configuration.
type Config struct {
	Enabled bool
	// MaxVersions of zero uses the service default.
	MaxVersions int
	// Fields restricts snapshots to these attributes.
	Fields []string
	// Excluded attributes are dropped on top of [DefaultExcluded].
	Excluded []string
	// Compress stores snapshots zstd-compressed.
	Compress bool
}

// Versionable is implemented by resources keeping a version history.
type Versionable interface {
	VersionConfig() Config
}

// ConfigOf returns the versioning configuration of t, if enabled.
func ConfigOf(t *resource.Type) (Config, bool) {
	versionable, ok := t.Resource().(Versionable)
	if !ok {
		return Config{}, false
	}
	cfg := versionable.VersionConfig()
	return cfg, cfg.Enabled
}

// versionModel is the storage shape of a snapshot.
var versionModel = entity.Model{
	Table: "resource_versions",
	Columns: []string{
		"resource_type", "resource_id", "version", "data", "checksum",
		"compressed", "reason", "metadata", "created_by", "created_at",
	},
}

// Version is one decoded snapshot.
type Version struct {
	ID           string         `json:"id"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	Version      int            `json:"version"`
	Data         map[string]any `json:"data"`
	Checksum     string         `json:"checksum"`
	Compressed   bool           `json:"compressed"`
	Reason       string         `json:"reason,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedBy    string         `json:"createdBy,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
}

// # Codec

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// checksum returns the hex SHA-256 of the uncompressed payload.
func checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func encodeBody(payload []byte, compress bool) string {
	if !compress {
		return string(payload)
	}
	return base64.StdEncoding.EncodeToString(encoder.EncodeAll(payload, nil))
}

func decodeBody(body string, compressed bool) ([]byte, error) {
	if !compressed {
		return []byte(body), nil
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, err
	}
	return decoder.DecodeAll(raw, nil)
}

// # Service

// Service records and restores snapshots.
type Service struct {
	store       store.Store
	dispatcher  *observer.Dispatcher
	logger      *slog.Logger
	maxVersions int
	now         func() time.Time
}

// NewService builds the versioning service.
func NewService(st store.Store, dispatcher *observer.Dispatcher, logger *slog.Logger, maxVersions int) *Service {
	if maxVersions <= 0 {
		maxVersions = constants.DefaultMaxVersions
	}
	return &Service{store: st, dispatcher: dispatcher, logger: logger, maxVersions: maxVersions, now: time.Now}
}

func (service *Service) limit(cfg Config) int {
	if cfg.MaxVersions > 0 {
		return cfg.MaxVersions
	}
	return service.maxVersions
}

// Snapshot returns the versionable attributes of record.
func Snapshot(cfg Config, record *entity.Record) map[string]any {
	data := make(map[string]any)
	for attribute, value := range record.Attributes() {
		if len(cfg.Fields) > 0 && !slices.Contains(cfg.Fields, attribute) {
			continue
		}
		if slices.Contains(DefaultExcluded, attribute) || slices.Contains(cfg.Excluded, attribute) {
			continue
		}
		data[attribute] = value
	}
	return data
}

/*
CreateVersion stores a snapshot of record as the next version.

Parameters:
  - t: the resource type; nothing is stored unless it is [Versionable]
  - record: a persisted record
  - reason: optional free text ("updated", "restored to 3")
  - metadata: optional extra context stored as JSON
  - userID: the author, may be empty

Returns:
  - *Version: the stored version, or nil when versioning is disabled
*/
func (service *Service) CreateVersion(ctx context.Context, t *resource.Type, record *entity.Record, reason string, metadata map[string]any, userID string) (*Version, error) {
	cfg, enabled := ConfigOf(t)
	if !enabled {
		return nil, nil
	}

	data := Snapshot(cfg, record)
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("versioning: encode snapshot: %w", err)
	}

	var encodedMetadata any
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("versioning: encode metadata: %w", err)
		}
		encodedMetadata = string(raw)
	}

	var stored *entity.Record
	err = service.store.Transaction(ctx, func(ctx context.Context) error {
		latest, err := service.latest(ctx, t.URIKey(), record.KeyString())
		if err != nil {
			return err
		}

		stored = entity.New(versionModel)
		stored.Set("resource_type", t.URIKey())
		stored.Set("resource_id", record.KeyString())
		stored.Set("version", latest+1)
		stored.Set("data", encodeBody(payload, cfg.Compress))
		stored.Set("checksum", checksum(payload))
		stored.Set("compressed", cfg.Compress)
		stored.Set("reason", nullable(reason))
		stored.Set("metadata", encodedMetadata)
		stored.Set("created_by", nullable(userID))
		stored.Set("created_at", service.now().UTC())
		return service.store.Insert(ctx, stored)
	})
	if err != nil {
		return nil, err
	}

	if _, err := service.CleanupOldVersions(ctx, t, record.KeyString()); err != nil {
		service.logger.WarnContext(ctx, "version_cleanup_failed",
			slog.String("resource", t.URIKey()),
			slog.Any("error", err),
		)
	}

	version := service.decode(ctx, stored)
	service.logger.InfoContext(ctx, "version_created",
		slog.String("resource", t.URIKey()),
		slog.String("resource_id", record.KeyString()),
		slog.Int("version", version.Version),
	)
	return version, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// latest returns the highest version number of a record, or 0.
func (service *Service) latest(ctx context.Context, uriKey, key string) (int, error) {
	q := historyQuery(uriKey, key)
	q.Limit = 1
	rows, _, err := service.store.Select(ctx, versionModel, q)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return convert.AsInt(rows[0].Get("version")), nil
}

func historyQuery(uriKey, key string) store.Query {
	var q store.Query
	q.Where("resource_type", uriKey).Where("resource_id", key).OrderBy("version", true)
	return q
}

// # Reads

// Versions returns the history of a record, newest first. Versions failing
// their checksum are skipped.
func (service *Service) Versions(ctx context.Context, t *resource.Type, key string) ([]*Version, error) {
	rows, _, err := service.store.Select(ctx, versionModel, historyQuery(t.URIKey(), key))
	if err != nil {
		return nil, err
	}
	versions := make([]*Version, 0, len(rows))
	for _, row := range rows {
		if version := service.decode(ctx, row); version != nil {
			versions = append(versions, version)
		}
	}
	return versions, nil
}

// GetVersion returns one version, or nil when it is missing or corrupt.
func (service *Service) GetVersion(ctx context.Context, t *resource.Type, key string, number int) (*Version, error) {
	q := historyQuery(t.URIKey(), key)
	q.Where("version", number)
	q.Limit = 1

	rows, _, err := service.store.Select(ctx, versionModel, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return service.decode(ctx, rows[0]), nil
}

// decode turns a stored row into a [Version], verifying its checksum.
func (service *Service) decode(ctx context.Context, row *entity.Record) *Version {
	version := &Version{
		ID:           row.KeyString(),
		ResourceType: convert.ToString(row.Get("resource_type")),
		ResourceID:   convert.ToString(row.Get("resource_id")),
		Version:      convert.AsInt(row.Get("version")),
		Checksum:     convert.ToString(row.Get("checksum")),
		Compressed:   convert.AsBool(row.Get("compressed")),
		Reason:       convert.ToString(row.Get("reason")),
		CreatedBy:    convert.ToString(row.Get("created_by")),
		CreatedAt:    convert.ToTime(row.Get("created_at")),
	}

	payload, err := decodeBody(convert.ToString(row.Get("data")), version.Compressed)
	if err == nil && checksum(payload) != version.Checksum {
		err = fmt.Errorf("checksum mismatch")
	}
	if err == nil {
		err = json.Unmarshal(payload, &version.Data)
	}
	if err != nil {
		service.logger.WarnContext(ctx, "version_corrupt",
			slog.String("resource", version.ResourceType),
			slog.String("resource_id", version.ResourceID),
			slog.Int("version", version.Version),
			slog.Any("error", err),
		)
		return nil
	}

	if raw := convert.ToString(row.Get("metadata")); raw != "" {
		_ = json.Unmarshal([]byte(raw), &version.Metadata)
	}
	return version
}

// # Restore & Compare

/*
RestoreToVersion copies a snapshot back onto record and saves it.

A version recording the pre-restore state is created first, inside the same
transaction, so the overwritten state stays in the history.

Returns:
  - bool: false when the version does not exist or fails its checksum
*/
func (service *Service) RestoreToVersion(ctx context.Context, t *resource.Type, record *entity.Record, number int, reason, userID string) (bool, error) {
	if _, enabled := ConfigOf(t); !enabled {
		return false, nil
	}

	target, err := service.GetVersion(ctx, t, record.KeyString(), number)
	if err != nil || target == nil {
		return false, err
	}
	if reason == "" {
		reason = fmt.Sprintf("Before restore to version %d", number)
	}

	err = service.store.Transaction(ctx, func(ctx context.Context) error {
		if _, err := service.CreateVersion(ctx, t, record, reason, map[string]any{"restored_to": number}, userID); err != nil {
			return err
		}
		if err := service.dispatcher.Dispatch(ctx, t.URIKey(), observer.Updating, record); err != nil {
			return err
		}
		for attribute, value := range target.Data {
			if t.Model().HasColumn(attribute) {
				record.Set(attribute, value)
			}
		}
		return service.store.Update(ctx, record)
	})
	if err != nil {
		return false, err
	}
	return true, service.dispatcher.Dispatch(ctx, t.URIKey(), observer.Updated, record)
}

// ChangeType classifies one attribute difference.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// Change is one attribute difference between two versions.
type Change struct {
	Type ChangeType `json:"type"`
	Old  any        `json:"old"`
	New  any        `json:"new"`
}

// Comparison is the difference between two versions of a record.
type Comparison struct {
	From    int               `json:"from"`
	To      int               `json:"to"`
	Changes map[string]Change `json:"changes"`
}

// CompareVersions diffs two versions of a record. It returns nil when either
// version is missing or corrupt.
func (service *Service) CompareVersions(ctx context.Context, t *resource.Type, key string, from, to int) (*Comparison, error) {
	older, err := service.GetVersion(ctx, t, key, from)
	if err != nil || older == nil {
		return nil, err
	}
	newer, err := service.GetVersion(ctx, t, key, to)
	if err != nil || newer == nil {
		return nil, err
	}
	return &Comparison{From: from, To: to, Changes: Diff(older.Data, newer.Data)}, nil
}

// Diff classifies every attribute that differs between two snapshots.
func Diff(older, newer map[string]any) map[string]Change {
	changes := make(map[string]Change)
	seen := make(map[string]bool, len(older)+len(newer))
	for attribute := range older {
		seen[attribute] = true
	}
	for attribute := range newer {
		seen[attribute] = true
	}

	for attribute := range seen {
		before, after := older[attribute], newer[attribute]
		if reflect.DeepEqual(before, after) {
			continue
		}
		change := Change{Type: Modified, Old: before, New: after}
		switch {
		case before == nil:
			change.Type = Added
		case after == nil:
			change.Type = Removed
		}
		changes[attribute] = change
	}
	return changes
}

// # Retention

// CleanupOldVersions deletes all but the newest MaxVersions versions of a
// record and returns how many were removed.
func (service *Service) CleanupOldVersions(ctx context.Context, t *resource.Type, key string) (int, error) {
	cfg, enabled := ConfigOf(t)
	if !enabled {
		return 0, nil
	}

	history, _, err := service.store.Select(ctx, versionModel, historyQuery(t.URIKey(), key))
	if err != nil {
		return 0, err
	}
	if len(history) <= service.limit(cfg) {
		return 0, nil
	}
	return service.delete(ctx, history[service.limit(cfg):])
}

// Prune applies the retention cap to every record of t.
func (service *Service) Prune(ctx context.Context, t *resource.Type) (int, error) {
	cfg, enabled := ConfigOf(t)
	if !enabled {
		return 0, nil
	}

	var q store.Query
	q.Where("resource_type", t.URIKey()).OrderBy("resource_id", false).OrderBy("version", true)
	rows, _, err := service.store.Select(ctx, versionModel, q)
	if err != nil {
		return 0, err
	}

	kept := make(map[string]int)
	var stale []*entity.Record
	for _, row := range rows {
		key := convert.ToString(row.Get("resource_id"))
		kept[key]++
		if kept[key] > service.limit(cfg) {
			stale = append(stale, row)
		}
	}
	return service.delete(ctx, stale)
}

func (service *Service) delete(ctx context.Context, rows []*entity.Record) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	err := service.store.Transaction(ctx, func(ctx context.Context) error {
		for _, row := range rows {
			if err := service.store.Delete(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
