// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package caching implements read-through caching of resource reads.

Three kinds of entries are kept per resource:

  - index listings, keyed by a hash of the query shape
  - single records, keyed by primary key
  - field payloads, keyed by primary key, view context and caller

Entries are grouped under tags when the store supports them. Invalidation is
event driven: [Service.Listener] is attached to the observer dispatcher and
drops a resource's entries whenever one of its records is written.

Cache failures never fail a read. They are logged, counted and bypassed.
*/
package caching

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/platform/cache"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/platform/metrics"
)

// Config is the per-resource caching configuration.
type Config struct {
	Enabled bool
	// TTL of zero uses the service default.
	TTL time.Duration
}

// Cacheable is implemented by resources whose reads are cached.
type Cacheable interface {
	CacheConfig() Config
}

// ConfigOf returns the caching configuration of r, if it declares one.
func ConfigOf(r any) (Config, bool) {
	cacheable, ok := r.(Cacheable)
	if !ok {
		return Config{}, false
	}
	cfg := cacheable.CacheConfig()
	return cfg, cfg.Enabled
}

// # Keys

// IndexShape is everything that distinguishes one index listing from another.
type IndexShape struct {
	Search        string
	Filters       map[string]string
	SortField     string
	SortDirection string
	PerPage       int
	Page          int
	Trashed       string
	// Scope separates listings whose rows depend on the caller.
	Scope string
}

// hash returns a stable digest of the shape. Filters are encoded in key order.
func (shape IndexShape) hash() string {
	filters := make([]string, 0, len(shape.Filters))
	for key := range shape.Filters {
		filters = append(filters, key)
	}
	sort.Strings(filters)

	values := url.Values{}
	for _, key := range filters {
		values.Add("f."+key, shape.Filters[key])
	}

	var canonical strings.Builder
	canonical.WriteString(shape.Search)
	canonical.WriteByte(0)
	canonical.WriteString(values.Encode())
	canonical.WriteByte(0)
	canonical.WriteString(shape.SortField + ":" + shape.SortDirection)
	canonical.WriteByte(0)
	canonical.WriteString(strconv.Itoa(shape.PerPage) + ":" + strconv.Itoa(shape.Page))
	canonical.WriteByte(0)
	canonical.WriteString(shape.Trashed + ":" + shape.Scope)

	return strconv.FormatUint(xxhash.Sum64String(canonical.String()), 16)
}

// IndexKey returns the cache key of an index listing.
func IndexKey(uriKey string, shape IndexShape) string {
	return uriKey + ":index:" + shape.hash()
}

// RecordKey returns the cache key of a single record.
func RecordKey(uriKey, key string) string {
	return uriKey + ":record:" + key
}

// FieldsKey returns the cache key of a record's field payload for one
// context ("detail", "update") and caller.
func FieldsKey(uriKey, key, view, userID string) string {
	return uriKey + ":fields:" + key + ":" + view + ":" + userID
}

func resourceTag(uriKey string) string    { return uriKey }
func indexTag(uriKey string) string       { return uriKey + ":index" }
func recordTag(uriKey, key string) string { return uriKey + ":record:" + key }

// # Service

// Service reads through a [cache.Store].
type Service struct {
	store      cache.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
	defaultTTL time.Duration
}

// NewService builds the caching service. A nil store disables caching.
func NewService(store cache.Store, logger *slog.Logger, m *metrics.Metrics, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 {
		defaultTTL = constants.DefaultCacheTTL
	}
	return &Service{store: store, logger: logger, metrics: m, defaultTTL: defaultTTL}
}

func (service *Service) ttl(cfg Config) time.Duration {
	if cfg.TTL > 0 {
		return cfg.TTL
	}
	return service.defaultTTL
}

/*
remember returns the cached value of key, or loads, stores and returns it.

Parameters:
  - r: the resource definition, consulted for its [Config]
  - uriKey: the resource slug, used for tags and metrics
  - key: the full cache key
  - target: pointer the value is decoded into on a hit
  - load: produces the value on a miss

Returns:
  - any: the loaded value on a miss or bypass
  - bool: whether target was filled from the cache instead
*/
func (service *Service) remember(ctx context.Context, r any, uriKey, key string, tags []string, target any, load func(ctx context.Context) (any, error)) (any, bool, error) {
	cfg, enabled := ConfigOf(r)
	if service == nil || service.store == nil || !enabled {
		value, err := load(ctx)
		return value, false, err
	}

	hit, err := cache.GetJSON(ctx, service.store, key, target)
	if err != nil {
		service.degraded(ctx, uriKey, "cache_read_failed", err)
	} else {
		service.metrics.ObserveCache(uriKey, hit)
		if hit {
			return nil, true, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := cache.SetJSON(ctx, service.store, key, value, service.ttl(cfg), tags...); err != nil {
		service.degraded(ctx, uriKey, "cache_write_failed", err)
	}
	return value, false, nil
}

// # Cached Reads

// Page is the cacheable form of an index listing.
type Page struct {
	Rows  []map[string]any `json:"rows"`
	Total int              `json:"total"`
}

// NewPage captures records for caching.
func NewPage(records []*entity.Record, total int) Page {
	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = record.Attributes()
	}
	return Page{Rows: rows, Total: total}
}

// Records rehydrates the cached rows.
func (page Page) Records(model entity.Model) []*entity.Record {
	records := make([]*entity.Record, len(page.Rows))
	for i, row := range page.Rows {
		records[i] = entity.Hydrate(model, row)
	}
	return records
}

// RememberIndex reads an index listing through the cache.
func (service *Service) RememberIndex(ctx context.Context, r any, uriKey string, model entity.Model, shape IndexShape, load func(ctx context.Context) ([]*entity.Record, int, error)) ([]*entity.Record, int, error) {
	var cached Page
	value, hit, err := service.remember(ctx, r, uriKey, IndexKey(uriKey, shape),
		[]string{resourceTag(uriKey), indexTag(uriKey)}, &cached,
		func(ctx context.Context) (any, error) {
			records, total, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return NewPage(records, total), nil
		})
	if err != nil {
		return nil, 0, err
	}
	if hit {
		return cached.Records(model), cached.Total, nil
	}
	page := value.(Page)
	return page.Records(model), page.Total, nil
}

// RememberRecord reads a single record through the cache.
func (service *Service) RememberRecord(ctx context.Context, r any, uriKey string, model entity.Model, key string, load func(ctx context.Context) (*entity.Record, error)) (*entity.Record, error) {
	var cached map[string]any
	value, hit, err := service.remember(ctx, r, uriKey, RecordKey(uriKey, key),
		[]string{resourceTag(uriKey), recordTag(uriKey, key)}, &cached,
		func(ctx context.Context) (any, error) {
			record, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return record.Attributes(), nil
		})
	if err != nil {
		return nil, err
	}
	if !hit {
		cached = value.(map[string]any)
	}
	return entity.Hydrate(model, cached), nil
}

// RememberFields reads a resolved field payload through the cache. The
// payload is keyed by caller because field visibility depends on it.
func RememberFields[T any](ctx context.Context, service *Service, r any, uriKey, key, view, userID string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	value, hit, err := service.remember(ctx, r, uriKey, FieldsKey(uriKey, key, view, userID),
		[]string{resourceTag(uriKey), recordTag(uriKey, key)}, &cached,
		func(ctx context.Context) (any, error) { return load(ctx) })
	if err != nil || hit {
		return cached, err
	}
	return value.(T), nil
}

// # Invalidation

// ClearCache drops every entry of a resource.
func (service *Service) ClearCache(ctx context.Context, uriKey string) {
	service.flush(ctx, uriKey, resourceTag(uriKey))
}

// ClearIndexCache drops the index listings of a resource.
func (service *Service) ClearIndexCache(ctx context.Context, uriKey string) {
	service.flush(ctx, uriKey, indexTag(uriKey))
}

// ClearResourceCache drops the entries of one record.
func (service *Service) ClearResourceCache(ctx context.Context, uriKey, key string) {
	service.flush(ctx, uriKey, recordTag(uriKey, key))
}

// flush drops a tag, or the whole store when tags are unsupported.
func (service *Service) flush(ctx context.Context, uriKey, tag string) {
	if service == nil || service.store == nil {
		return
	}

	var err error
	if flusher, ok := service.store.(cache.TagFlusher); ok {
		err = flusher.FlushTags(ctx, tag)
	} else {
		err = service.store.Flush(ctx)
	}
	if err != nil {
		service.degraded(ctx, uriKey, "cache_invalidation_failed", err)
	}
}

// Listener invalidates a resource's entries after each write. Attach it
// with [observer.Dispatcher.Listen].
func (service *Service) Listener() observer.Listener {
	return func(ctx context.Context, event observer.Event, uriKey string, record *entity.Record) {
		switch event {
		case observer.Updated, observer.Deleted, observer.Restored, observer.ForceDeleted:
			service.ClearResourceCache(ctx, uriKey, record.KeyString())
			service.ClearIndexCache(ctx, uriKey)
		case observer.Created:
			service.ClearIndexCache(ctx, uriKey)
		}
	}
}

func (service *Service) degraded(ctx context.Context, uriKey, event string, err error) {
	service.metrics.ObserveDegraded(uriKey, "cache")
	service.logger.WarnContext(ctx, event,
		slog.String("resource", uriKey),
		slog.Any("error", err),
	)
}
