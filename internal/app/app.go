// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app assembles the panel from configuration.

It is the composition root shared by cmd/api and cmd/panelctl: both open
the same store, cache and concern services so the operator CLI acts on
exactly what the server serves.

Usage:

	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
	    return err
	}
	defer application.Close()
*/
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/taibuivan/panelkit/internal/admin"
	"github.com/taibuivan/panelkit/internal/panel/caching"
	"github.com/taibuivan/panelkit/internal/panel/controller"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/platform/cache"
	"github.com/taibuivan/panelkit/internal/platform/config"
	"github.com/taibuivan/panelkit/internal/platform/metrics"
	"github.com/taibuivan/panelkit/internal/platform/migration"
	platformpg "github.com/taibuivan/panelkit/internal/platform/postgres"
	redisstore "github.com/taibuivan/panelkit/internal/platform/redis"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/internal/store/gormstore"
	"github.com/taibuivan/panelkit/internal/store/postgres"
	"github.com/taibuivan/panelkit/pkg/pagination"
)

// App holds every long-lived collaborator of the panel.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store      store.Store
	Registry   *resource.Registry
	Dispatcher *observer.Dispatcher
	Cache      *caching.Service
	Trash      *trash.Service
	Versions   *versioning.Service
	Exports    *export.Service
	Metrics    *metrics.Metrics
	Panel      *controller.Service

	pool  *pgxpool.Pool
	db    *gorm.DB
	redis *goredis.Client
}

/*
Open connects the store and cache selected by cfg and registers the admin
resources.

Parameters:
  - ctx: bounds the initial connection attempts
  - cfg: loaded configuration
  - logger: structured logger shared by every service

Returns:
  - *App: ready to serve; the caller must Close it
  - error: when a backend cannot be reached
*/
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	application := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	if err := application.openStore(ctx); err != nil {
		return nil, err
	}

	cacheStore, err := application.openCache(ctx)
	if err != nil {
		application.Close()
		return nil, err
	}

	panelCfg := cfg.Panel
	fallback := policy.Deny
	if panelCfg.AllowOnMissingPolicy() {
		fallback = policy.Allow
	}

	application.Registry = resource.NewRegistry(admin.Policies(fallback))
	application.Dispatcher = observer.NewDispatcher(logger, true)
	if err := admin.Register(application.Registry, application.Dispatcher, application.Store); err != nil {
		application.Close()
		return nil, fmt.Errorf("app: register resources: %w", err)
	}

	application.Cache = caching.NewService(cacheStore, logger, application.Metrics, panelCfg.CacheTTL)
	application.Dispatcher.Listen(application.Cache.Listener())

	application.Trash = trash.NewService(application.Store, application.Dispatcher, logger, panelCfg.TrashRetentionDays)
	application.Versions = versioning.NewService(application.Store, application.Dispatcher, logger, panelCfg.MaxVersions)
	application.Exports = export.NewService(application.Store, logger, panelCfg.ExportMaxRecords)

	application.Panel = controller.NewService(controller.Options{
		Registry:   application.Registry,
		Store:      application.Store,
		Dispatcher: application.Dispatcher,
		Cache:      application.Cache,
		Trash:      application.Trash,
		Exports:    application.Exports,
		Versions:   application.Versions,
		Metrics:    application.Metrics,
		Logger:     logger,
		Bounds:     pagination.Bounds{Default: panelCfg.DefaultPerPage, Max: panelCfg.MaxPerPage},
	})

	logger.Info("panel_ready",
		slog.String("driver", cfg.DatabaseDriver),
		slog.Bool("redis_cache", application.redis != nil),
		slog.Int("resources", len(application.Registry.All())),
	)
	return application, nil
}

func (application *App) openStore(ctx context.Context) error {
	cfg := application.Config
	if cfg.DatabaseDriver == config.DriverPostgres {
		pool, err := platformpg.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, application.Logger)
		if err != nil {
			return err
		}
		application.pool = pool
		application.Store = postgres.New(pool)
		return nil
	}

	db, err := gormstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	application.db = db
	application.Store = gormstore.New(db)
	return nil
}

// openCache returns the Redis store when REDIS_URL is set and the
// in-process store otherwise.
func (application *App) openCache(ctx context.Context) (cache.Store, error) {
	if application.Config.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}
	client, err := redisstore.Connect(ctx, application.Config.RedisURL, application.Logger)
	if err != nil {
		return nil, err
	}
	application.redis = client
	return cache.NewRedisStore(client), nil
}

// Migrate applies the schema migrations of the configured driver.
func (application *App) Migrate(ctx context.Context) error {
	if application.db != nil {
		return gormstore.Migrate(ctx, application.db, application.Config.DatabaseDriver)
	}
	return application.migrator().Up()
}

// Rollback reverts the latest steps migrations of the configured driver.
func (application *App) Rollback(ctx context.Context, steps int) error {
	if application.db != nil {
		return gormstore.Rollback(ctx, application.db, application.Config.DatabaseDriver, steps)
	}
	return application.migrator().Down(steps)
}

func (application *App) migrator() *migration.Runner {
	return migration.New(application.Config.DatabaseURL, application.Config.MigrationPath, application.Logger)
}

// PingCache checks the Redis cache. It is nil when the in-process cache is used.
func (application *App) PingCache() func(ctx context.Context) error {
	if application.redis == nil {
		return nil
	}
	return redisstore.HealthCheck(application.redis)
}

// Close releases every connection. It is safe to call on a partially opened App.
func (application *App) Close() {
	if application.redis != nil {
		if err := application.redis.Close(); err != nil {
			application.Logger.Error("redis_close_failed", slog.Any("error", err))
		}
	}
	if application.pool != nil {
		application.pool.Close()
	}
	if application.db != nil {
		if sqlDB, err := application.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
