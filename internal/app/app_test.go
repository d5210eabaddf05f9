// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package app_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/app"
	"github.com/taibuivan/panelkit/internal/platform/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "panel.db"),
		Panel: config.PanelConfig{
			DefaultPerPage:     10,
			MaxPerPage:         50,
			CacheTTL:           time.Minute,
			PolicyFallback:     "deny",
			MaxVersions:        5,
			TrashRetentionDays: 7,
			ExportMaxRecords:   100,
		},
	}
}

func open(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	ctx := context.Background()
	application, err := app.Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(application.Close)
	require.NoError(t, application.Migrate(ctx))
	return application
}

func TestOpenSQLite(t *testing.T) {
	application := open(t, sqliteConfig(t))

	var keys []string
	for _, resourceType := range application.Registry.All() {
		keys = append(keys, resourceType.URIKey())
	}
	assert.Equal(t, []string{"products", "blog-posts", "users"}, keys)
	assert.Nil(t, application.PingCache())
	assert.NoError(t, application.Store.Ping(context.Background()))
}

func TestOpenWithRedisCache(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := sqliteConfig(t)
	cfg.RedisURL = "redis://" + server.Addr()

	application := open(t, cfg)

	ping := application.PingCache()
	require.NotNil(t, ping)
	assert.NoError(t, ping(context.Background()))

	server.Close()
	assert.Error(t, ping(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DatabaseDriver = "oracle"

	_, err := app.Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
