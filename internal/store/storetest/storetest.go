// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storetest opens migrated throwaway stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/config"
	"github.com/taibuivan/panelkit/internal/store/gormstore"
)

// SQLite returns a gorm store on a fresh, fully migrated SQLite file that is
// removed when the test ends.
func SQLite(t testing.TB) *gormstore.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "panel.db")
	db, err := gormstore.Open(config.DriverSQLite, path)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps SQLite writes serialized inside transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gormstore.Migrate(context.Background(), db, config.DriverSQLite))
	return gormstore.New(db)
}
