// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the Postgres schema with golang-migrate.
//
// The SQL lives under MIGRATION_PATH as numbered up/down pairs. The sqlite
// and mysql drivers migrate through goose instead (see gormstore.Migrate).
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner moves one database between schema versions.
type Runner struct {
	databaseURL string
	sourceURL   string
	logger      *slog.Logger
}

// New prepares a runner for dsn reading migrations from dir.
func New(dsn, dir string, logger *slog.Logger) *Runner {
	return &Runner{databaseURL: pgx5URL(dsn), sourceURL: "file://" + dir, logger: logger}
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (runner *Runner) Up() error {
	return runner.apply("up", (*migrate.Migrate).Up)
}

// Down reverts the latest steps migrations.
func (runner *Runner) Down(steps int) error {
	if steps < 1 {
		return errors.New("migration: down needs at least one step")
	}
	return runner.apply("down", func(migrator *migrate.Migrate) error {
		return migrator.Steps(-steps)
	})
}

func (runner *Runner) apply(direction string, step func(*migrate.Migrate) error) error {
	migrator, err := migrate.New(runner.sourceURL, runner.databaseURL)
	if err != nil {
		return fmt.Errorf("migration: open: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := migrator.Close(); sourceErr != nil || dbErr != nil {
			runner.logger.Warn("migration_close_failed", slog.Any("source_error", sourceErr), slog.Any("db_error", dbErr))
		}
	}()
	migrator.Log = slogBridge{runner.logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return fmt.Errorf("migration: version %d is dirty; fix the schema and force the version", from)
	}

	err = step(migrator)
	if errors.Is(err, migrate.ErrNoChange) {
		runner.logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: %s: %w", direction, err)
	}

	to, _, _ := migrator.Version()
	runner.logger.Info("migration_applied",
		slog.String("direction", direction),
		slog.Uint64("from", uint64(from)),
		slog.Uint64("to", uint64(to)),
	)
	return nil
}

// pgx5URL rewrites postgres:// URLs to the scheme the pgx/v5 driver
// registers. Keyword/value DSNs pass through unchanged.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogBridge sends golang-migrate's progress lines to debug level.
type slogBridge struct{ logger *slog.Logger }

func (bridge slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (bridge slogBridge) Verbose() bool { return false }
