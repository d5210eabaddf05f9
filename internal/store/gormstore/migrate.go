// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gormstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/taibuivan/panelkit/internal/platform/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations for driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := prepareGoose(db, driver)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	return nil
}

// Rollback reverts the latest steps migrations.
func Rollback(ctx context.Context, db *gorm.DB, driver string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("gormstore: rollback needs at least one step")
	}
	sqlDB, err := prepareGoose(db, driver)
	if err != nil {
		return err
	}
	for range steps {
		if err := goose.DownContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("gormstore: rollback: %w", err)
		}
	}
	return nil
}

func prepareGoose(db *gorm.DB, driver string) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	dialect := "sqlite3"
	if driver == config.DriverMySQL {
		dialect = "mysql"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("gormstore: dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	return sqlDB, nil
}
