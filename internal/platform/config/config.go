// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config reads the process environment into [Config] with
caarlos0/env and rejects inconsistent settings before anything connects.

	DATABASE_DRIVER=sqlite DATABASE_URL=panel.db \
	JWT_PRIVATE_KEY_PATH=keys/private.pem JWT_PUBLIC_KEY_PATH=keys/public.pem \
	PANEL_POLICY_FALLBACK=deny ./api

Panel settings share the PANEL_ prefix. The loaded value is passed down by
constructors; nothing reads the environment after startup.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Database Drivers

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

// # Configuration Schema

// Config holds all runtime configuration for the panel API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational database. Postgres goes through pgx; sqlite and mysql through gorm.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	// DatabaseMaxConns caps the pgx pool. Ignored by the gorm drivers.
	DatabaseMaxConns int32 `env:"DATABASE_MAX_CONNS" envDefault:"20"`

	// MigrationPath is the filesystem path to the Postgres SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty selects the in-process cache.
	RedisURL string `env:"REDIS_URL"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	Panel PanelConfig `envPrefix:"PANEL_"`
}

// PanelConfig tunes the resource pipeline.
type PanelConfig struct {
	DefaultPerPage int           `env:"DEFAULT_PER_PAGE" envDefault:"25"`
	MaxPerPage     int           `env:"MAX_PER_PAGE"     envDefault:"100"`
	CacheTTL       time.Duration `env:"CACHE_TTL"        envDefault:"5m"`

	// PolicyFallback applies when a resource has no policy: "deny" or "allow".
	PolicyFallback string `env:"POLICY_FALLBACK" envDefault:"deny"`

	MaxVersions        int `env:"MAX_VERSIONS"         envDefault:"50"`
	TrashRetentionDays int `env:"TRASH_RETENTION_DAYS" envDefault:"30"`
	ExportMaxRecords   int `env:"EXPORT_MAX_RECORDS"   envDefault:"10000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.Panel.PolicyFallback {
	case "deny", "allow":
	default:
		return fmt.Errorf("config: PANEL_POLICY_FALLBACK must be deny or allow, got %q", c.Panel.PolicyFallback)
	}

	if c.IsProduction() && c.Panel.AllowOnMissingPolicy() {
		return fmt.Errorf("config: PANEL_POLICY_FALLBACK=allow is not permitted in production")
	}

	if c.Panel.DefaultPerPage < 1 || c.Panel.MaxPerPage < c.Panel.DefaultPerPage {
		return fmt.Errorf("config: invalid per page bounds %d/%d", c.Panel.DefaultPerPage, c.Panel.MaxPerPage)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowOnMissingPolicy reports whether resources without a policy are open.
func (c *PanelConfig) AllowOnMissingPolicy() bool {
	return c.PolicyFallback == "allow"
}

// Origins returns the configured extra CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
