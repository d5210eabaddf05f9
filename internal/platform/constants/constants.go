// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the fixed values shared across layers: server
// timing, rate limits, token defaults, panel defaults and header names.
package constants

import "time"

const (
	AppName    = "panelkit"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultWriteTimeout leaves room for export rendering.
	DefaultWriteTimeout = 60 * time.Second

	// GlobalRequestTimeout bounds a request end to end. The Postgres pool
	// uses it as the statement timeout too.
	GlobalRequestTimeout = 30 * time.Second

	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100

	RateLimitCleanupInterval = time.Minute
	// RateLimitClientTTL is the idle time after which a client's bucket is dropped.
	RateLimitClientTTL = 5 * time.Minute
)

// # Tokens

const (
	// AuthIssuer is the iss claim of every access token.
	AuthIssuer = "panelkit"

	// DefaultTokenTTL is the lifetime of tokens issued by panelctl.
	DefaultTokenTTL = 12 * time.Hour
)

// # Panel Defaults

const (
	DefaultCacheTTL           = 5 * time.Minute
	DefaultMaxVersions        = 50
	DefaultTrashRetentionDays = 30
	DefaultExportMaxRecords   = 10000
)

// # Headers

const (
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRequestID    = "X-Request-ID"
	HeaderDisposition   = "Content-Disposition"
)

// # Cache Keys

const (
	RedisPrefixPanel = "panel:"
	RedisPrefixTag   = "panel:tag:"
)
