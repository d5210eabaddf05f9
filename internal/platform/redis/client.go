// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the shared panel cache.

The cache holds index pages, single records and resolved field sets under
per-resource tag sets (see internal/platform/cache). Entries are disposable,
so the client favours short timeouts over retries: a slow Redis degrades to
cache misses instead of slow panel responses.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
	maxRetries  = 1
	pingTimeout = 2 * time.Second
)

// Connect parses redisURL, applies the cache tuning and verifies the server
// answers before returning.
func Connect(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = 4 * runtime.GOMAXPROCS(0)
	options.MinIdleConns = 1
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout
	options.MaxRetries = maxRetries
	options.ContextTimeoutEnabled = true

	client := redis.NewClient(options)
	if err := HealthCheck(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// HealthCheck returns a readiness probe for client.
func HealthCheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: ping failed: %w", err)
		}
		return nil
	}
}
