// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides the key-value store behind the panel caching concern.

Two implementations are available:

  - [RedisStore]: shared, supports tag groups through Redis sets.
  - [MemoryStore]: in-process, has no tag support.

Callers that need to invalidate a group of keys check for [TagFlusher] and
fall back to [Store.Flush] when the store cannot group keys. On a shared
store without tags that flush drops unrelated entries too.
*/
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is a TTL key-value store.
type Store interface {
	// Get returns the stored bytes and whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. Tags are recorded when the store supports them.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Flush removes every entry the store owns.
	Flush(ctx context.Context) error
}

// TagFlusher is implemented by stores that can drop every key of a tag.
type TagFlusher interface {
	FlushTags(ctx context.Context, tags ...string) error
}

// SupportsTags reports whether store can group keys under tags.
func SupportsTags(store Store) bool {
	_, ok := store.(TagFlusher)
	return ok
}

// # JSON Helpers

// GetJSON decodes a cached value into target. It reports false on a miss.
func GetJSON(ctx context.Context, store Store, key string, target any) (bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		// A value we cannot decode is as good as absent.
		_ = store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes value and stores it.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw, ttl, tags...)
}
