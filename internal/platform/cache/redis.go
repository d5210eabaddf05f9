// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/panelkit/internal/platform/constants"
)

// scanBatch is the COUNT hint used while flushing.
const scanBatch = 200

// RedisStore keeps entries under a key prefix and records tag membership in
// one Redis set per tag.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	tagPrefix string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    constants.RedisPrefixPanel,
		tagPrefix: constants.RedisPrefixTag,
	}
}

// Get implements [Store].
func (store *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := store.client.Get(ctx, store.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return raw, true, nil
}

// Set implements [Store]. The value and its tag memberships are written in
// one pipeline.
func (store *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, store.prefix+key, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, store.tagPrefix+tag, store.prefix+key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Delete implements [Store].
func (store *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = store.prefix + key
	}
	if err := store.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}
	return nil
}

// FlushTags implements [TagFlusher]: every key recorded under the tags is
// deleted together with the tag sets themselves.
func (store *RedisStore) FlushTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		setKey := store.tagPrefix + tag
		members, err := store.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return fmt.Errorf("cache: read tag %s: %w", tag, err)
		}
		if err := store.client.Del(ctx, append(members, setKey)...).Err(); err != nil {
			return fmt.Errorf("cache: flush tag %s: %w", tag, err)
		}
	}
	return nil
}

// Flush implements [Store]. Only keys under the panel prefix are removed.
func (store *RedisStore) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := store.client.Scan(ctx, cursor, store.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache: scan: %w", err)
		}
		if len(keys) > 0 {
			if err := store.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache: flush: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
