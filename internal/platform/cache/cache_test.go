// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/cache"
)

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client), server
}

/*
TestRedisStore_FlushTags drops only the keys recorded under the tag.
*/
func TestRedisStore_FlushTags(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	require.NoError(t, store.Set(ctx, "products:index:a", []byte("1"), time.Minute, "products"))
	require.NoError(t, store.Set(ctx, "products:record:1", []byte("2"), time.Minute, "products"))
	require.NoError(t, store.Set(ctx, "users:index:a", []byte("3"), time.Minute, "users"))

	require.NoError(t, store.FlushTags(ctx, "products"))

	_, found, err := store.Get(ctx, "products:index:a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, _ = store.Get(ctx, "products:record:1")
	assert.False(t, found)

	value, found, _ := store.Get(ctx, "users:index:a")
	assert.True(t, found)
	assert.Equal(t, []byte("3"), value)
}

/*
TestRedisStore_TTL expires entries once miniredis time moves forward.
*/
func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))
	server.FastForward(2 * time.Second)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestRedisStore_Flush removes only prefixed keys.
*/
func TestRedisStore_Flush(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	require.NoError(t, server.Set("foreign", "keep"))
	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Flush(ctx))

	_, found, _ := store.Get(ctx, "a")
	assert.False(t, found)
	assert.True(t, server.Exists("foreign"))
}

/*
TestMemoryStore_Basics covers set, get, expiry and flush.
*/
func TestMemoryStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	assert.False(t, cache.SupportsTags(store))

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute, "ignored"))
	value, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("1"), value)

	require.NoError(t, store.Set(ctx, "expired", []byte("x"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, found, _ = store.Get(ctx, "expired")
	assert.False(t, found)

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.Len())
}

/*
TestJSONHelpers round-trips a value through the store.
*/
func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	require.NoError(t, cache.SetJSON(ctx, store, "k", map[string]int{"n": 3}, time.Minute))

	var decoded map[string]int
	found, err := cache.GetJSON(ctx, store, "k", &decoded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, decoded["n"])

	found, err = cache.GetJSON(ctx, store, "missing", &decoded)
	require.NoError(t, err)
	assert.False(t, found)
}
