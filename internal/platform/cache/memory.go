// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local [Store] without tag support.
//
// It is used when no Redis URL is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	store.mu.RLock()
	entry, ok := store.entries[key]
	store.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && store.now().After(entry.expiresAt) {
		_ = store.Delete(context.Background(), key)
		return nil, false, nil
	}
	return slices.Clone(entry.value), true, nil
}

// Set implements [Store]. Tags are ignored.
func (store *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, _ ...string) error {
	entry := memoryEntry{value: slices.Clone(value)}
	if ttl > 0 {
		entry.expiresAt = store.now().Add(ttl)
	}

	store.mu.Lock()
	store.entries[key] = entry
	store.mu.Unlock()
	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, keys ...string) error {
	store.mu.Lock()
	for _, key := range keys {
		delete(store.entries, key)
	}
	store.mu.Unlock()
	return nil
}

// Flush implements [Store].
func (store *MemoryStore) Flush(_ context.Context) error {
	store.mu.Lock()
	store.entries = make(map[string]memoryEntry)
	store.mu.Unlock()
	return nil
}

// Len returns the number of live and expired entries held.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}
