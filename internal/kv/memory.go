// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv

import (
	"context"
	"sync"
)

// MemoryStore is a [Store] backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set implements [Store].
func (store *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, key := range keys {
		delete(store.values, key)
	}
	return nil
}

// Len reports the number of stored keys.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.values)
}
