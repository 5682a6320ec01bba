// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a [Store] backed by Redis. Keys are namespaced by prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store writing under prefix. A zero ttl keeps keys
// until they are deleted.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Get implements [Store].
func (store *RedisStore) Get(context context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(context, store.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv_redis_get: %w", err)
	}
	return value, nil
}

// Set implements [Store].
func (store *RedisStore) Set(context context.Context, key string, value []byte) error {
	if err := store.client.Set(context, store.key(key), value, store.ttl).Err(); err != nil {
		return fmt.Errorf("kv_redis_set: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (store *RedisStore) Delete(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = store.key(key)
	}

	if err := store.client.Del(context, prefixed...).Err(); err != nil {
		return fmt.Errorf("kv_redis_delete: %w", err)
	}
	return nil
}

func (store *RedisStore) key(key string) string {
	return store.prefix + key
}
