// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kv provides the local persistent key-value storage used by clients.

Values are opaque byte slices and every write replaces the whole value.
Three backends share the [Store] contract:

  - [MemoryStore]: process-local, used by tests and ephemeral clients.
  - [SQLiteStore]: a single-file database for the terminal client.
  - [RedisStore]: shared storage for server-side front ends.
*/
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is a whole-value key-value store.
type Store interface {
	// Get returns the value stored under key or [ErrNotFound].
	Get(context context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(context context.Context, key string, value []byte) error

	// Delete removes every given key. Missing keys are ignored.
	Delete(context context.Context, keys ...string) error
}
