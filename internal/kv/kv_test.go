// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/internal/kv"
)

func exerciseStore(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "uptowngym.auth_state", []byte(`{"isAuthenticated":true}`)))
	require.NoError(t, store.Set(ctx, "uptowngym.profile", []byte(`{"id":"u1"}`)))

	value, err := store.Get(ctx, "uptowngym.auth_state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAuthenticated":true}`, string(value))

	// Whole-value replace.
	require.NoError(t, store.Set(ctx, "uptowngym.auth_state", []byte(`{"isAuthenticated":false}`)))
	value, err = store.Get(ctx, "uptowngym.auth_state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAuthenticated":false}`, string(value))

	require.NoError(t, store.Delete(ctx, "uptowngym.auth_state", "uptowngym.profile", "never-set"))

	_, err = store.Get(ctx, "uptowngym.auth_state")
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, "uptowngym.profile")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Delete(ctx))
}

func TestMemoryStore(t *testing.T) {
	store := kv.NewMemoryStore()
	exerciseStore(t, store)
	assert.Zero(t, store.Len())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	stored, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(stored))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := kv.NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gymctl")

	store, err := kv.NewSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "uptowngym.profile", []byte(`{"id":"u1","role":"member"}`)))
	require.NoError(t, store.Close())

	reopened, err := kv.NewSQLiteStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, err := reopened.Get(ctx, "uptowngym.profile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","role":"member"}`, string(value))
}
