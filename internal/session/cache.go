// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/uptowngym/internal/kv"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Cache Keys

const (
	AuthStateKey = "uptowngym.auth_state"
	ProfileKey   = "uptowngym.profile"
)

// AuthSnapshot is the cached coarse auth state.
type AuthSnapshot struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsAdmin         bool      `json:"isAdmin"`
	UserID          string    `json:"userId"`
	Email           string    `json:"email"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// ProfileSnapshot is the cached subset of a profile row.
type ProfileSnapshot struct {
	ID       string       `json:"id"`
	Role     sec.UserRole `json:"role"`
	IsAdmin  bool         `json:"is_admin"`
	FullName string       `json:"full_name"`
}

// Cache is the advisory write-through copy of auth and profile state.
// Every write replaces the whole entry. Readers must re-validate anything
// used for authorization.
type Cache struct {
	store kv.Store
}

// NewCache wraps store.
func NewCache(store kv.Store) *Cache {
	return &Cache{store: store}
}

// SaveAuthState replaces the auth state entry.
func (cache *Cache) SaveAuthState(context context.Context, snapshot AuthSnapshot) error {
	return cache.put(context, AuthStateKey, snapshot)
}

// AuthState returns the cached auth state, or nil.
func (cache *Cache) AuthState(context context.Context) (*AuthSnapshot, error) {
	var snapshot AuthSnapshot
	found, err := cache.get(context, AuthStateKey, &snapshot)
	if !found || err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveProfile replaces the profile snapshot.
func (cache *Cache) SaveProfile(context context.Context, snapshot ProfileSnapshot) error {
	return cache.put(context, ProfileKey, snapshot)
}

// Profile returns the cached snapshot when it belongs to userID, or nil.
func (cache *Cache) Profile(context context.Context, userID string) (*ProfileSnapshot, error) {
	var snapshot ProfileSnapshot
	found, err := cache.get(context, ProfileKey, &snapshot)
	if !found || err != nil || snapshot.ID != userID {
		return nil, err
	}
	return &snapshot, nil
}

// Clear removes both entries.
func (cache *Cache) Clear(context context.Context) error {
	if err := cache.store.Delete(context, AuthStateKey, ProfileKey); err != nil {
		return fmt.Errorf("session_cache_clear: %w", err)
	}
	return nil
}

func (cache *Cache) put(context context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session_cache_encode: %w", err)
	}
	if err := cache.store.Set(context, key, raw); err != nil {
		return fmt.Errorf("session_cache_set: %w", err)
	}
	return nil
}

// get decodes key into target. A corrupt entry is deleted and reported absent.
func (cache *Cache) get(context context.Context, key string, target any) (bool, error) {
	raw, err := cache.store.Get(context, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session_cache_get: %w", err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		_ = cache.store.Delete(context, key)
		return false, nil
	}
	return true, nil
}
