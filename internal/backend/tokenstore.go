// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taibuivan/uptowngym/internal/kv"
)

// SessionKey is the storage key of the persisted session.
const SessionKey = "uptowngym.session"

// TokenStore persists the current [Session] in a [kv.Store].
type TokenStore struct {
	store kv.Store
}

// NewTokenStore wraps store.
func NewTokenStore(store kv.Store) *TokenStore {
	return &TokenStore{store: store}
}

// Load returns the persisted session, or nil when none is stored.
// A corrupt entry is discarded and reported as absent.
func (tokens *TokenStore) Load(context context.Context) (*Session, error) {
	raw, err := tokens.store.Get(context, SessionKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token_store_load: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil || session.AccessToken == "" {
		_ = tokens.store.Delete(context, SessionKey)
		return nil, nil
	}
	return &session, nil
}

// Save replaces the persisted session.
func (tokens *TokenStore) Save(context context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("token_store_encode: %w", err)
	}
	if err := tokens.store.Set(context, SessionKey, raw); err != nil {
		return fmt.Errorf("token_store_save: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (tokens *TokenStore) Clear(context context.Context) error {
	if err := tokens.store.Delete(context, SessionKey); err != nil {
		return fmt.Errorf("token_store_clear: %w", err)
	}
	return nil
}
