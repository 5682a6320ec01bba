// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/kv"
)

func TestEmitter(t *testing.T) {
	var emitter backend.Emitter
	var got []string

	first := emitter.Subscribe(func(event backend.Event, _ *backend.Session) {
		got = append(got, "first:"+string(event))
	})
	emitter.Subscribe(func(event backend.Event, _ *backend.Session) {
		got = append(got, "second:"+string(event))
	})

	emitter.Emit(backend.EventSignedIn, &backend.Session{})
	first.Unsubscribe()
	first.Unsubscribe()
	emitter.Emit(backend.EventSignedOut, nil)

	assert.Equal(t, []string{"first:SIGNED_IN", "second:SIGNED_IN", "second:SIGNED_OUT"}, got)
	assert.Equal(t, 1, emitter.Len())
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	tokens := backend.NewTokenStore(store)

	session, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	saved := &backend.Session{
		ID:           "sid-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		User:         backend.User{ID: "u1", Email: "member@example.com"},
	}
	require.NoError(t, tokens.Save(ctx, saved))

	loaded, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	require.NoError(t, tokens.Clear(ctx))
	loaded, err = tokens.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestTokenStore_DiscardsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, backend.SessionKey, []byte("{not json")))

	session, err := backend.NewTokenStore(store).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Zero(t, store.Len())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	session := &backend.Session{ExpiresAt: now.Add(30 * time.Second)}

	assert.False(t, session.Expired(now, 0))
	assert.True(t, session.Expired(now, time.Minute))
}

func TestErrorHelpers(t *testing.T) {
	apiErr := &backend.Error{Status: http.StatusBadRequest, Code: backend.CodeInvalidCredentials, Message: "Invalid login credentials"}
	wrapped := fmt.Errorf("sign_in: %w", apiErr)

	assert.True(t, backend.HasCode(wrapped, backend.CodeInvalidCredentials))
	assert.Equal(t, "Invalid login credentials", backend.Message(wrapped))
	assert.False(t, apiErr.Temporary())
	assert.True(t, (&backend.Error{Status: http.StatusServiceUnavailable}).Temporary())

	assert.Nil(t, backend.AsError(errors.New("plain")))
	assert.Equal(t, "Not found", backend.Message(backend.ErrNotFound))
	assert.Equal(t, "Something went wrong. Please try again.", backend.Message(errors.New("dial tcp")))
}
