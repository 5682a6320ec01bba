// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rest implements [backend.Client] over the backing service's HTTP API.

The client owns the current session: it persists it through a
[backend.TokenStore], refreshes the access token shortly before it expires
and emits auth events to subscribers.

Events are emitted synchronously on the goroutine that caused them, after the
new session has been stored.
*/
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/kv"
	"github.com/taibuivan/uptowngym/internal/platform/constants"
)

// # Defaults

const (
	// DefaultRefreshMargin is how long before expiry the access token is refreshed.
	DefaultRefreshMargin = time.Minute

	// DefaultTimeout bounds every HTTP round trip.
	DefaultTimeout = 15 * time.Second

	refreshTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// Options configure a [Client].
type Options struct {
	// BaseURL is the service root, e.g. https://api.uptowngym.rw.
	BaseURL string

	// HTTPClient defaults to a client with [DefaultTimeout].
	HTTPClient *http.Client

	// Tokens persists the session. Defaults to an in-memory store.
	Tokens *backend.TokenStore

	// AutoRefresh schedules a refresh before the access token expires.
	AutoRefresh bool

	// RefreshMargin defaults to [DefaultRefreshMargin].
	RefreshMargin time.Duration

	Logger *slog.Logger
}

// # Client

// Client is the HTTP implementation of [backend.Client].
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        *backend.TokenStore
	logger        *slog.Logger
	emitter       backend.Emitter
	autoRefresh   bool
	refreshMargin time.Duration
	now           func() time.Time

	mu           sync.Mutex
	session      *backend.Session
	loaded       bool
	refreshTimer *time.Timer
	closed       bool
}

var _ backend.Client = (*Client)(nil)

// New validates options and returns a ready [Client].
func New(options Options) (*Client, error) {
	parsed, err := url.Parse(options.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("rest_invalid_base_url: %q", options.BaseURL)
	}

	client := &Client{
		baseURL:       strings.TrimRight(options.BaseURL, "/"),
		httpClient:    options.HTTPClient,
		tokens:        options.Tokens,
		logger:        options.Logger,
		autoRefresh:   options.AutoRefresh,
		refreshMargin: options.RefreshMargin,
		now:           time.Now,
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if client.tokens == nil {
		client.tokens = backend.NewTokenStore(kv.NewMemoryStore())
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	if client.refreshMargin <= 0 {
		client.refreshMargin = DefaultRefreshMargin
	}

	return client, nil
}

// Close stops the refresh timer. The persisted session is kept.
func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.closed = true
	if client.refreshTimer != nil {
		client.refreshTimer.Stop()
		client.refreshTimer = nil
	}
}

// OnAuthStateChange implements [backend.Auth].
func (client *Client) OnAuthStateChange(listener backend.Listener) backend.Subscription {
	return client.emitter.Subscribe(listener)
}

// Profiles implements [backend.Client].
func (client *Client) Profiles() backend.ProfileTable {
	return &profileTable{client: client}
}

// AuditLogs implements [backend.Client].
func (client *Client) AuditLogs() backend.AuditTable {
	return &auditTable{client: client}
}

// # Session State

// current returns the in-memory session, loading it from the token store once.
func (client *Client) current(context context.Context) (*backend.Session, error) {
	client.mu.Lock()
	if client.loaded {
		session := client.session
		client.mu.Unlock()
		return session, nil
	}
	client.mu.Unlock()

	session, err := client.tokens.Load(context)
	if err != nil {
		return nil, err
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if !client.loaded {
		client.session = session
		client.loaded = true
		if session != nil {
			client.scheduleRefreshLocked(session)
		}
	}
	return client.session, nil
}

// storeSession installs session, persists it and emits event.
func (client *Client) storeSession(context context.Context, session *backend.Session, event backend.Event) {
	client.mu.Lock()
	client.session = session
	client.loaded = true
	client.scheduleRefreshLocked(session)
	client.mu.Unlock()

	if err := client.tokens.Save(context, session); err != nil {
		client.logger.Warn("session_persist_failed", slog.Any("error", err))
	}

	client.emitter.Emit(event, session)
}

// dropSession forgets the session and emits [backend.EventSignedOut].
func (client *Client) dropSession(context context.Context) {
	client.mu.Lock()
	client.session = nil
	client.loaded = true
	if client.refreshTimer != nil {
		client.refreshTimer.Stop()
		client.refreshTimer = nil
	}
	client.mu.Unlock()

	if err := client.tokens.Clear(context); err != nil {
		client.logger.Warn("session_clear_failed", slog.Any("error", err))
	}

	client.emitter.Emit(backend.EventSignedOut, nil)
}

func (client *Client) scheduleRefreshLocked(session *backend.Session) {
	if client.refreshTimer != nil {
		client.refreshTimer.Stop()
		client.refreshTimer = nil
	}
	if !client.autoRefresh || client.closed || session.RefreshToken == "" {
		return
	}

	delay := session.ExpiresAt.Sub(client.now()) - client.refreshMargin
	if delay < 0 {
		delay = 0
	}

	refreshToken := session.RefreshToken
	client.refreshTimer = time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		client.mu.Lock()
		stale := client.closed || client.session == nil || client.session.RefreshToken != refreshToken
		client.mu.Unlock()
		if stale {
			return
		}

		if _, err := client.refresh(ctx, refreshToken); err != nil {
			client.logger.Warn("session_auto_refresh_failed", slog.Any("error", err))
		}
	})
}

// # Transport

// do sends one JSON request. out may be nil.
func (client *Client) do(context context.Context, method, path string, query url.Values, body, out any, bearer string) error {
	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest_encode_body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(context, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("rest_build_request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "gymctl/"+constants.AppVersion)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("rest_send %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return decodeError(response)
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("rest_decode_response: %w", err)
	}
	return nil
}

func decodeError(response *http.Response) error {
	apiErr := &backend.Error{Status: response.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(response.StatusCode)
	}
	apiErr.Status = response.StatusCode

	return apiErr
}

// bearer returns the access token of the live session, refreshing it when needed.
func (client *Client) bearer(context context.Context) (string, error) {
	session, err := client.GetSession(context)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.AccessToken, nil
}

// # Token Decoding

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         backend.User `json:"user"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// toSession converts a grant response. The session id and a missing expiry are
// read from the access token without verifying it; the server verifies tokens.
func (token tokenResponse) toSession(now time.Time) (*backend.Session, error) {
	if token.AccessToken == "" {
		return nil, errors.New("rest_token_response: missing access_token")
	}

	session := &backend.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		User:         token.User,
	}

	switch {
	case token.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(token.ExpiresAt, 0).UTC()
	case token.ExpiresIn > 0:
		session.ExpiresAt = now.Add(time.Duration(token.ExpiresIn) * time.Second).UTC()
	}

	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err == nil {
		session.ID = claims.SessionID
		if session.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time.UTC()
		}
		if session.User.ID == "" {
			session.User.ID = claims.Subject
		}
	}

	if session.ID == "" {
		session.ID = session.RefreshToken
	}

	return session, nil
}
