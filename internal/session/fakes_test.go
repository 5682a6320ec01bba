// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/kv"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/session"
)

const (
	adminID     = "0192f8a4-0000-7000-8000-00000000000a"
	adminEmail  = "admin@uptowngym.rw"
	memberID    = "0192f8a4-0000-7000-8000-00000000000b"
	memberEmail = "member@example.com"
	password    = "deadlift-9"
)

// # Fake Backing Service

type fakeUser struct {
	id       string
	password string
	fullName string
}

type fakeBackend struct {
	emitter  backend.Emitter
	profiles *fakeProfiles
	audit    *fakeAudit

	mu            sync.Mutex
	users         map[string]fakeUser
	session       *backend.Session
	sessionSeq    int
	confirmSignUp bool
	getSessionErr error
	signOutErr    error
	resetErr      error
	resetCalls    []string
	lastRedirect  string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profiles: newFakeProfiles(),
		audit:    &fakeAudit{},
		users: map[string]fakeUser{
			adminEmail:  {id: adminID, password: password, fullName: "Gym Admin"},
			memberEmail: {id: memberID, password: password, fullName: "Aline Uwase"},
		},
	}
}

func (fake *fakeBackend) newSessionLocked(email string, user fakeUser) *backend.Session {
	fake.sessionSeq++
	return &backend.Session{
		ID:           fmt.Sprintf("sid-%d", fake.sessionSeq),
		AccessToken:  fmt.Sprintf("access-%d", fake.sessionSeq),
		RefreshToken: fmt.Sprintf("refresh-%d", fake.sessionSeq),
		ExpiresAt:    time.Now().Add(time.Hour),
		User: backend.User{
			ID:           user.id,
			Email:        email,
			UserMetadata: backend.UserMetadata{FullName: user.fullName},
		},
	}
}

// presetSession installs a persisted session as if from an earlier run.
func (fake *fakeBackend) presetSession(email string) *backend.Session {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.session = fake.newSessionLocked(email, fake.users[email])
	return fake.session
}

func (fake *fakeBackend) SignInWithPassword(_ context.Context, email, pw string) (*backend.Session, error) {
	fake.mu.Lock()
	user, ok := fake.users[email]
	if !ok || user.password != pw {
		fake.mu.Unlock()
		return nil, &backend.Error{Status: http.StatusBadRequest, Code: backend.CodeInvalidCredentials, Message: "Invalid login credentials"}
	}
	session := fake.newSessionLocked(email, user)
	fake.session = session
	fake.mu.Unlock()

	fake.emitter.Emit(backend.EventSignedIn, session)
	return session, nil
}

func (fake *fakeBackend) SignUp(_ context.Context, email, pw string, metadata backend.UserMetadata) (*backend.SignUpResult, error) {
	fake.mu.Lock()
	if _, exists := fake.users[email]; exists {
		fake.mu.Unlock()
		return nil, &backend.Error{Status: http.StatusConflict, Code: backend.CodeConflict, Message: "User already registered"}
	}
	user := fakeUser{id: fmt.Sprintf("0192f8a4-0000-7000-8000-%012d", len(fake.users)+100), password: pw, fullName: metadata.FullName}
	fake.users[email] = user

	if fake.confirmSignUp {
		fake.mu.Unlock()
		sentAt := time.Now()
		return &backend.SignUpResult{User: backend.User{ID: user.id, Email: email, UserMetadata: metadata}, ConfirmationSentAt: &sentAt}, nil
	}

	session := fake.newSessionLocked(email, user)
	fake.session = session
	fake.mu.Unlock()

	fake.emitter.Emit(backend.EventSignedIn, session)
	return &backend.SignUpResult{User: session.User, Session: session}, nil
}

func (fake *fakeBackend) SignOut(_ context.Context) error {
	fake.mu.Lock()
	fake.session = nil
	err := fake.signOutErr
	fake.mu.Unlock()

	fake.emitter.Emit(backend.EventSignedOut, nil)
	return err
}

func (fake *fakeBackend) GetSession(_ context.Context) (*backend.Session, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.getSessionErr != nil {
		return nil, fake.getSessionErr
	}
	return fake.session, nil
}

func (fake *fakeBackend) OnAuthStateChange(listener backend.Listener) backend.Subscription {
	return fake.emitter.Subscribe(listener)
}

func (fake *fakeBackend) ResetPasswordForEmail(_ context.Context, email, redirectTo string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.resetCalls = append(fake.resetCalls, email)
	fake.lastRedirect = redirectTo
	return fake.resetErr
}

func (fake *fakeBackend) UpdateUser(_ context.Context, attributes backend.UserAttributes) (*backend.User, error) {
	fake.mu.Lock()
	session := fake.session
	if session == nil {
		fake.mu.Unlock()
		return nil, &backend.Error{Status: http.StatusUnauthorized, Code: backend.CodeUnauthorized, Message: "Auth session missing"}
	}
	user := fake.users[session.User.Email]
	user.password = attributes.Password
	fake.users[session.User.Email] = user
	fake.mu.Unlock()

	fake.emitter.Emit(backend.EventUserUpdated, session)
	return &session.User, nil
}

// emit delivers an auth event as the backing service would.
func (fake *fakeBackend) emit(event backend.Event, session *backend.Session) {
	fake.emitter.Emit(event, session)
}

func (fake *fakeBackend) Profiles() backend.ProfileTable { return fake.profiles }
func (fake *fakeBackend) AuditLogs() backend.AuditTable  { return fake.audit }

// # Fake Record Sets

type fakeProfiles struct {
	mu          sync.Mutex
	rows        map[string]backend.Profile
	inserts     int
	selects     int
	selectErr   error
	selectPanic bool

	// gate, when set, holds every select until it is closed. entered is
	// signalled as each select starts.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: make(map[string]backend.Profile)}
}

func (fake *fakeProfiles) hold() {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.gate = make(chan struct{})
	fake.entered = make(chan struct{}, 16)
}

func (fake *fakeProfiles) release() {
	fake.mu.Lock()
	gate := fake.gate
	fake.gate = nil
	fake.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (fake *fakeProfiles) put(profile backend.Profile) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.rows[profile.ID] = profile
}

func (fake *fakeProfiles) get(id string) (backend.Profile, bool) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	row, ok := fake.rows[id]
	return row, ok
}

func (fake *fakeProfiles) counts() (selects, inserts int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.selects, fake.inserts
}

func (fake *fakeProfiles) SelectByID(_ context.Context, id string) (*backend.Profile, error) {
	fake.mu.Lock()
	fake.selects++
	gate, entered := fake.gate, fake.entered
	fake.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.selectPanic {
		panic("profiles: driver exploded")
	}
	if fake.selectErr != nil {
		return nil, fake.selectErr
	}
	row, ok := fake.rows[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &row, nil
}

func (fake *fakeProfiles) SelectByEmail(_ context.Context, email string) (*backend.Profile, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for _, row := range fake.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (fake *fakeProfiles) Insert(_ context.Context, profile *backend.Profile) (*backend.Profile, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if _, exists := fake.rows[profile.ID]; exists {
		return nil, &backend.Error{Status: http.StatusConflict, Code: backend.CodeConflict, Message: "profile already exists"}
	}
	fake.inserts++
	row := *profile
	fake.rows[row.ID] = row
	return &row, nil
}

func (fake *fakeProfiles) Update(_ context.Context, id string, patch backend.ProfilePatch) (*backend.Profile, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	row, ok := fake.rows[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	if patch.LastLoginAt != nil {
		row.LastLoginAt = patch.LastLoginAt
	}
	if patch.FullName != nil {
		row.FullName = *patch.FullName
	}
	fake.rows[id] = row
	return &row, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []backend.AuditEntry
	err     error
}

func (fake *fakeAudit) Insert(_ context.Context, entry backend.AuditEntry) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.err != nil {
		return fake.err
	}
	fake.entries = append(fake.entries, entry)
	return nil
}

func (fake *fakeAudit) list() []backend.AuditEntry {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]backend.AuditEntry(nil), fake.entries...)
}

// # Harness

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type notifications struct {
	mu   sync.Mutex
	list []session.Notification
}

func (n *notifications) Notify(notification session.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, notification)
}

func (n *notifications) all() []session.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]session.Notification(nil), n.list...)
}

type transitions struct {
	mu   sync.Mutex
	list []session.Transition
}

func (t *transitions) record(transition session.Transition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.list = append(t.list, transition)
}

func (t *transitions) phases() []session.TransitionPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	phases := make([]session.TransitionPhase, len(t.list))
	for i, transition := range t.list {
		phases[i] = transition.Phase
	}
	return phases
}

// contextStore fails calls made with a finished context, the way a networked
// store does.
type contextStore struct {
	*kv.MemoryStore
}

func (store contextStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return store.MemoryStore.Get(ctx, key)
}

func (store contextStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.MemoryStore.Set(ctx, key, value)
}

func (store contextStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.MemoryStore.Delete(ctx, keys...)
}

type harness struct {
	backend     *fakeBackend
	store       *kv.MemoryStore
	coordinator *session.Coordinator
	notified    *notifications
	transitions *transitions
	logs        *lockedBuffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, newFakeBackend())
}

func newHarnessWith(t *testing.T, fake *fakeBackend) *harness {
	t.Helper()

	h := &harness{
		backend:     fake,
		store:       kv.NewMemoryStore(),
		notified:    &notifications{},
		transitions: &transitions{},
		logs:        &lockedBuffer{},
	}

	h.coordinator = session.New(session.Options{
		Backend:      fake,
		Store:        contextStore{h.store},
		Allowlist:    sec.NewAllowlist(sec.DefaultAdminEmails...),
		RedirectTo:   "https://app.uptowngym.rw/reset-password",
		Notifier:     h.notified,
		OnTransition: h.transitions.record,
		Logger:       slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	t.Cleanup(func() {
		fake.profiles.release()
		h.coordinator.Close()
	})

	return h
}

// cacheKeys reports which cache entries exist.
func (h *harness) cacheKeys(t *testing.T) []string {
	t.Helper()
	var present []string
	for _, key := range []string{session.AuthStateKey, session.ProfileKey} {
		if _, err := h.store.Get(context.Background(), key); err == nil {
			present = append(present, key)
		}
	}
	return present
}
