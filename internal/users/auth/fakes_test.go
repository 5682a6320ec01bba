// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
)

// # In-Memory Fakes

type memoryAccounts struct {
	mu   sync.Mutex
	byID map[string]*Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[string]*Account{}}
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.byID[id]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, apperr.NotFound("Account")
}

func (m *memoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memoryAccounts) Create(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == account.Email {
			return apperr.Conflict("Account already exists")
		}
	}
	clone := *account
	m.byID[account.ID] = &clone
	return nil
}

func (m *memoryAccounts) UpdatePassword(_ context.Context, accountID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.byID[accountID]; ok {
		account.PasswordHash = newHash
	}
	return nil
}

func (m *memoryAccounts) MarkConfirmed(_ context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.byID[accountID]; ok && account.EmailConfirmedAt == nil {
		account.EmailConfirmedAt = &at
	}
	return nil
}

func (m *memoryAccounts) TouchSignIn(_ context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.byID[accountID]; ok {
		account.LastSignInAt = &at
	}
	return nil
}

type memorySessions struct {
	mu   sync.Mutex
	byID map[string]*Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{byID: map[string]*Session{}}
}

func (m *memorySessions) Create(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *session
	m.byID[session.ID] = &clone
	return nil
}

func (m *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.byID {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (m *memorySessions) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.byID[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (m *memorySessions) RevokeOthers(_ context.Context, accountID, keepSessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.byID {
		if session.AccountID == accountID && id != keepSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (m *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, session := range m.byID {
		if !session.ExpiresAt.After(time.Now()) {
			delete(m.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memorySessions) active(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, session := range m.byID {
		if session.AccountID == accountID && !session.IsRevoked {
			count++
		}
	}
	return count
}

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]string{}}
}

func (m *memoryTokens) Set(_ context.Context, token string, accountID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = accountID
	return nil
}

func (m *memoryTokens) Consume(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	accountID, ok := m.tokens[token]
	if !ok {
		return "", apperr.NotFound("Token")
	}
	delete(m.tokens, token)
	return accountID, nil
}

// stubTokenProvider encodes the verified flag so tests can read it back.
type stubTokenProvider struct{}

func (stubTokenProvider) GenerateAccessToken(userID, _ string, emailVerified bool, sessionID string, ttl time.Duration) (string, time.Time, error) {
	verified := "unverified"
	if emailVerified {
		verified = "verified"
	}
	return "access." + userID + "." + sessionID + "." + verified, time.Now().Add(ttl), nil
}

type sentMail struct {
	kind  string
	email string
	link  string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) SendConfirmation(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: VerifySignup, email: email, link: link})
	return nil
}

func (m *recordingMailer) SendRecovery(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: VerifyRecovery, email: email, link: link})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// testRig bundles a service with its fakes.
type testRig struct {
	service       *Service
	accounts      *memoryAccounts
	sessions      *memorySessions
	recovery      *memoryTokens
	confirmations *memoryTokens
	mailer        *recordingMailer
}

func newTestRig(options Options) *testRig {
	rig := &testRig{
		accounts:      newMemoryAccounts(),
		sessions:      newMemorySessions(),
		recovery:      newMemoryTokens(),
		confirmations: newMemoryTokens(),
		mailer:        &recordingMailer{},
	}
	if options.SiteURL == "" {
		options.SiteURL = "https://app.uptowngym.rw"
	}
	rig.service = NewService(rig.accounts, rig.sessions, rig.recovery, rig.confirmations, stubTokenProvider{}, rig.mailer, options)
	return rig
}
