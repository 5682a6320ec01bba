// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity half of the backing service.

It owns password accounts, refresh-token sessions and the one-time tokens
used for email confirmation and password recovery, and exposes them through
a small hosted-auth style HTTP surface (`/auth/v1/*`).

# Architecture

  - Entities: [Account] and [Session] carry no transport concerns.
  - Repositories: PostgreSQL for durable rows, Redis for one-time tokens.
  - Service: the sign-up, sign-in, refresh, sign-out and recovery use cases.
  - Handler: JSON mapping, validation and rate limiting.
*/
package auth

import "time"

// # Domain Entities

// Account is a password identity. Profile data (role, flags) lives in the
// profiles record set, keyed by the same ID.
type Account struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	FullName         string     `json:"full_name"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Confirmed reports whether the account's email address has been verified.
func (account *Account) Confirmed() bool {
	return account.EmailConfirmedAt != nil
}

// Session is one refresh-token lineage. Rotation revokes the row and creates
// a successor, so a stolen refresh token is only good once.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Wire Shapes

// UserMetadata is the free-form metadata attached at sign-up.
type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// User is the public view of an [Account].
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	UserMetadata     UserMetadata `json:"user_metadata"`
	EmailConfirmedAt *time.Time   `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time   `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewUser projects an account onto its public view.
func NewUser(account *Account) *User {
	return &User{
		ID:               account.ID,
		Email:            account.Email,
		UserMetadata:     UserMetadata{FullName: account.FullName},
		EmailConfirmedAt: account.EmailConfirmedAt,
		LastSignInAt:     account.LastSignInAt,
		CreatedAt:        account.CreatedAt,
	}
}

// TokenResponse is returned by every grant that yields a live session.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// SignUpResponse is returned by sign-up when email confirmation is required.
type SignUpResponse struct {
	*User
	ConfirmationSentAt time.Time `json:"confirmation_sent_at"`
}

// # Field Identifiers

const (
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldFullName   = "data.full_name"
	FieldGrantType  = "grant_type"
	FieldRefresh    = "refresh_token"
	FieldToken      = "token"
	FieldType       = "type"
	FieldRedirectTo = "redirect_to"
)

// Grant types accepted by POST /token.
const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

// One-time token purposes accepted by POST /verify.
const (
	VerifySignup   = "signup"
	VerifyRecovery = "recovery"
)
