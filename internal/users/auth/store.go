// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// AccountRepository defines the data access contract for password accounts.
type AccountRepository interface {

	/*
		FindByID returns the live account with the given ID.

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the live account with the given canonical email.

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict when the email is taken, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	// UpdatePassword replaces only the account's password hash.
	UpdatePassword(context context.Context, accountID, newHash string) error

	// MarkConfirmed stamps email_confirmed_at if it is not already set.
	MarkConfirmed(context context.Context, accountID string, at time.Time) error

	// TouchSignIn records the time of the latest successful sign-in.
	TouchSignIn(context context.Context, accountID string, at time.Time) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh sessions.
type SessionRepository interface {

	// Create persists a new refresh session.
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound when revoked, expired or unknown
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// Revoke marks a specific session as permanently invalidated.
	Revoke(context context.Context, sessionID string) error

	// RevokeOthers revokes every session of the account except keepSessionID.
	RevokeOthers(context context.Context, accountID, keepSessionID string) error

	// DeleteExpired physically removes sessions whose expiry is in the past.
	DeleteExpired(context context.Context) (int64, error)
}

// # Volatile Data Access

// OneTimeTokenRepository stores short-lived single-use tokens mapped to an account.
// Implementations are scoped to one purpose (recovery or confirmation).
type OneTimeTokenRepository interface {

	// Set stores the token for accountID with a TTL.
	Set(context context.Context, token string, accountID string, ttl time.Duration) error

	/*
		Consume returns the accountID bound to token and deletes the token.

		Returns:
		  - string: Account ID
		  - error: apperr.NotFound when the token is absent or expired
	*/
	Consume(context context.Context, token string) (string, error)
}

// # Outbound Mail

// Mailer delivers confirmation and recovery links.
type Mailer interface {
	SendConfirmation(context context.Context, email, link string) error
	SendRecovery(context context.Context, email, link string) error
}
