// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/uptowngym/internal/platform/dberr"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `id, email, passwordhash, fullname, emailconfirmedat, lastsigninat, createdat, updatedat`

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&account.EmailConfirmedAt,
		&account.LastSignInAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

/*
Create persists a new account into users.account.

Returns:
  - error: apperr.Conflict on a duplicate email, Internal otherwise
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.EmailConfirmedAt,
		account.LastSignInAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return dberr.Wrap(err, "Account", "postgres_account_repo_create_failed")
}

// FindByEmail retrieves a live account by canonical email.
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE email = $1 AND deletedat IS NULL`

	account, err := scanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_find_by_email_failed")
	}
	return account, nil
}

// FindByID retrieves a live account by primary key.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE id = $1 AND deletedat IS NULL`

	account, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_find_by_id_failed")
	}
	return account, nil
}

// UpdatePassword replaces only the password hash.
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, accountID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, accountID, newHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_password_failed: %w", err)
	}
	return nil
}

// MarkConfirmed stamps emailconfirmedat once; later calls keep the first value.
func (repository *PostgresAccountRepository) MarkConfirmed(context context.Context, accountID string, at time.Time) error {
	const query = `
		UPDATE users.account
		SET emailconfirmedat = COALESCE(emailconfirmedat, $2), updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, accountID, at)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_mark_confirmed_failed: %w", err)
	}
	return nil
}

// TouchSignIn records the latest successful sign-in.
func (repository *PostgresAccountRepository) TouchSignIn(context context.Context, accountID string, at time.Time) error {
	const query = "UPDATE users.account SET lastsigninat = $2 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, accountID, at)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_touch_sign_in_failed: %w", err)
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new session record into users.session.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, accountid, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.AccountID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash resolves a refresh token hash into an active session.
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, accountid, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		FROM users.session
		WHERE tokenhash = $1 AND isrevoked = FALSE AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.AccountID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Session", "postgres_session_repo_find_failed")
	}
	return session, nil
}

// Revoke marks a specific session as revoked. Revoking twice is a no-op.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE id = $1"

	_, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

// RevokeOthers revokes every active session of the account except one.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, accountID, keepSessionID string) error {
	const query = `
		UPDATE users.session SET isrevoked = TRUE
		WHERE accountid = $1 AND id <> $2 AND isrevoked = FALSE`

	_, err := repository.pool.Exec(context, query, accountID, keepSessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_others_failed: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many went.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	const query = "DELETE FROM users.session WHERE expiresat <= NOW()"

	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
