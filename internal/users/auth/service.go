// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/ctxutil"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/pkg/textnorm"
	"github.com/taibuivan/uptowngym/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens. [sec.TokenService] implements it.
type TokenProvider interface {
	GenerateAccessToken(userID, email string, emailVerified bool, sessionID string, timeToLive time.Duration) (string, time.Time, error)
}

// Options are the behavioural switches of the auth service.
type Options struct {
	// ConfirmEmail requires a confirmed address before password sign-in.
	ConfirmEmail bool

	// Allowlist addresses always confirm their mailbox, whatever ConfirmEmail says.
	Allowlist sec.Allowlist

	// SiteURL is the default target of confirmation and recovery links and
	// the only host redirect_to may point at.
	SiteURL string
}

// Service implements the account and session use cases.
type Service struct {
	accountRepository  AccountRepository
	sessionRepository  SessionRepository
	recoveryTokens     OneTimeTokenRepository
	confirmationTokens OneTimeTokenRepository
	tokenProvider      TokenProvider
	mailer             Mailer
	options            Options
	now                func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	recoveryRepo OneTimeTokenRepository,
	confirmationRepo OneTimeTokenRepository,
	tokenProv TokenProvider,
	mailer Mailer,
	options Options,
) *Service {
	return &Service{
		accountRepository:  accountRepo,
		sessionRepository:  sessionRepo,
		recoveryTokens:     recoveryRepo,
		confirmationTokens: confirmationRepo,
		tokenProvider:      tokenProv,
		mailer:             mailer,
		options:            options,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// # Registration Flow

// SignUpInput holds the data required to enroll a new member.
type SignUpInput struct {
	Email      string
	Password   string
	FullName   string
	RedirectTo string
	UserAgent  string
	IPAddress  string
}

// SignUpResult carries either a live session (confirmation disabled) or the
// time the confirmation mail went out.
type SignUpResult struct {
	User               *User
	Session            *TokenResponse
	ConfirmationSentAt *time.Time
}

/*
SignUp validates, hashes, and persists a brand-new account.

When email confirmation is disabled the account is confirmed immediately and
a session is issued; otherwise a confirmation link is mailed and no session
exists until the link is followed.

Returns:
  - *SignUpResult: Created user with session or confirmation timestamp
  - error: Conflict when the email is registered, or storage errors
*/
func (service *Service) SignUp(context context.Context, input SignUpInput) (*SignUpResult, error) {
	email := textnorm.Email(input.Email)

	if _, err := service.accountRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("User already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now()
	account := &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     textnorm.FullName(input.FullName),
		CreatedAt:    now,
	}
	confirm := service.requiresConfirmation(email)
	if !confirm {
		account.EmailConfirmedAt = &now
	}

	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, err
	}

	// Confirmation disabled: sign the new member straight in.
	if !confirm {
		session, err := service.issueSession(context, account, input.UserAgent, input.IPAddress)
		if err != nil {
			return nil, err
		}
		return &SignUpResult{User: session.User, Session: session}, nil
	}

	token, err := sec.GenerateSecureToken(OneTimeTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_confirmation_token_failed: %w", err)
	}
	if err := service.confirmationTokens.Set(context, token, account.ID, ConfirmationTokenTTL); err != nil {
		return nil, err
	}

	link := service.actionLink(input.RedirectTo, VerifySignup, token)
	if err := service.mailer.SendConfirmation(context, account.Email, link); err != nil {
		return nil, fmt.Errorf("auth_service_send_confirmation_failed: %w", err)
	}

	return &SignUpResult{User: NewUser(account), ConfirmationSentAt: &now}, nil
}

// requiresConfirmation reports whether email must be confirmed before a
// session is issued. Allowlisted addresses carry admin rights, so they
// always do.
func (service *Service) requiresConfirmation(email string) bool {
	return service.options.ConfirmEmail || service.options.Allowlist.Contains(email)
}

// # Authentication Flow

// PasswordGrant is a password sign-in attempt.
type PasswordGrant struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

/*
SignInWithPassword validates credentials and issues a session.

Unknown emails and wrong passwords produce the same error so the endpoint
cannot be used to enumerate accounts.

Returns:
  - *TokenResponse: Access and refresh tokens with the user
  - error: InvalidCredentials, EmailNotConfirmed or internal failures
*/
func (service *Service) SignInWithPassword(context context.Context, grant PasswordGrant) (*TokenResponse, error) {
	account, err := service.accountRepository.FindByEmail(context, textnorm.Email(grant.Email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(grant.Password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	if service.requiresConfirmation(account.Email) && !account.Confirmed() {
		return nil, apperr.EmailNotConfirmed()
	}

	return service.issueSession(context, account, grant.UserAgent, grant.IPAddress)
}

/*
Refresh implements refresh-token rotation.

The presented token's session is revoked before a successor is issued, so a
replayed refresh token fails.

Returns:
  - *TokenResponse: Rotated tokens
  - error: Unauthorized when the refresh token is unknown, revoked or expired
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*TokenResponse, error) {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid Refresh Token")
		}
		return nil, err
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByID(context, session.AccountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, err
	}

	return service.issueSession(context, account, userAgent, ipAddress)
}

// SignOut revokes the refresh session bound to the access token. Signing out
// an already revoked session succeeds.
func (service *Service) SignOut(context context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return service.sessionRepository.Revoke(context, sessionID)
}

// GetUser returns the public view of the account.
func (service *Service) GetUser(context context.Context, accountID string) (*User, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return NewUser(account), nil
}

// # Password Recovery

/*
Recover mails a recovery link when the email belongs to an account.

Unknown addresses succeed silently so the endpoint cannot be used to probe
for members.
*/
func (service *Service) Recover(context context.Context, email, redirectTo string) error {
	account, err := service.accountRepository.FindByEmail(context, textnorm.Email(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := sec.GenerateSecureToken(OneTimeTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_recovery_token_failed: %w", err)
	}
	if err := service.recoveryTokens.Set(context, token, account.ID, RecoveryTokenTTL); err != nil {
		return err
	}

	link := service.actionLink(redirectTo, VerifyRecovery, token)
	if err := service.mailer.SendRecovery(context, account.Email, link); err != nil {
		return fmt.Errorf("auth_service_send_recovery_failed: %w", err)
	}
	return nil
}

// VerifyInput is a one-time token redemption.
type VerifyInput struct {
	Type      string
	Token     string
	UserAgent string
	IPAddress string
}

/*
Verify redeems a confirmation or recovery token and signs the account in.

Following either link proves control of the mailbox, so both confirm the
email address. A recovery session is then used to call UpdatePassword.

Returns:
  - *TokenResponse: A fresh session
  - error: Unauthorized when the token is invalid or expired
*/
func (service *Service) Verify(context context.Context, input VerifyInput) (*TokenResponse, error) {
	var tokens OneTimeTokenRepository
	switch input.Type {
	case VerifySignup:
		tokens = service.confirmationTokens
	case VerifyRecovery:
		tokens = service.recoveryTokens
	default:
		return nil, apperr.ValidationError("Unsupported verification type", apperr.FieldError{
			Field:   FieldType,
			Message: "Must be one of: signup, recovery",
		})
	}

	accountID, err := tokens.Consume(context, input.Token)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Token has expired or is invalid")
		}
		return nil, err
	}

	now := service.now()
	if err := service.accountRepository.MarkConfirmed(context, accountID, now); err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	return service.issueSession(context, account, input.UserAgent, input.IPAddress)
}

/*
UpdatePassword sets a new password for the signed-in account and revokes
every other refresh session, so other devices must sign in again.

Returns:
  - *User: Updated user
  - error: storage failures
*/
func (service *Service) UpdatePassword(context context.Context, accountID, currentSessionID, newPassword string) (*User, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_update_password_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return nil, err
	}

	if err := service.sessionRepository.RevokeOthers(context, accountID, currentSessionID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_revoke_other_sessions_failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}

	return NewUser(account), nil
}

// PurgeExpiredSessions deletes expired refresh sessions.
func (service *Service) PurgeExpiredSessions(context context.Context) (int64, error) {
	return service.sessionRepository.DeleteExpired(context)
}

// # Internal Helpers

// issueSession creates a refresh session row and signs a matching access token.
func (service *Service) issueSession(context context.Context, account *Account, userAgent, ipAddress string) (*TokenResponse, error) {
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	now := service.now()
	session := &Session{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := service.tokenProvider.GenerateAccessToken(account.ID, account.Email, account.Confirmed(), session.ID, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	// Sign-in bookkeeping never fails the sign-in.
	if err := service.accountRepository.TouchSignIn(context, account.ID, now); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_touch_sign_in_failed",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	} else {
		account.LastSignInAt = &now
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refreshToken,
		User:         NewUser(account),
	}, nil
}

// actionLink builds the mailed link. redirect_to is honoured only when it
// points at the configured site host.
func (service *Service) actionLink(redirectTo, kind, token string) string {
	target, err := url.Parse(service.options.SiteURL)
	if err != nil || target.Host == "" {
		target = &url.URL{Scheme: "http", Host: "localhost:3000"}
	}

	if redirectTo != "" {
		if requested, err := url.Parse(redirectTo); err == nil && requested.Host == target.Host {
			target = requested
		}
	}

	query := target.Query()
	query.Set("type", kind)
	query.Set("token", token)
	target.RawQuery = query.Encode()
	return target.String()
}
