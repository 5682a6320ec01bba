// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the lifetime of a JWT access token.
	AccessTokenTTL = 1 * time.Hour

	// RefreshTokenTTL is the lifetime of a refresh session.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32

	// RecoveryTokenTTL bounds the window in which a reset link works.
	RecoveryTokenTTL = 1 * time.Hour

	// ConfirmationTokenTTL bounds the window in which a sign-up confirmation link works.
	ConfirmationTokenTTL = 24 * time.Hour

	// OneTimeTokenLength is the byte length of recovery and confirmation tokens.
	OneTimeTokenLength = 32
)
