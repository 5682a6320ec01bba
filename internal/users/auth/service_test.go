// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

/*
TestService_SignUp_WithoutConfirmation issues a session immediately.
*/
func TestService_SignUp_WithoutConfirmation(t *testing.T) {
	rig := newTestRig(Options{})

	result, err := rig.service.SignUp(context.Background(), SignUpInput{
		Email:    " Member@Example.com ",
		Password: "deadlift-9",
		FullName: "  Aline   Uwase ",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Nil(t, result.ConfirmationSentAt)
	assert.Equal(t, "member@example.com", result.User.Email)
	assert.Equal(t, "Aline Uwase", result.User.UserMetadata.FullName)
	assert.NotEmpty(t, result.Session.RefreshToken)
	assert.Equal(t, "bearer", result.Session.TokenType)
	assert.Equal(t, 1, rig.sessions.active(result.User.ID))
}

/*
TestService_SignUp_WithConfirmation mails a link and defers the session.
*/
func TestService_SignUp_WithConfirmation(t *testing.T) {
	rig := newTestRig(Options{ConfirmEmail: true})
	ctx := context.Background()

	result, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	require.NotNil(t, result.ConfirmationSentAt)

	mail := rig.mailer.last()
	assert.Equal(t, VerifySignup, mail.kind)
	assert.Contains(t, mail.link, "https://app.uptowngym.rw")

	// Unconfirmed accounts cannot sign in.
	_, err = rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "member@example.com", Password: "deadlift-9"})
	assert.True(t, apperr.HasCode(err, apperr.CodeEmailNotConfirmed))

	session, err := rig.service.Verify(ctx, VerifyInput{Type: VerifySignup, Token: tokenFromLink(t, mail.link)})
	require.NoError(t, err)
	assert.NotNil(t, session.User.EmailConfirmedAt)

	_, err = rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "member@example.com", Password: "deadlift-9"})
	assert.NoError(t, err)
}

/*
TestService_SignUp_AllowlistedEmailMustConfirm verifies an allowlisted address
gets no session, and no verified token, until its mailbox is confirmed, even
when confirmation is off for everyone else.
*/
func TestService_SignUp_AllowlistedEmailMustConfirm(t *testing.T) {
	rig := newTestRig(Options{Allowlist: sec.NewAllowlist(sec.DefaultAdminEmails...)})
	ctx := context.Background()

	member, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)
	require.NotNil(t, member.Session)

	result, err := rig.service.SignUp(ctx, SignUpInput{Email: "Admin@UptownGym.rw", Password: "deadlift-9"})
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	require.NotNil(t, result.ConfirmationSentAt)
	assert.Nil(t, result.User.EmailConfirmedAt)

	_, err = rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "admin@uptowngym.rw", Password: "deadlift-9"})
	assert.True(t, apperr.HasCode(err, apperr.CodeEmailNotConfirmed), "got %v", err)

	mail := rig.mailer.last()
	assert.Equal(t, VerifySignup, mail.kind)
	assert.Equal(t, "admin@uptowngym.rw", mail.email)

	session, err := rig.service.Verify(ctx, VerifyInput{Type: VerifySignup, Token: tokenFromLink(t, mail.link)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(session.AccessToken, ".verified"), session.AccessToken)

	signedIn, err := rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "admin@uptowngym.rw", Password: "deadlift-9"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(signedIn.AccessToken, ".verified"), signedIn.AccessToken)
}

func TestService_SignUp_DuplicateEmail(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	_, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)

	_, err = rig.service.SignUp(ctx, SignUpInput{Email: "MEMBER@example.com", Password: "deadlift-9"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestService_SignInWithPassword checks credential failures share one error.
*/
func TestService_SignInWithPassword(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	_, err := rig.service.SignUp(ctx, SignUpInput{Email: "admin@uptowngym.rw", Password: "deadlift-9"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "admin@uptowngym.rw", "deadlift-9", false},
		{"valid_mixed_case", "Admin@UptownGym.rw", "deadlift-9", false},
		{"wrong_password", "admin@uptowngym.rw", "bench-press", true},
		{"unknown_email", "ghost@uptowngym.rw", "deadlift-9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := rig.service.SignInWithPassword(ctx, PasswordGrant{Email: tt.email, Password: tt.password})
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, session.User.LastSignInAt)
		})
	}
}

/*
TestService_Refresh_Rotation ensures a refresh token works exactly once.
*/
func TestService_Refresh_Rotation(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	result, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)

	rotated, err := rig.service.Refresh(ctx, result.Session.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, result.Session.RefreshToken, rotated.RefreshToken)

	_, err = rig.service.Refresh(ctx, result.Session.RefreshToken, "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestService_Recover_Flow covers unknown addresses, link delivery and redemption.
*/
func TestService_Recover_Flow(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	_, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)

	// Unknown addresses succeed without mail.
	require.NoError(t, rig.service.Recover(ctx, "ghost@example.com", ""))
	assert.Empty(t, rig.mailer.sent)

	require.NoError(t, rig.service.Recover(ctx, "member@example.com", "https://app.uptowngym.rw/reset"))
	mail := rig.mailer.last()
	assert.Equal(t, VerifyRecovery, mail.kind)
	assert.Contains(t, mail.link, "https://app.uptowngym.rw/reset?")

	token := tokenFromLink(t, mail.link)
	session, err := rig.service.Verify(ctx, VerifyInput{Type: VerifyRecovery, Token: token})
	require.NoError(t, err)

	// Tokens are single-use.
	_, err = rig.service.Verify(ctx, VerifyInput{Type: VerifyRecovery, Token: token})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = rig.service.UpdatePassword(ctx, session.User.ID, "", "squat-rack-12")
	require.NoError(t, err)

	_, err = rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "member@example.com", Password: "squat-rack-12"})
	assert.NoError(t, err)
}

func TestService_ActionLink_ForeignRedirectIgnored(t *testing.T) {
	rig := newTestRig(Options{})

	link := rig.service.actionLink("https://evil.example/phish", VerifyRecovery, "tok")
	assert.Equal(t, "https://app.uptowngym.rw?token=tok&type=recovery", link)
}

/*
TestService_UpdatePassword_RevokesOtherSessions keeps only the caller's session.
*/
func TestService_UpdatePassword_RevokesOtherSessions(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	first, err := rig.service.SignUp(ctx, SignUpInput{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)
	_, err = rig.service.SignInWithPassword(ctx, PasswordGrant{Email: "member@example.com", Password: "deadlift-9"})
	require.NoError(t, err)
	require.Equal(t, 2, rig.sessions.active(first.User.ID))

	var keep string
	for id := range rig.sessions.byID {
		keep = id
		break
	}

	_, err = rig.service.UpdatePassword(ctx, first.User.ID, keep, "squat-rack-12")
	require.NoError(t, err)
	assert.Equal(t, 1, rig.sessions.active(first.User.ID))
}

func TestService_SignOut_Idempotent(t *testing.T) {
	rig := newTestRig(Options{})
	ctx := context.Background()

	assert.NoError(t, rig.service.SignOut(ctx, ""))
	assert.NoError(t, rig.service.SignOut(ctx, "missing"))
}
