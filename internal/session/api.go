// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/pkg/textnorm"
)

// Audit log vocabulary written by the coordinator.
const (
	AuditActionLogin  = "login"
	AuditEntityTypeMe = "profile"
)

// # Public Auth API
//
// Every operation returns a bool and never an error. Failures are logged and
// surfaced through the [Notifier].

/*
Login signs in with email and password.

The state turns authenticated as soon as the backing service accepts the
credentials, with IsAdmin taken from the allowlist or cache. The login
transition stays pending until the profile is resolved, then confirms.
Rejected credentials roll the transition back to the previous state.

Last-login time and an audit entry are recorded in the background; their
failures are only logged.
*/
func (c *Coordinator) Login(context context.Context, email, password string) bool {
	c.mu.Lock()
	transition := c.beginTransitionLocked(TransitionLogin)
	loading := c.state
	loading.IsLoading = true
	snapshot := c.commitLocked(loading)
	pendingGeneration := snapshot.Generation
	c.mu.Unlock()

	c.emitTransition(transition)
	c.publish(snapshot)

	session, err := c.backend.SignInWithPassword(context, textnorm.Email(email), password)
	if err != nil {
		c.logger.Warn("login_failed", slog.Any("error", err))
		c.rollbackLogin(transition, pendingGeneration, err)
		c.notifier.Notify(Notification{Level: LevelError, Title: "Login failed", Message: backend.Message(err)})
		return false
	}

	task := c.signedIn(signInRequest{event: backend.EventSignedIn, session: session, finishLoading: true})
	if task == nil {
		c.finishLoading()
		return true
	}

	c.goTracked(func() {
		c.settleLogin(transition.Seq, task)
	})
	return true
}

// rollbackLogin restores the state captured by transition when nothing else
// changed it since the login began.
func (c *Coordinator) rollbackLogin(transition Transition, pendingGeneration uint64, cause error) {
	c.mu.Lock()
	var snapshot *State
	if c.state.Generation == pendingGeneration {
		restored := c.commitLocked(transition.Previous)
		snapshot = &restored
	}
	settled, ok := c.settleTransitionLocked(transition.Seq, TransitionRolledBack, cause)
	c.mu.Unlock()

	if snapshot != nil {
		c.publish(*snapshot)
	} else {
		c.finishLoading()
	}
	if ok {
		c.emitTransition(settled)
	}
}

// settleLogin waits for the profile sync of the new session, records the
// login and confirms the transition.
func (c *Coordinator) settleLogin(seq uint64, task *syncTask) {
	<-task.done

	if task.ctx.Err() != nil {
		// Superseded or signed out; whoever did that settled the transition.
		return
	}

	var syncErr error
	if task.outcome == OutcomeFailed {
		syncErr = errProfileUnavailable
	} else {
		c.recordLogin(task.userID, task.email)
	}

	c.mu.Lock()
	settled, ok := c.settleTransitionLocked(seq, TransitionConfirmed, syncErr)
	c.mu.Unlock()

	if ok {
		c.emitTransition(settled)
	}
}

// recordLogin bumps last_login_at and appends an audit entry, best-effort.
func (c *Coordinator) recordLogin(userID, email string) {
	ctx := c.baseCtx
	now := c.now().UTC()

	if _, err := c.backend.Profiles().Update(ctx, userID, backend.ProfilePatch{LastLoginAt: &now}); err != nil {
		c.logger.Warn("last_login_update_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	metadata, _ := json.Marshal(map[string]string{"email": email})
	err := c.backend.AuditLogs().Insert(ctx, backend.AuditEntry{
		Action:     AuditActionLogin,
		EntityType: AuditEntityTypeMe,
		EntityID:   userID,
		Metadata:   metadata,
	})
	if err != nil {
		c.logger.Warn("audit_log_failed", slog.String("action", AuditActionLogin), slog.Any("error", err))
	}
}

/*
SignUp registers a new member.

It returns true once the backing service accepts the request, including
when email confirmation is still pending. With a live session the profile
row is created right away; otherwise it is created on first login.
*/
func (c *Coordinator) SignUp(context context.Context, email, password, fullName string) bool {
	email = textnorm.Email(email)
	fullName = textnorm.FullName(fullName)

	result, err := c.backend.SignUp(context, email, password, backend.UserMetadata{FullName: fullName})
	if err != nil {
		c.logger.Warn("signup_failed", slog.Any("error", err))
		c.notifier.Notify(Notification{Level: LevelError, Title: "Sign-up failed", Message: backend.Message(err)})
		return false
	}

	if result.Session == nil {
		c.notifier.Notify(Notification{
			Level:   LevelInfo,
			Title:   "Confirm your email",
			Message: "We sent a confirmation link to " + email + ".",
		})
		return true
	}

	c.signedIn(signInRequest{event: backend.EventSignedIn, session: result.Session})

	user := result.Session.User
	if user.UserMetadata.FullName == "" {
		user.UserMetadata.FullName = fullName
	}
	if _, outcome := c.createProfile(context, user.ID, user.Email, user.UserMetadata.FullName); outcome == OutcomeFailed {
		// The profile sync task or the next login will retry.
		c.logger.Warn("signup_profile_deferred", slog.String("user_id", user.ID))
	}

	c.notifier.Notify(Notification{Level: LevelSuccess, Title: "Welcome to Uptown Gym", Message: "Your account is ready."})
	return true
}

/*
Logout signs out.

A login still pending is rolled back. Local state and cache are cleared
first, while the logout transition is pending.
The remote sign-out follows; if it fails, local state stays cleared, the
transition is confirmed with the error attached and the user is told.
*/
func (c *Coordinator) Logout(context context.Context) bool {
	c.mu.Lock()
	var (
		interrupted   Transition
		isInterrupted bool
	)
	if c.transition != nil && c.transition.Kind == TransitionLogin {
		interrupted, isInterrupted = c.settleTransitionLocked(c.transition.Seq, TransitionRolledBack, ErrSignedOut)
	}
	transition := c.beginTransitionLocked(TransitionLogout)
	c.mu.Unlock()

	if isInterrupted {
		c.emitTransition(interrupted)
	}
	c.emitTransition(transition)

	// The caller's context may already be done; clearing must still happen.
	c.signedOut(c.baseCtx)

	err := c.backend.SignOut(context)

	c.mu.Lock()
	settled, ok := c.settleTransitionLocked(transition.Seq, TransitionConfirmed, err)
	c.mu.Unlock()
	if ok {
		c.emitTransition(settled)
	}

	if err != nil {
		c.logger.Warn("remote_signout_failed", slog.Any("error", err))
		c.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Signed out on this device only",
			Message: backend.Message(err),
		})
		return false
	}
	return true
}

// RequestPasswordReset mails a reset link. Local state does not change.
func (c *Coordinator) RequestPasswordReset(context context.Context, email string) bool {
	email = textnorm.Email(email)

	if err := c.backend.ResetPasswordForEmail(context, email, c.redirectTo); err != nil {
		c.logger.Warn("password_reset_request_failed", slog.Any("error", err))
		c.notifier.Notify(Notification{Level: LevelError, Title: "Password reset failed", Message: backend.Message(err)})
		return false
	}

	c.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Title:   "Check your inbox",
		Message: "If " + email + " has an account, a reset link is on its way.",
	})
	return true
}

// UpdatePassword changes the signed-in user's password.
func (c *Coordinator) UpdatePassword(context context.Context, newPassword string) bool {
	if _, err := c.backend.UpdateUser(context, backend.UserAttributes{Password: newPassword}); err != nil {
		c.logger.Warn("password_update_failed", slog.Any("error", err))
		c.notifier.Notify(Notification{Level: LevelError, Title: "Password update failed", Message: backend.Message(err)})
		return false
	}

	c.notifier.Notify(Notification{Level: LevelSuccess, Title: "Password updated", Message: "Use your new password next time you sign in."})
	return true
}

// CheckAdmin re-checks admin status against the stored profile. Use it at the
// point of an admin-gated action. It fails closed.
func (c *Coordinator) CheckAdmin(context context.Context) bool {
	state := c.State()
	if !state.IsAuthenticated || state.User == nil {
		return false
	}
	if c.allowlist.Contains(state.User.Email) {
		return true
	}

	resolution, _ := c.resolver.Fetch(context, state.User.ID, state.User.Email)
	return resolution != nil && resolution.IsAdmin
}
