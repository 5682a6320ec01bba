// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Profile Sync Task

// syncTask resolves the profile of one session in the background.
// At most one task is current; results of any other task are discarded.
type syncTask struct {
	sessionID string
	userID    string
	email     string
	fullName  string

	// fresh forces an authoritative read instead of the resolver's fast paths.
	fresh bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Written before done is closed.
	resolution *Resolution
	outcome    Outcome
}

// failed reports whether the task finished without a usable profile.
func (task *syncTask) failed() bool {
	select {
	case <-task.done:
		return task.outcome == OutcomeFailed || task.ctx.Err() != nil
	default:
		return false
	}
}

// # Event Handling

// handleAuthEvent is the single subscription to the backing service.
// It only updates state and schedules work; it never blocks on the network.
func (c *Coordinator) handleAuthEvent(event backend.Event, session *backend.Session) {
	switch event {
	case backend.EventSignedOut:
		c.signedOut(c.baseCtx)

	case backend.EventSignedIn, backend.EventUserUpdated, backend.EventTokenRefreshed:
		if session == nil {
			return
		}
		c.signedIn(signInRequest{event: event, session: session})

	default:
		c.logger.Debug("auth_event_ignored", slog.String("event", string(event)))
	}
}

type signInRequest struct {
	event   backend.Event
	session *backend.Session

	// expectGeneration skips the update when the state moved on meanwhile.
	expectGeneration uint64
	checkGeneration  bool

	// finishLoading clears IsLoading together with the update, unless Start
	// is still running.
	finishLoading bool
}

// signedIn marks the session authenticated at once and makes sure a profile
// sync task runs for it. It returns the current task, or nil when skipped.
func (c *Coordinator) signedIn(request signInRequest) *syncTask {
	ctx := c.baseCtx
	user := request.session.User

	c.mu.Lock()
	if c.closed || (request.checkGeneration && c.state.Generation != request.expectGeneration) {
		c.mu.Unlock()
		return nil
	}

	previous := c.state
	next := State{
		Phase:           PhaseAuthenticated,
		IsAuthenticated: true,
		IsLoading:       previous.IsLoading && (!request.finishLoading || c.bootstrapping),
	}

	sameUser := previous.IsAuthenticated && previous.User != nil && previous.User.ID == user.ID
	if sameUser {
		// Same person: keep the resolved role instead of flickering back to the fast path.
		kept := *previous.User
		if user.Email != "" {
			kept.Email = user.Email
		}
		next.User = &kept
		next.IsAdmin = previous.IsAdmin
		next.RoleResolved = previous.RoleResolved
	} else {
		next.User = c.optimisticUserLocked(ctx, user)
		next.IsAdmin = next.User.IsAdmin
	}

	snapshot := c.commitLocked(next)
	c.saveAuthStateLocked(ctx, snapshot)
	// A refreshed token for an already resolved user only needs the cheap paths.
	fresh := request.event != backend.EventTokenRefreshed || !sameUser || !previous.RoleResolved
	task := c.ensureTaskLocked(request.event, request.session, fresh)
	c.mu.Unlock()

	c.publish(snapshot)
	return task
}

// ensureTaskLocked keeps the running task of the same session, or cancels
// whatever runs and starts a new one keyed by the session id.
func (c *Coordinator) ensureTaskLocked(event backend.Event, session *backend.Session, fresh bool) *syncTask {
	if current := c.task; current != nil && current.sessionID == session.ID &&
		event != backend.EventUserUpdated && !current.failed() {
		return current
	}

	if c.task != nil {
		c.task.cancel()
	}

	ctx, cancel := context.WithCancel(c.baseCtx)
	task := &syncTask{
		sessionID: session.ID,
		userID:    session.User.ID,
		email:     session.User.Email,
		fullName:  session.User.UserMetadata.FullName,
		fresh:     fresh,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	c.task = task

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		defer close(task.done)
		c.runTask(task)
	}()

	return task
}

// signedOut cancels background work and clears state and cache.
// A pending login is rolled back.
func (c *Coordinator) signedOut(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if c.task != nil {
		c.task.cancel()
		c.task = nil
	}

	snapshot := c.commitLocked(State{
		Phase:     PhaseUnauthenticated,
		IsLoading: c.state.IsLoading,
	})
	c.clearCacheLocked(ctx)

	var (
		settled   Transition
		isSettled bool
	)
	if c.transition != nil && c.transition.Kind == TransitionLogin {
		settled, isSettled = c.settleTransitionLocked(c.transition.Seq, TransitionRolledBack, ErrSignedOut)
	}
	c.mu.Unlock()

	c.publish(snapshot)
	if isSettled {
		c.emitTransition(settled)
	}
}

// # Task Body

func (c *Coordinator) runTask(task *syncTask) {
	defer func() {
		if recovered := recover(); recovered != nil {
			c.logger.Error("profile_sync_panicked", slog.String("user_id", task.userID), slog.Any("panic", recovered))
			task.resolution, task.outcome = nil, OutcomeFailed
			c.applyResolution(task)
		}
	}()

	// The cache is written by applyResolution, and only while the task is current.
	resolve := c.resolver.Resolve
	if task.fresh {
		resolve = c.resolver.Fetch
	}
	resolution, outcome := resolve(task.ctx, task.userID, task.email)

	if outcome == OutcomeNotFound {
		resolution, outcome = c.createProfile(task.ctx, task.userID, task.email, task.fullName)
	}

	task.resolution, task.outcome = resolution, outcome
	c.applyResolution(task)
}

// createProfile inserts the default profile row: admin iff allowlisted, else
// member. A concurrent insert of the same row is read back instead.
func (c *Coordinator) createProfile(ctx context.Context, userID, email, fullName string) (*Resolution, Outcome) {
	role := c.allowlist.DefaultRole(email)

	created, err := c.backend.Profiles().Insert(ctx, &backend.Profile{
		ID:       userID,
		Email:    email,
		FullName: fullName,
		Role:     string(role),
		IsAdmin:  role == sec.RoleAdmin,
	})
	if backend.HasCode(err, backend.CodeConflict) {
		return c.resolver.Fetch(ctx, userID, email)
	}
	if err != nil {
		c.logger.Error("profile_create_failed", slog.String("user_id", userID), slog.Any("error", err))
		return nil, OutcomeFailed
	}

	c.logger.Info("profile_created", slog.String("user_id", userID), slog.String("role", string(role)))
	return c.resolver.FromProfile(created, email), OutcomeCreated
}

// applyResolution merges the task result into state if the task is still current.
func (c *Coordinator) applyResolution(task *syncTask) {
	c.mu.Lock()
	if c.task != task || task.ctx.Err() != nil {
		c.mu.Unlock()
		c.logger.Debug("profile_sync_discarded", slog.String("session_id", task.sessionID))
		return
	}

	current := c.state
	if !current.IsAuthenticated || current.User == nil || current.User.ID != task.userID {
		c.mu.Unlock()
		return
	}

	next := current
	resolution := task.resolution

	switch {
	case resolution != nil:
		user := *current.User
		user.Role = resolution.Role
		user.IsAdmin = resolution.IsAdmin
		user.IsStaff = resolution.IsStaff
		if resolution.FullName != "" {
			user.FullName = resolution.FullName
		}
		next.User = &user
		next.IsAdmin = resolution.IsAdmin
		next.RoleResolved = next.RoleResolved || task.outcome.Authoritative()
		c.resolver.Remember(task.ctx, resolution.Profile)

	default:
		// Lookup failed: fall back to what the session email alone proves.
		next.User = c.minimalUser(task.userID, current.User.Email, current.User.FullName)
		next.IsAdmin = next.User.IsAdmin
		next.RoleResolved = false
	}

	snapshot := c.commitLocked(next)
	c.saveAuthStateLocked(task.ctx, snapshot)
	c.mu.Unlock()

	c.publish(snapshot)
}
