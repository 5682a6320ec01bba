// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"

	"github.com/taibuivan/uptowngym/internal/backend"
)

/*
Start bootstraps the coordinator. Only the first call does anything.

# Flow

 1. Uninitialized → Loading and subscribe to auth events (once).
 2. Ask the backing service for the live session.
 3. No session: Unauthenticated and the cache is cleared.
 4. Session: paint from the allowlist or cached snapshot, then resolve the
    profile, creating it when missing. A failed lookup leaves a minimal
    authenticated state derived from the session email.
 5. IsLoading turns false.

Start blocks until step 5. It never fails: errors are logged. If an auth
event changes the state while Start runs, the event wins.
*/
func (c *Coordinator) Start(context context.Context) {
	c.startOnce.Do(func() {
		c.bootstrap(context)
	})
}

func (c *Coordinator) bootstrap(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.bootstrapping = true
	snapshot := c.commitLocked(State{Phase: PhaseLoading, IsLoading: true})
	c.subscription = c.backend.OnAuthStateChange(c.handleAuthEvent)
	startGeneration := snapshot.Generation
	c.mu.Unlock()

	c.publish(snapshot)

	session, err := c.backend.GetSession(ctx)
	if err != nil {
		c.logger.Error("session_lookup_failed", slog.Any("error", err))
	}

	switch {
	case session == nil:
		c.settleUnauthenticated(ctx, startGeneration, err == nil)

	default:
		task := c.signedIn(signInRequest{
			event:            backend.EventSignedIn,
			session:          session,
			expectGeneration: startGeneration,
			checkGeneration:  true,
		})
		if task == nil {
			// An auth event got there first; wait for whatever it scheduled.
			task = c.currentTask()
		}
		if task != nil {
			select {
			case <-task.done:
			case <-ctx.Done():
			}
		}
	}

	c.mu.Lock()
	c.bootstrapping = false
	c.mu.Unlock()
	c.finishLoading()
}

// settleUnauthenticated moves Loading to Unauthenticated unless an event
// already moved the state on. clearCache is false after a failed lookup so a
// transient error does not throw the cache away.
func (c *Coordinator) settleUnauthenticated(ctx context.Context, expectGeneration uint64, clearCache bool) {
	c.mu.Lock()
	if c.state.Generation != expectGeneration {
		c.mu.Unlock()
		return
	}

	snapshot := c.commitLocked(State{Phase: PhaseUnauthenticated})
	if clearCache {
		c.clearCacheLocked(ctx)
	}
	c.mu.Unlock()

	c.publish(snapshot)
}

func (c *Coordinator) currentTask() *syncTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.task
}

// finishLoading clears IsLoading; a state still Loading becomes Unauthenticated.
// While Start is running only the bootstrap itself may clear it.
func (c *Coordinator) finishLoading() {
	c.mu.Lock()
	if c.bootstrapping || (!c.state.IsLoading && c.state.Phase != PhaseLoading) {
		c.mu.Unlock()
		return
	}

	next := c.state
	next.IsLoading = false
	if next.Phase == PhaseLoading {
		next.Phase = PhaseUnauthenticated
	}
	snapshot := c.commitLocked(next)
	c.mu.Unlock()

	c.publish(snapshot)
}
