// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"errors"
	"time"
)

// ErrSignedOut settles a pending login that was overtaken by a sign-out.
var ErrSignedOut = errors.New("session: signed out before the login settled")

// TransitionKind names an optimistic operation.
type TransitionKind string

const (
	TransitionLogin  TransitionKind = "login"
	TransitionLogout TransitionKind = "logout"
)

// TransitionPhase is the progress of a [Transition].
type TransitionPhase string

const (
	// TransitionPending: the local change is visible, the remote side is not settled.
	TransitionPending TransitionPhase = "pending"

	// TransitionConfirmed: the change stands. Err may still carry a
	// non-fatal remote failure (a logout that failed remotely stays local).
	TransitionConfirmed TransitionPhase = "confirmed"

	// TransitionRolledBack: the local change was undone.
	TransitionRolledBack TransitionPhase = "rolled_back"
)

/*
Transition records one two-phase state change.

A login is pending from the call until the profile of the new session has
been resolved; it rolls back to Previous when the credentials are rejected.
A logout clears local state while pending and is confirmed once the remote
sign-out returns, successfully or not.
*/
type Transition struct {
	Seq       uint64
	Kind      TransitionKind
	Phase     TransitionPhase
	Previous  State
	Err       error
	StartedAt time.Time
	SettledAt time.Time
}

// Settled reports whether the transition left the pending phase.
func (t Transition) Settled() bool {
	return t.Phase != TransitionPending
}

// errProfileUnavailable confirms a login whose profile could not be read.
var errProfileUnavailable = errors.New("session: profile unavailable, using allowlist-derived role")
