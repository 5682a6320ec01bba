// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the client authentication and session-state
coordinator.

A [Coordinator] is created once per application instance and handed to
every component that needs auth state. It:

  - bootstraps from the persisted session on [Coordinator.Start],
  - follows the backing service's auth events with a single subscription,
  - resolves the signed-in user's role through a [RoleResolver],
  - mirrors coarse state into an advisory [Cache],
  - exposes Login, SignUp, Logout, RequestPasswordReset and UpdatePassword.

# State Machine

	Uninitialized → Loading → {Authenticated, Unauthenticated}
	Authenticated ⇄ Unauthenticated

# Admin Status

IsAdmin is true iff the resolved profile has is_admin set or the session
email is on the known-admin allowlist. Right after sign-in IsAdmin may come
from the allowlist or the cache only; RoleResolved turns true once the
profile has been read. Admin-gated actions should call
[Coordinator.CheckAdmin] at the point of use.
*/
package session

import (
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Phases

// Phase is the coarse state of the coordinator.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseUnauthenticated
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// # View Models

// AuthUser is the signed-in identity merged with its profile.
type AuthUser struct {
	ID       string       `json:"id"                  yaml:"id"`
	Email    string       `json:"email"               yaml:"email"`
	FullName string       `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Role     sec.UserRole `json:"role"                yaml:"role"`
	IsAdmin  bool         `json:"is_admin"            yaml:"is_admin"`
	IsStaff  bool         `json:"is_staff"            yaml:"is_staff"`
}

// State is an immutable snapshot of the coordinator.
type State struct {
	Phase           Phase
	User            *AuthUser
	IsAuthenticated bool
	IsAdmin         bool
	IsLoading       bool

	// RoleResolved reports whether the role comes from an authoritative
	// profile read rather than the allowlist or the cache.
	RoleResolved bool

	// Generation increases with every change.
	Generation uint64
}

// clone returns a deep copy safe to hand to callers.
func (s State) clone() State {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
