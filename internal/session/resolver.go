// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Outcomes

// Outcome tells which path produced a [Resolution].
type Outcome int

const (
	// OutcomeAllowlisted: the email is a known admin; nothing was read.
	OutcomeAllowlisted Outcome = iota + 1

	// OutcomeCached: served from the profile snapshot; may be stale.
	OutcomeCached

	// OutcomeFetched: read from the profiles record set.
	OutcomeFetched

	// OutcomeCreated: the profile row was just inserted.
	OutcomeCreated

	// OutcomeNotFound: no profile row exists; the resolution is nil.
	OutcomeNotFound

	// OutcomeFailed: the lookup failed and was logged; the resolution is nil.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeAllowlisted:
		return "allowlisted"
	case OutcomeCached:
		return "cached"
	case OutcomeFetched:
		return "fetched"
	case OutcomeCreated:
		return "created"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Authoritative reports whether the outcome reflects the stored profile row.
func (o Outcome) Authoritative() bool {
	return o == OutcomeFetched || o == OutcomeCreated
}

// Resolution is the role information for one user.
type Resolution struct {
	Role     sec.UserRole
	IsAdmin  bool
	IsStaff  bool
	FullName string

	// Profile is set when the resolution was read from or written to the
	// profiles record set.
	Profile *backend.Profile
}

// # Resolver

// RoleResolver maps a user id and email to a [Resolution] with as few
// backing-service calls as possible. It never returns errors and never
// panics: failures are logged and reported as [OutcomeFailed].
type RoleResolver struct {
	profiles  backend.ProfileTable
	cache     *Cache
	allowlist sec.Allowlist
	logger    *slog.Logger
}

// NewRoleResolver constructs a [RoleResolver].
func NewRoleResolver(profiles backend.ProfileTable, cache *Cache, allowlist sec.Allowlist, logger *slog.Logger) *RoleResolver {
	return &RoleResolver{profiles: profiles, cache: cache, allowlist: allowlist, logger: logger}
}

/*
Resolve runs the three lookup paths in order.

 1. Fast path: an allowlisted email is admin without any lookup.
 2. Cache path: a snapshot cached for this exact id is returned as is.
 3. Slow path: the profile row is read.

A fetched profile is not cached here. The caller passes it to
[RoleResolver.Remember] once it knows the result is still wanted, so a
result that lost a race with a sign-out never reaches the cache.

Returns:
  - (*Resolution, outcome) on success
  - (nil, OutcomeNotFound) when no profile row exists
  - (nil, OutcomeFailed) on any other failure
*/
func (resolver *RoleResolver) Resolve(context context.Context, userID, email string) (*Resolution, Outcome) {
	if resolution, outcome := resolver.Peek(context, userID, email); resolution != nil {
		return resolution, outcome
	}

	return resolver.Fetch(context, userID, email)
}

// Peek runs the fast and cache paths only. It returns (nil, 0) when neither applies.
func (resolver *RoleResolver) Peek(context context.Context, userID, email string) (*Resolution, Outcome) {
	if resolver.allowlist.Contains(email) {
		return &Resolution{Role: sec.RoleAdmin, IsAdmin: true, IsStaff: true}, OutcomeAllowlisted
	}

	if cached := resolver.Cached(context, userID, email); cached != nil {
		return cached, OutcomeCached
	}

	return nil, 0
}

// Cached returns the resolution stored in the profile snapshot for userID, or nil.
func (resolver *RoleResolver) Cached(context context.Context, userID, email string) *Resolution {
	snapshot, err := resolver.cache.Profile(context, userID)
	if err != nil {
		resolver.logger.Warn("profile_cache_read_failed", slog.String("user_id", userID), slog.Any("error", err))
		return nil
	}
	if snapshot == nil {
		return nil
	}

	role := snapshot.Role
	if !role.IsValid() {
		role = sec.RoleMember
	}

	isAdmin := snapshot.IsAdmin || resolver.allowlist.Contains(email)
	return &Resolution{
		Role:     role,
		IsAdmin:  isAdmin,
		IsStaff:  isAdmin || role.AtLeast(sec.RoleStaff),
		FullName: snapshot.FullName,
	}
}

// Fetch reads the profile row. It does not touch the cache.
func (resolver *RoleResolver) Fetch(context context.Context, userID, email string) (resolution *Resolution, outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			resolver.logger.Error("profile_lookup_panicked",
				slog.String("user_id", userID),
				slog.Any("panic", recovered),
			)
			resolution, outcome = nil, OutcomeFailed
		}
	}()

	profile, err := resolver.profiles.SelectByID(context, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, OutcomeNotFound
	}
	if err != nil {
		resolver.logger.Error("profile_lookup_failed",
			slog.String("user_id", userID),
			slog.Any("error", fmt.Errorf("select_profile: %w", err)),
		)
		return nil, OutcomeFailed
	}

	return resolver.FromProfile(profile, email), OutcomeFetched
}

// FromProfile builds a resolution from a stored row. The allowlist still applies.
func (resolver *RoleResolver) FromProfile(profile *backend.Profile, email string) *Resolution {
	role := sec.UserRole(profile.Role)
	if !role.IsValid() {
		role = sec.RoleMember
	}

	isAdmin := profile.IsAdmin || resolver.allowlist.Contains(email)
	return &Resolution{
		Role:     role,
		IsAdmin:  isAdmin,
		IsStaff:  profile.IsStaff || isAdmin,
		FullName: profile.FullName,
		Profile:  profile,
	}
}

// Remember writes the profile snapshot. Failures are logged.
func (resolver *RoleResolver) Remember(context context.Context, profile *backend.Profile) {
	if profile == nil {
		return
	}

	snapshot := ProfileSnapshot{
		ID:       profile.ID,
		Role:     sec.UserRole(profile.Role),
		IsAdmin:  profile.IsAdmin,
		FullName: profile.FullName,
	}
	if err := resolver.cache.SaveProfile(context, snapshot); err != nil {
		resolver.logger.Warn("profile_cache_write_failed", slog.String("user_id", profile.ID), slog.Any("error", err))
	}
}
