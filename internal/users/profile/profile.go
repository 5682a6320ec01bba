// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile implements the `profiles` record set of the backing service.

A profile is the durable per-member row holding the role and the admin and
staff flags. Its primary key is the account ID. Rows are created lazily by
the client on first sign-in and are never deleted through this API.

# Authorization

  - Members read and insert their own row and may change their own name and
    last-login time.
  - Admins read, list and update every row, including role and flags.
  - An admin row can only be inserted by a confirmed allowlisted email.
*/
package profile

import (
	"time"

	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Domain Entities

// Profile is one row of users.profile.
type Profile struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name"`
	Role        sec.UserRole `json:"role"`
	IsAdmin     bool         `json:"is_admin"`
	IsStaff     bool         `json:"is_staff"`
	LastLoginAt *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	FullName    *string       `json:"full_name,omitempty"`
	Role        *sec.UserRole `json:"role,omitempty"`
	IsAdmin     *bool         `json:"is_admin,omitempty"`
	IsStaff     *bool         `json:"is_staff,omitempty"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
}

// Privileged reports whether the patch touches admin-only columns.
func (patch Patch) Privileged() bool {
	return patch.Role != nil || patch.IsAdmin != nil || patch.IsStaff != nil
}

// Empty reports whether the patch changes nothing.
func (patch Patch) Empty() bool {
	return !patch.Privileged() && patch.FullName == nil && patch.LastLoginAt == nil
}

// Apply writes the non-nil fields of patch onto profile.
func (patch Patch) Apply(profile *Profile) {
	if patch.FullName != nil {
		profile.FullName = *patch.FullName
	}
	if patch.Role != nil {
		profile.Role = *patch.Role
	}
	if patch.IsAdmin != nil {
		profile.IsAdmin = *patch.IsAdmin
	}
	if patch.IsStaff != nil {
		profile.IsStaff = *patch.IsStaff
	}
	if patch.LastLoginAt != nil {
		profile.LastLoginAt = patch.LastLoginAt
	}
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldEmail       = "email"
	FieldFullName    = "full_name"
	FieldRole        = "role"
	FieldIsAdmin     = "is_admin"
	FieldIsStaff     = "is_staff"
	FieldLastLoginAt = "last_login_at"
)
