// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"slices"

	"github.com/taibuivan/uptowngym/pkg/textnorm"
)

// DefaultAdminEmails is the known-admin allowlist used when none is configured.
var DefaultAdminEmails = []string{"admin@uptowngym.rw"}

// Allowlist is a set of administrator email addresses compared in canonical
// form. The zero value contains nothing.
//
// Server side it is the only way to seed an admin profile row; client side
// it is the fast path that marks a session admin before the profile loads.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist from raw addresses. Blank entries are ignored.
func NewAllowlist(emails ...string) Allowlist {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if canonical := textnorm.Email(email); canonical != "" {
			set[canonical] = struct{}{}
		}
	}
	return Allowlist{emails: set}
}

// Contains reports whether email is an allowlisted administrator.
func (a Allowlist) Contains(email string) bool {
	if len(a.emails) == 0 || email == "" {
		return false
	}
	_, ok := a.emails[textnorm.Email(email)]
	return ok
}

// Emails returns the canonical addresses in sorted order.
func (a Allowlist) Emails() []string {
	out := make([]string, 0, len(a.emails))
	for email := range a.emails {
		out = append(out, email)
	}
	slices.Sort(out)
	return out
}

// DefaultRole is the role a brand-new profile gets for email.
func (a Allowlist) DefaultRole(email string) UserRole {
	if a.Contains(email) {
		return RoleAdmin
	}
	return RoleMember
}
