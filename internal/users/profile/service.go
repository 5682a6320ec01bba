// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/pkg/textnorm"
)

// Service implements profile use cases and their authorization rules.
type Service struct {
	repository Repository
	allowlist  sec.Allowlist
}

// NewService constructs a new [Service].
func NewService(repository Repository, allowlist sec.Allowlist) *Service {
	return &Service{repository: repository, allowlist: allowlist}
}

// # Authorization

/*
IsAdmin reports whether the caller is an administrator.

The allowlist and the stored flag are OR-ed: a confirmed allowlisted email
is admin even before its profile row exists or if the row says otherwise.
An unconfirmed allowlisted email gets nothing from the allowlist.
*/
func (service *Service) IsAdmin(context context.Context, claims *sec.AuthClaims) (bool, error) {
	if service.allowlisted(claims) {
		return true, nil
	}

	profile, err := service.repository.FindByID(context, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return profile.IsAdmin, nil
}

// allowlisted reports whether the caller proved control of an allowlisted mailbox.
func (service *Service) allowlisted(claims *sec.AuthClaims) bool {
	return claims.EmailVerified && service.allowlist.Contains(claims.Email)
}

// canRead allows callers to see their own row and admins to see any row.
func (service *Service) canRead(context context.Context, caller *sec.AuthClaims, profile *Profile) error {
	if profile.ID == caller.UserID {
		return nil
	}
	isAdmin, err := service.IsAdmin(context, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		// Hide rows the caller may not see.
		return apperr.NotFound("Profile")
	}
	return nil
}

// # Queries

// Get returns a profile by ID.
func (service *Service) Get(context context.Context, caller *sec.AuthClaims, id string) (*Profile, error) {
	profile, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if err := service.canRead(context, caller, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetByEmail returns a profile by email.
func (service *Service) GetByEmail(context context.Context, caller *sec.AuthClaims, email string) (*Profile, error) {
	profile, err := service.repository.FindByEmail(context, textnorm.Email(email))
	if err != nil {
		return nil, err
	}
	if err := service.canRead(context, caller, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List returns a window of all profiles. Admin only.
func (service *Service) List(context context.Context, caller *sec.AuthClaims, limit, offset int) ([]*Profile, int, error) {
	isAdmin, err := service.IsAdmin(context, caller)
	if err != nil {
		return nil, 0, err
	}
	if !isAdmin {
		return nil, 0, apperr.Forbidden("Admin access required")
	}
	return service.repository.List(context, limit, offset)
}

// # Commands

// CreateInput is the body of a profile insert.
type CreateInput struct {
	ID       string
	Email    string
	FullName string
	Role     sec.UserRole
	IsAdmin  bool
	IsStaff  bool
}

/*
Create inserts a profile row.

Members may only insert their own row, for their own email, as a plain
member. An admin row (role admin or is_admin) is accepted only from a caller
with a confirmed allowlisted email, which is how the first administrator is
seeded. Admins may insert rows for anyone.

Returns:
  - *Profile: Created row
  - error: Forbidden, Validation or Conflict
*/
func (service *Service) Create(context context.Context, caller *sec.AuthClaims, input CreateInput) (*Profile, error) {
	email := textnorm.Email(input.Email)

	callerIsAdmin, err := service.IsAdmin(context, caller)
	if err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = sec.RoleMember
		if callerIsAdmin {
			input.Role = service.allowlist.DefaultRole(email)
		}
	}
	if !input.Role.IsValid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldRole, Message: "Unknown role"})
	}

	if !callerIsAdmin {
		if input.ID != caller.UserID || !textnorm.EqualEmail(email, caller.Email) {
			return nil, apperr.Forbidden("Profiles can only be created for the signed-in account")
		}
		if input.IsStaff || (input.Role != sec.RoleMember && input.Role != sec.RoleAdmin) {
			return nil, apperr.Forbidden("Only admins can assign staff roles")
		}
	}

	wantsAdmin := input.Role == sec.RoleAdmin || input.IsAdmin
	if wantsAdmin && !callerIsAdmin {
		return nil, apperr.Forbidden("Admin profiles can only be seeded for confirmed allowlisted emails")
	}

	profile := &Profile{
		ID:       input.ID,
		Email:    email,
		FullName: textnorm.FullName(input.FullName),
		Role:     input.Role,
		IsAdmin:  wantsAdmin,
		IsStaff:  input.IsStaff || input.Role == sec.RoleStaff || input.Role == sec.RoleTrainer,
	}

	if err := service.repository.Create(context, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

/*
Update applies a partial update.

Privileged columns (role, is_admin, is_staff) require an admin caller.
Members may patch their own name and last-login time.
*/
func (service *Service) Update(context context.Context, caller *sec.AuthClaims, id string, patch Patch) (*Profile, error) {
	if patch.Empty() {
		return nil, apperr.ValidationError("Nothing to update")
	}
	if patch.Role != nil && !patch.Role.IsValid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldRole, Message: "Unknown role"})
	}

	isAdmin, err := service.IsAdmin(context, caller)
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		if id != caller.UserID {
			return nil, apperr.NotFound("Profile")
		}
		if patch.Privileged() {
			return nil, apperr.Forbidden("Only admins can change roles")
		}
	}

	if patch.FullName != nil {
		name := textnorm.FullName(*patch.FullName)
		patch.FullName = &name
	}

	return service.repository.Update(context, id, patch)
}
