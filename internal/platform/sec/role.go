// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Gym Roles

// UserRole is the role stored on a gym profile.
type UserRole string

const (
	// Full access to staff, trainer, class, payment and shop administration
	RoleAdmin UserRole = "admin"

	// Runs classes and sees the members booked into them
	RoleTrainer UserRole = "trainer"

	// Front-desk staff: check-ins and payments
	RoleStaff UserRole = "staff"

	// Default role for customers with a membership
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether r is one of the known gym roles.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleTrainer:
		return 30
	case RoleStaff:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
