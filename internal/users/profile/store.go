// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import "context"

// # Profile Data Access

// Repository defines the data access contract for profiles.
type Repository interface {

	/*
		FindByID returns the profile keyed by account ID.

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	// FindByEmail returns the profile with the given canonical email.
	FindByEmail(context context.Context, email string) (*Profile, error)

	/*
		List returns a window of profiles ordered by creation time and the
		total row count.
	*/
	List(context context.Context, limit, offset int) ([]*Profile, int, error)

	/*
		Create inserts a new profile.

		Returns:
		  - error: apperr.Conflict when a row already exists for the ID
	*/
	Create(context context.Context, profile *Profile) error

	/*
		Update applies patch to the row and returns the updated entity.

		Returns:
		  - *Profile: Row after the update
		  - error: apperr.NotFound when no row matches
	*/
	Update(context context.Context, id string, patch Patch) (*Profile, error)
}
