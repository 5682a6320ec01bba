// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/uptowngym/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `id, email, fullname, role, isadmin, isstaff, lastloginat, createdat, updatedat`

func scanProfile(row pgx.Row) (*Profile, error) {
	profile := &Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.IsAdmin,
		&profile.IsStaff,
		&profile.LastLoginAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	return profile, err
}

// FindByID retrieves a profile by account ID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users.profile WHERE id = $1`

	profile, err := scanProfile(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Profile", "postgres_profile_repo_find_by_id_failed")
	}
	return profile, nil
}

// FindByEmail retrieves a profile by canonical email.
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users.profile WHERE email = $1`

	profile, err := scanProfile(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "Profile", "postgres_profile_repo_find_by_email_failed")
	}
	return profile, nil
}

/*
List returns one window of profiles plus the total count.

The count uses a window function so both come from one round trip.
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Profile, int, error) {
	query := `
		SELECT ` + profileColumns + `, COUNT(*) OVER() AS total
		FROM users.profile
		ORDER BY createdat ASC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		profiles []*Profile
		total    int
	)
	for rows.Next() {
		profile := &Profile{}
		if err := rows.Scan(
			&profile.ID,
			&profile.Email,
			&profile.FullName,
			&profile.Role,
			&profile.IsAdmin,
			&profile.IsStaff,
			&profile.LastLoginAt,
			&profile.CreatedAt,
			&profile.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_repo_list_scan_failed: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_list_rows_failed: %w", err)
	}

	// Window past the end: the count is still needed for Content-Range.
	if len(profiles) == 0 && offset > 0 {
		if err := repository.pool.QueryRow(context, `SELECT COUNT(*) FROM users.profile`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_repo_count_failed: %w", err)
		}
	}

	return profiles, total, nil
}

// Create inserts a new profile row.
func (repository *PostgresRepository) Create(context context.Context, profile *Profile) error {
	query := `INSERT INTO users.profile (` + profileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.Role,
		profile.IsAdmin,
		profile.IsStaff,
		profile.LastLoginAt,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return dberr.Wrap(err, "Profile", "postgres_profile_repo_create_failed")
}

/*
Update applies a partial update.

COALESCE keeps columns whose patch field is nil, so a single statement
serves every combination of fields.
*/
func (repository *PostgresRepository) Update(context context.Context, id string, patch Patch) (*Profile, error) {
	query := `
		UPDATE users.profile SET
			fullname    = COALESCE($2, fullname),
			role        = COALESCE($3, role),
			isadmin     = COALESCE($4, isadmin),
			isstaff     = COALESCE($5, isstaff),
			lastloginat = COALESCE($6, lastloginat),
			updatedat   = $7
		WHERE id = $1
		RETURNING ` + profileColumns

	var role *string
	if patch.Role != nil {
		value := string(*patch.Role)
		role = &value
	}

	profile, err := scanProfile(repository.pool.QueryRow(context, query,
		id,
		patch.FullName,
		role,
		patch.IsAdmin,
		patch.IsStaff,
		patch.LastLoginAt,
		time.Now().UTC(),
	))
	if err != nil {
		return nil, dberr.Wrap(err, "Profile", "postgres_profile_repo_update_failed")
	}
	return profile, nil
}
