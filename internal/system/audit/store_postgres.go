// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/uptowngym/internal/platform/database/schema"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert appends an entry to system.auditlog.
func (repository *PostgresRepository) Insert(context context.Context, entry *Entry) error {
	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}

	var entityID any
	if entry.EntityID != "" {
		entityID = entry.EntityID
	}

	_, err := repository.pool.Exec(context, schema.SystemAuditLog.InsertSQL(),
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entityID,
		metadata,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_audit_repo_insert_failed: %w", err)
	}
	return nil
}
