// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/data"
)

func TestPgx5URL(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres_scheme", "postgres://gym:pw@db:5432/gym", "pgx5://gym:pw@db:5432/gym"},
		{"postgresql_scheme", "postgresql://gym@db/gym", "pgx5://gym@db/gym"},
		{"already_pgx5", "pgx5://gym@db/gym", "pgx5://gym@db/gym"},
		{"keyword_dsn", "host=db user=gym", "host=db user=gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgx5URL(tt.dsn))
		})
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(data.Migrations, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(data.Migrations, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestUp_NoSource(t *testing.T) {
	err := Up(Options{DatabaseURL: "postgres://gym@localhost/gym"}, nil)
	assert.Error(t, err)
}
