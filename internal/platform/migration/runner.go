// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the accounts, profiles and audit log schema with
// golang-migrate before the API starts serving.
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Options select the database and where the .sql files come from.
type Options struct {
	DatabaseURL string

	// Embedded holds the migrations compiled into the binary.
	Embedded fs.FS

	// Dir overrides Embedded with a directory on disk when set.
	Dir string

	// Verbose forwards golang-migrate's per-file progress at debug level.
	Verbose bool
}

/*
Up applies every pending migration.

A database left dirty by an interrupted run is reported and left alone; it
needs manual repair with the migrate CLI.
*/
func Up(options Options, logger *slog.Logger) error {
	migrator, origin, err := open(options)
	if err != nil {
		return err
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if err := errors.Join(sourceErr, databaseErr); err != nil {
			logger.Warn("migration_close_failed", slog.Any("error", err))
		}
	}()
	migrator.Log = &migrateLogger{logger: logger, verbose: options.Verbose}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration_read_version: %w", err)
	case dirty:
		return fmt.Errorf("migration_dirty: version %d needs manual repair", from)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)), slog.String("source", origin))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration_up: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
		slog.String("source", origin),
	)
	return nil
}

// open builds the migrator and names the source it reads from.
func open(options Options) (*migrate.Migrate, string, error) {
	databaseURL := pgx5URL(options.DatabaseURL)

	if options.Dir != "" {
		migrator, err := migrate.New("file://"+options.Dir, databaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("migration_open_dir: %w", err)
		}
		return migrator, options.Dir, nil
	}

	if options.Embedded == nil {
		return nil, "", errors.New("migration_open: no migrations configured")
	}

	driver, err := iofs.New(options.Embedded, "migrations")
	if err != nil {
		return nil, "", fmt.Errorf("migration_open_embedded: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", driver, databaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("migration_open_embedded: %w", err)
	}
	return migrator, "embedded", nil
}

// pgx5URL rewrites postgres:// URLs to the pgx5:// scheme the driver registers.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate output to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
