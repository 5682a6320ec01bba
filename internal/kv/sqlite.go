// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database file created inside the state directory.
const SQLiteFileName = "state.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore is a [Store] persisted in a local SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (and creates) the store under dir.
// An empty dir opens an in-memory database.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("kv_create_state_dir: %w", err)
		}
		dsn = filepath.Join(dir, SQLiteFileName) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv_open_sqlite: %w", err)
	}

	// One connection: SQLite serializes writers and :memory: is per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv_migrate_sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}

// Get implements [Store].
func (store *SQLiteStore) Get(context context.Context, key string) ([]byte, error) {
	var value []byte
	err := store.db.GetContext(context, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv_sqlite_get: %w", err)
	}
	return value, nil
}

// Set implements [Store].
func (store *SQLiteStore) Set(context context.Context, key string, value []byte) error {
	_, err := store.db.ExecContext(context, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, store.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("kv_sqlite_set: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (store *SQLiteStore) Delete(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("kv_sqlite_delete: %w", err)
	}

	if _, err := store.db.ExecContext(context, store.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("kv_sqlite_delete: %w", err)
	}
	return nil
}
