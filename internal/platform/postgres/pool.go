// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the PostgreSQL pool shared by the account, session,
// profile and audit repositories.
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	idleConns       = 2
	connLifetime    = time.Hour
	connIdleTime    = 10 * time.Minute
	healthCheckTick = time.Minute
	dialTimeout     = 5 * time.Second
	pingTimeout     = 2 * time.Second
)

// Settings size the pool for one deployment.
type Settings struct {
	URL string

	// MaxConns caps open connections. Zero keeps the pgx default.
	MaxConns int32

	// StatementTimeout aborts queries running longer. Zero disables it.
	StatementTimeout time.Duration

	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string
}

// Connect opens the pool and pings it once.
func Connect(context stdctx.Context, settings Settings, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres_parse_url: %w", err)
	}

	if settings.MaxConns > 0 {
		poolConfig.MaxConns = settings.MaxConns
	}
	poolConfig.MinConns = min(idleConns, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = connLifetime
	poolConfig.MaxConnIdleTime = connIdleTime
	poolConfig.HealthCheckPeriod = healthCheckTick
	poolConfig.ConnConfig.ConnectTimeout = dialTimeout

	// Session parameters are sent in the startup packet of every connection.
	params := poolConfig.ConnConfig.RuntimeParams
	if settings.ApplicationName != "" {
		params["application_name"] = settings.ApplicationName
	}
	if settings.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(settings.StatementTimeout.Milliseconds(), 10)
	}
	params["timezone"] = "UTC"

	dialCtx, cancel := stdctx.WithTimeout(context, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_open_pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_connected",
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Duration("statement_timeout", settings.StatementTimeout),
	)
	return pool, nil
}

// Ping checks the pool within a short deadline. The readiness probe calls it.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres_ping: %w", err)
	}
	return nil
}
