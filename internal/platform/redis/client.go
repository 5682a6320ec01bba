// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects to the Redis instance holding volatile auth state.

The backing service keeps password-recovery and email-confirmation tokens
there. gymctl front-desk kiosks may share their advisory auth cache through
the same instance with [kv.RedisStore].
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	opTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// Settings size the client for one deployment.
type Settings struct {
	URL string

	// PoolSize caps open connections. Zero keeps the go-redis default.
	PoolSize int

	// ClientName is reported by CLIENT LIST.
	ClientName string
}

// Connect parses settings.URL, opens the client and pings it once.
func Connect(context stdctx.Context, settings Settings, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("redis_parse_url: %w", err)
	}

	if settings.PoolSize > 0 {
		options.PoolSize = settings.PoolSize
		options.MaxIdleConns = max(1, settings.PoolSize/2)
	}
	options.ClientName = settings.ClientName
	options.ReadTimeout = opTimeout
	options.WriteTimeout = opTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// Ping checks the client within a short deadline. The readiness probe calls it.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping: %w", err)
	}
	return nil
}
