// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/backend/rest"
	"github.com/taibuivan/uptowngym/internal/kv"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/session"
)

// sharedCacheTTL bounds how long a kiosk cache entry outlives its session.
const sharedCacheTTL = 7 * 24 * time.Hour

// sharedCachePrefix namespaces gymctl keys in a shared redis.
const sharedCachePrefix = "gymctl:"

// appOptions tune [openApp] per command.
type appOptions struct {
	// autoRefresh keeps the access token fresh for long-running commands.
	autoRefresh bool

	// onTransition observes login and logout transitions.
	onTransition func(session.Transition)
}

// app is the wiring shared by every command: one backing-service client and
// one coordinator over the local state directory.
type app struct {
	settings    settings
	out         io.Writer
	logger      *slog.Logger
	coordinator *session.Coordinator

	client *rest.Client
	local  *kv.SQLiteStore
	shared *redis.Client
}

// openApp wires the coordinator. The caller must Close the result.
func openApp(context context.Context, out io.Writer, options appOptions) (*app, error) {
	current, err := loadSettings()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if current.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "gymctl"))

	local, err := kv.NewSQLiteStore(current.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open_state: %w", err)
	}

	a := &app{settings: current, out: out, logger: logger, local: local}

	// The session never leaves this machine; only the advisory cache may be shared.
	var cacheStore kv.Store = local
	if current.CacheURL != "" {
		redisOptions, err := redis.ParseURL(current.CacheURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse_cache_url: %w", err)
		}
		a.shared = redis.NewClient(redisOptions)
		if err := a.shared.Ping(context).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("ping_shared_cache: %w", err)
		}
		cacheStore = kv.NewRedisStore(a.shared, sharedCachePrefix, sharedCacheTTL)
	}

	a.client, err = rest.New(rest.Options{
		BaseURL:     current.APIURL,
		Tokens:      backend.NewTokenStore(local),
		AutoRefresh: options.autoRefresh,
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create_client: %w", err)
	}

	a.coordinator = session.New(session.Options{
		Backend:      a.client,
		Store:        cacheStore,
		Allowlist:    sec.NewAllowlist(current.AdminEmails...),
		RedirectTo:   current.RedirectTo,
		Notifier:     newTerminalNotifier(out),
		OnTransition: options.onTransition,
		Logger:       logger,
	})

	return a, nil
}

// start bootstraps the coordinator and waits for background profile work.
func (a *app) start(context context.Context) session.State {
	a.coordinator.Start(context)
	a.coordinator.Wait()
	return a.coordinator.State()
}

// Close releases the coordinator, the client and both stores.
func (a *app) Close() {
	if a.coordinator != nil {
		a.coordinator.Close()
	}
	if a.client != nil {
		a.client.Close()
	}

	var errs []error
	if a.shared != nil {
		errs = append(errs, a.shared.Close())
	}
	if a.local != nil {
		errs = append(errs, a.local.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("gymctl_close_failed", slog.Any("error", err))
	}
}
