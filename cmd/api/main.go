// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Uptown Gym backing service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Initialize error reporting (optional).
//  4. Connect to PostgreSQL (pgxpool) and Redis.
//  5. Run database migrations (idempotent).
//  6. Wire repositories, services and HTTP handlers.
//  7. Start HTTP server and session janitor with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/taibuivan/uptowngym/data"
	"github.com/taibuivan/uptowngym/internal/api"
	"github.com/taibuivan/uptowngym/internal/platform/config"
	"github.com/taibuivan/uptowngym/internal/platform/constants"
	"github.com/taibuivan/uptowngym/internal/platform/migration"
	pgstore "github.com/taibuivan/uptowngym/internal/platform/postgres"
	redisstore "github.com/taibuivan/uptowngym/internal/platform/redis"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/system/audit"
	"github.com/taibuivan/uptowngym/internal/users/auth"
	"github.com/taibuivan/uptowngym/internal/users/profile"
)

// sessionPurgeInterval is how often expired refresh sessions are deleted.
const sessionPurgeInterval = time.Hour

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", "uptowngym"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "uptowngym"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("admin_allowlist_size", len(cfg.AdminEmails)),
	)

	// ── 3. Error Reporting ────────────────────────────────────────────────
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
			Release:          constants.AppVersion,
		}); err != nil {
			log.Error("sentry_init_failed", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 4. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.Connect(startupCtx, pgstore.Settings{
		URL:              cfg.DatabaseURL,
		MaxConns:         cfg.DatabaseMaxConns,
		StatementTimeout: cfg.DatabaseStatementTimeout,
		ApplicationName:  constants.AppName,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	rdb, err := redisstore.Connect(startupCtx, redisstore.Settings{
		URL:        cfg.RedisURL,
		PoolSize:   cfg.RedisPoolSize,
		ClientName: constants.AppName,
	}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.Up(migration.Options{
		DatabaseURL: cfg.DatabaseURL,
		Embedded:    data.Migrations,
		Dir:         cfg.MigrationPath,
		Verbose:     cfg.Debug,
	}, log), "run migrations")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer, constants.AuthAudience)
	must(log, err, "initialize jwt service")

	allowlist := sec.NewAllowlist(cfg.AdminEmails...)

	authService := auth.NewService(
		auth.NewAccountRepository(pool),
		auth.NewSessionRepository(pool),
		auth.NewRecoveryTokenRepository(rdb),
		auth.NewConfirmationTokenRepository(rdb),
		jwtSvc,
		auth.NewLogMailer(log),
		auth.Options{ConfirmEmail: cfg.ConfirmEmail, SiteURL: cfg.SiteURL, Allowlist: allowlist},
	)
	profileService := profile.NewService(profile.NewRepository(pool), allowlist)
	auditService := audit.NewService(audit.NewRepository(pool))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, constants.CredentialRequestsPerMinute),
		Profile:   profile.NewHandler(profileService),
		Audit:     audit.NewHandler(auditService),
	}

	// ── 7. HTTP Server & Janitor ──────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	go purgeSessions(rootCtx, authService, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	rootCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// purgeSessions deletes expired refresh sessions until ctx is cancelled.
func purgeSessions(ctx context.Context, service *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := service.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Error("session_purge_failed", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				log.Info("session_purge_finished", slog.Int64("deleted", deleted))
			}
		case <-ctx.Done():
			return
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
