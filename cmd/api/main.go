package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Awarix/Farc-mini-app-auth/internal/auth"
	"github.com/Awarix/Farc-mini-app-auth/internal/farcaster"
	apphttp "github.com/Awarix/Farc-mini-app-auth/internal/http"
	"github.com/Awarix/Farc-mini-app-auth/internal/http/router"
	"github.com/Awarix/Farc-mini-app-auth/internal/users"
	"github.com/Awarix/Farc-mini-app-auth/migrations"
	"github.com/Awarix/Farc-mini-app-auth/platform/config"
	"github.com/Awarix/Farc-mini-app-auth/platform/db"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"
	"github.com/Awarix/Farc-mini-app-auth/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "domain", cfg.AppDomain)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Profile resolver chain: Neynar client, optionally wrapped in a Redis
	// read-through cache. A missing NEYNAR_API_KEY already failed config.Load.
	neynarClient, err := farcaster.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize neynar client", "error", err)
		panic("failed to initialize neynar client: " + err.Error())
	}

	var profiles farcaster.ProfileResolver = neynarClient
	if cfg.IsProfileCacheEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		defer rdb.Close()
		profiles = farcaster.NewCachedResolver(neynarClient, rdb, cfg.GetProfileCacheTTL(), log)
		log.Info("profile cache enabled", "addr", cfg.GetRedisAddr(), "ttl", cfg.GetProfileCacheTTL())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Shared validator instance for dependency injection
	val := validator.New()

	usersModule := users.NewModule(pool, log)
	authModule := auth.NewModule(pool, profiles, cfg, log, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			authModule,
			usersModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
