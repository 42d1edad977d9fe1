// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command gateway is the entry point for the Velora storefront gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (cart persistence).
//  4. Build the session registry and upstream rate limiter.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/velora/internal/admin"
	"github.com/taibuivan/velora/internal/api"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/catalog"
	"github.com/taibuivan/velora/internal/checkout"
	"github.com/taibuivan/velora/internal/orders"
	"github.com/taibuivan/velora/internal/platform/config"
	"github.com/taibuivan/velora/internal/platform/constants"
	redisstore "github.com/taibuivan/velora/internal/platform/redis"
	"github.com/taibuivan/velora/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Velora] gateway_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.BackendBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Session Registry ───────────────────────────────────────────────
	upstreamLimiter := rate.NewLimiter(
		rate.Limit(constants.UpstreamRateLimitRPS),
		constants.UpstreamRateLimitBurst,
	)

	registry, err := session.NewRegistry(session.RegistryConfig{
		BackendBaseURL: cfg.BackendBaseURL,
		Redis:          rdb,
		Limiter:        upstreamLimiter,
		Logger:         log,
	})
	must(log, err, "build session registry")

	registry.StartJanitor()
	defer registry.Close()

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckUpstream: upstreamProbe(cfg.BackendBaseURL),
		LiveSessions:  registry.Len,
	}, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      session.NewHandler(registry),
		Catalog:   catalog.NewHandler(registry),
		Cart:      cart.NewHandler(registry),
		Orders:    orders.NewHandler(registry),
		Checkout:  checkout.NewHandler(registry, checkout.NewService(log)),
		Admin:     admin.NewHandler(registry),
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(context.Background(), cfg, log, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// upstreamProbe builds a readiness check that verifies the commerce backend
// answers HTTP at all. Any status code counts as reachable.
func upstreamProbe(baseURL string) func() error {
	probeClient := &http.Client{Timeout: 5 * time.Second}

	return func() error {
		request, err := http.NewRequest(http.MethodHead, baseURL, nil)
		if err != nil {
			return fmt.Errorf("upstream_probe_build_failed: %w", err)
		}

		response, err := probeClient.Do(request)
		if err != nil {
			return fmt.Errorf("upstream_unreachable: %w", err)
		}
		response.Body.Close()
		return nil
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
