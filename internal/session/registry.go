// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/platform/constants"
)

// # Registry

// RegistryConfig holds the shared dependencies every session is built from.
type RegistryConfig struct {
	// BackendBaseURL is the upstream commerce API root.
	BackendBaseURL string

	// Redis persists carts and wishlists across gateway restarts.
	Redis *redis.Client

	// Limiter throttles the combined upstream traffic of all sessions.
	Limiter *rate.Limiter

	// Logger for registry events. When nil, logging is disabled.
	Logger *slog.Logger
}

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry owns the live sessions of the gateway process.
//
// Sessions are created lazily on first touch and evicted after
// [constants.SessionIdleTTL] without activity. Eviction only drops the
// in-process state; the cart survives in Redis and rehydrates when the
// shopper returns.
type Registry struct {
	config RegistryConfig
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry

	janitorOnce sync.Once
	done        chan struct{}
}

// NewRegistry constructs a session [Registry].
func NewRegistry(config RegistryConfig) (*Registry, error) {
	if config.BackendBaseURL == "" {
		return nil, fmt.Errorf("session_registry_missing_backend_url")
	}
	if config.Redis == nil {
		return nil, fmt.Errorf("session_registry_missing_redis")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Registry{
		config:  config,
		logger:  logger,
		entries: make(map[string]*registryEntry),
		done:    make(chan struct{}),
	}, nil
}

/*
Session returns the live session for the given ID, creating it on first touch.

Description: Creation wires a fresh upstream client (own cookie jar, own
token store) and a Redis-backed cart store, then hydrates the cart. Every
call refreshes the idle timestamp.

Parameters:
  - context: context.Context
  - sessionID: The browser's session cookie value

Returns:
  - *Session: The live session
  - error: Cart hydration or client construction failures
*/
func (registry *Registry) Session(context context.Context, sessionID string) (*Session, error) {
	registry.mu.Lock()

	if entry, ok := registry.entries[sessionID]; ok {
		entry.lastSeen = time.Now()
		registry.mu.Unlock()
		return entry.session, nil
	}
	registry.mu.Unlock()

	// Build outside the lock: cart hydration hits Redis and must not
	// serialize all sessions behind one slow read.
	client, err := backend.New(backend.Config{
		BaseURL: registry.config.BackendBaseURL,
		Limiter: registry.config.Limiter,
		Logger:  registry.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session_client_build_failed: %w", err)
	}

	cartStore := cart.NewStore(cart.NewRedisStorage(registry.config.Redis, sessionID), registry.logger)
	if err := cartStore.Load(context); err != nil {
		return nil, fmt.Errorf("session_cart_hydrate_failed: %w", err)
	}

	created := NewSession(sessionID, client, cartStore, registry.logger)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	// A concurrent request may have won the race; keep the first one.
	if entry, ok := registry.entries[sessionID]; ok {
		entry.lastSeen = time.Now()
		return entry.session, nil
	}

	registry.entries[sessionID] = &registryEntry{session: created, lastSeen: time.Now()}
	registry.logger.Debug("session_created", slog.String("session_id", sessionID))

	return created, nil
}

// CartStore implements [cart.StoreProvider] so the cart handler can resolve
// a session's hydrated store without depending on this package's types.
func (registry *Registry) CartStore(context context.Context, sessionID string) (*cart.Store, error) {
	live, err := registry.Session(context, sessionID)
	if err != nil {
		return nil, err
	}
	return live.Cart(), nil
}

// Len reports the number of live sessions.
func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.entries)
}

// # Idle Eviction

// StartJanitor launches the background sweep that evicts idle sessions.
// Safe to call once; subsequent calls are no-ops.
func (registry *Registry) StartJanitor() {
	registry.janitorOnce.Do(func() {
		go registry.sweepLoop()
	})
}

// Close stops the janitor. Live sessions are left in place; the process is
// shutting down and their carts are already in Redis.
func (registry *Registry) Close() {
	close(registry.done)
}

func (registry *Registry) sweepLoop() {
	ticker := time.NewTicker(constants.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-registry.done:
			return
		case <-ticker.C:
			registry.sweep(time.Now())
		}
	}
}

// sweep drops every session idle longer than the TTL.
func (registry *Registry) sweep(now time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	evicted := 0
	for sessionID, entry := range registry.entries {
		if now.Sub(entry.lastSeen) > constants.SessionIdleTTL {
			delete(registry.entries, sessionID)
			evicted++
		}
	}

	if evicted > 0 {
		registry.logger.Info("session_sweep",
			slog.Int("evicted", evicted),
			slog.Int("remaining", len(registry.entries)),
		)
	}
}
