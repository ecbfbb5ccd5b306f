// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/shelfsense/internal/config"
	"github.com/tomtom215/shelfsense/internal/logging"
	"github.com/tomtom215/shelfsense/internal/store"
)

// storeBackend is the opened store plus its breaker, when enabled.
type storeBackend struct {
	store   store.Store
	breaker *store.BreakerStore
}

// initStore opens the configured backend and wraps it in a circuit breaker.
func initStore(ctx context.Context, cfg *config.Config) (*storeBackend, error) {
	var (
		inner store.Store
		err   error
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		inner = store.NewMemoryStore()
	case config.BackendBadger:
		inner, err = store.NewBadgerStore(cfg.Store.BadgerOptions())
	case config.BackendRedis:
		inner, err = store.NewRedisStore(ctx, cfg.Store.RedisOptions())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	logging.Info().Str("backend", inner.Name()).Msg("Store initialized")

	if !cfg.Store.Breaker.Enabled {
		return &storeBackend{store: inner}, nil
	}
	breaker := store.NewBreakerStore(inner, cfg.Store.BreakerOptions())
	return &storeBackend{store: breaker, breaker: breaker}, nil
}
