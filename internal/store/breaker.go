// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shelfsense/internal/logging"
	"github.com/tomtom215/shelfsense/internal/metrics"
)

// BreakerConfig configures the circuit breaker placed in front of a backend.
type BreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	// Default: store-<backend>
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	// Default: 3
	MaxRequests uint32

	// Interval resets the closed-state counts.
	// Default: 1m
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	// Default: 30s
	Timeout time.Duration

	// MinRequests is the request volume required before the breaker may trip.
	// Default: 10
	MinRequests uint32

	// FailureRatio opens the breaker once failures/requests reaches it.
	// Default: 0.6
	FailureRatio float64
}

// BreakerStore wraps a Store with a circuit breaker. ErrNotFound and context
// cancellation by the caller do not count as failures.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner Store, cfg BreakerConfig) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "store-" + inner.Name()
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 10
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = 0.6
	}

	logger := logging.WithComponent("store").With().Str("breaker", cfg.Name).Logger()
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio).Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{inner: inner, cb: cb, name: cfg.Name}
}

// Name implements Store.
func (b *BreakerStore) Name() string { return b.inner.Name() }

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, b.name, err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
}

// castResult type-asserts the breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Get implements Store.
func (b *BreakerStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	return castResult[[]byte](b.execute(func() (any, error) {
		return b.inner.Get(ctx, table, key)
	}))
}

// Put implements Store.
//
//nolint:gocritic // Item is passed by value to match the Store interface
func (b *BreakerStore) Put(ctx context.Context, table string, item Item) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.Put(ctx, table, item)
	})
	return err
}

// Query implements Store.
func (b *BreakerStore) Query(ctx context.Context, table string, cond Condition) ([]Item, error) {
	return castResult[[]Item](b.execute(func() (any, error) {
		return b.inner.Query(ctx, table, cond)
	}))
}

// Delete implements Store.
func (b *BreakerStore) Delete(ctx context.Context, table, key string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.Delete(ctx, table, key)
	})
	return err
}

// Close implements Store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var _ Store = (*BreakerStore)(nil)
