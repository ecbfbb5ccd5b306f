// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheSweeper deletes expired cache entries.
type CacheSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ResultExpirer flips persisted results past their expiry to expired.
type ResultExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// JanitorConfig holds configuration for the janitor service.
type JanitorConfig struct {
	// Interval between passes. Default: 5m.
	Interval time.Duration

	// PassTimeout bounds one pass. Default: 1m.
	PassTimeout time.Duration

	// RunOnStart performs a pass as soon as the service starts.
	RunOnStart bool
}

// JanitorService periodically sweeps expired cache entries and expires
// stale results. Either collaborator may be nil.
type JanitorService struct {
	cache   CacheSweeper
	results ResultExpirer
	config  JanitorConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewJanitorService creates the janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(cache CacheSweeper, results ResultExpirer, cfg JanitorConfig, logger zerolog.Logger) *JanitorService {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = time.Minute
	}
	return &JanitorService{
		cache:   cache,
		results: results,
		config:  cfg,
		logger:  logger.With().Str("service", "janitor").Logger(),
		now:     time.Now,
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	j.logger.Info().Dur("interval", j.config.Interval).Msg("janitor starting")

	if j.config.RunOnStart {
		j.RunOnce(ctx)
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("janitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass. Failures are logged; the next pass retries.
func (j *JanitorService) RunOnce(ctx context.Context) (swept, expired int) {
	passCtx, cancel := context.WithTimeout(ctx, j.config.PassTimeout)
	defer cancel()

	start := time.Now()
	if j.cache != nil {
		n, err := j.cache.Sweep(passCtx)
		if err != nil {
			j.logger.Warn().Err(err).Msg("cache sweep failed")
		}
		swept = n
	}
	if j.results != nil {
		n, err := j.results.ExpireStale(passCtx, j.now())
		if err != nil {
			j.logger.Warn().Err(err).Msg("result expiry failed")
		}
		expired = n
	}

	j.logger.Debug().
		Int("swept", swept).
		Int("expired", expired).
		Dur("duration", time.Since(start)).
		Msg("janitor pass complete")
	return swept, expired
}

// String implements fmt.Stringer for suture logging.
func (j *JanitorService) String() string {
	return "janitor"
}
