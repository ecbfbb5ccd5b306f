// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package config

import (
	"fmt"
	"strings"
)

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}

	cacheCfg := c.Cache.ResultCache()
	if err := cacheCfg.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if c.Cache.CatalogSnapshotTTL < 0 {
		return fmt.Errorf("cache.catalog_snapshot_ttl must not be negative")
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	tracker := c.Cost.Tracker()
	if err := tracker.Validate(); err != nil {
		return fmt.Errorf("cost: %w", err)
	}

	if err := c.validateAPI(); err != nil {
		return err
	}
	if c.Janitor.Enabled && c.Janitor.Interval <= 0 {
		return fmt.Errorf("janitor.interval must be positive when the janitor is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if !c.Store.Badger.InMemory && c.Store.Badger.Path == "" {
			return fmt.Errorf("store.badger.path is required unless store.badger.in_memory is set")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory, badger or redis, got %q", c.Store.Backend)
	}

	if b := c.Store.Breaker; b.Enabled {
		if b.FailureRatio <= 0 || b.FailureRatio > 1 {
			return fmt.Errorf("store.breaker.failure_ratio must be in (0, 1], got %f", b.FailureRatio)
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("store.breaker.timeout must be positive")
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.API.RateLimit > 0 && c.API.RateWindow <= 0 {
		return fmt.Errorf("api.rate_window must be positive when rate limiting is enabled")
	}
	if c.API.FeedbackRate < 0 || c.API.FeedbackBurst < 0 {
		return fmt.Errorf("api.feedback_rate and api.feedback_burst must not be negative")
	}
	if c.API.FeedbackRate > 0 && c.API.FeedbackBurst == 0 {
		return fmt.Errorf("api.feedback_burst must be positive when api.feedback_rate is set")
	}
	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("api.max_body_bytes must be positive")
	}
	return nil
}
