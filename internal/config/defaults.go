// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package config

import (
	"time"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/cost"
	"github.com/tomtom215/shelfsense/internal/recommend"
)

// defaultConfig returns the configuration applied before file and env layers.
func defaultConfig() *Config {
	cachePolicies := cache.DefaultConfig().Policies
	policy := func(t cache.AnalysisType) PolicyConfig {
		p := cachePolicies[t]
		return PolicyConfig{Enabled: p.Enabled, TTL: p.TTL, MaxEntries: p.MaxEntries}
	}
	tracker := cost.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: BackendBadger,
			Badger:  BadgerConfig{Path: "/data/shelfsense"},
			Redis:   RedisConfig{Addr: "127.0.0.1:6379", KeyPrefix: "shelfsense"},
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Cache: CacheConfig{
			DefaultTTL:         cache.DefaultConfig().DefaultTTL,
			Consumption:        policy(cache.AnalysisConsumption),
			Profiling:          policy(cache.AnalysisProfiling),
			Recommendation:     policy(cache.AnalysisRecommendation),
			CatalogSnapshotTTL: 30 * time.Second,
		},
		Recommend: *recommend.DefaultConfig(),
		Cost: CostConfig{
			Enabled:         tracker.Enabled,
			DuckDBPath:      "/data/shelfsense-costs.duckdb",
			DefaultUnitCost: tracker.DefaultUnitCost,
			QueueSize:       tracker.QueueSize,
			BatchSize:       tracker.BatchSize,
			FlushInterval:   tracker.FlushInterval,
		},
		API: APIConfig{
			RateLimit:     100,
			RateWindow:    time.Minute,
			FeedbackRate:  5,
			FeedbackBurst: 20,
			CORSOrigins:   []string{"*"},
			MaxBodyBytes:  1 << 20,
		},
		Janitor: JanitorConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
	}
}
