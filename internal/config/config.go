// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package config loads the server configuration.
//
// Configuration is layered with koanf, lowest priority first:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
//     /etc/shelfsense/config.yaml, /etc/shelfsense/config.yml
//  3. Mapped environment variables (HTTP_PORT, STORE_BACKEND, LOG_LEVEL, ...)
//
// Each section converts to the configuration type of the package it drives,
// so components never import this package.
package config

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/cost"
	"github.com/tomtom215/shelfsense/internal/logging"
	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/store"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   LoggingConfig    `koanf:"logging"`
	Store     StoreConfig      `koanf:"store"`
	Cache     CacheConfig      `koanf:"cache"`
	Recommend recommend.Config `koanf:"recommend"`
	Cost      CostConfig       `koanf:"cost"`
	Seed      SeedConfig       `koanf:"seed"`
	API       APIConfig        `koanf:"api"`
	Janitor   JanitorConfig    `koanf:"janitor"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Logging returns the logging package configuration.
func (c *LoggingConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	cfg.Output = os.Stderr
	return cfg
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	// Backend is memory, badger or redis.
	Backend string        `koanf:"backend"`
	Badger  BadgerConfig  `koanf:"badger"`
	Redis   RedisConfig   `koanf:"redis"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// BadgerConfig configures the embedded backend.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// RedisConfig configures the shared backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// BreakerConfig configures the circuit breaker in front of the backend.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// BadgerOptions returns the store package configuration.
func (c *StoreConfig) BadgerOptions() store.BadgerConfig {
	return store.BadgerConfig{Path: c.Badger.Path, InMemory: c.Badger.InMemory}
}

// RedisOptions returns the store package configuration.
func (c *StoreConfig) RedisOptions() store.RedisConfig {
	return store.RedisConfig{
		Addr:      c.Redis.Addr,
		Password:  c.Redis.Password,
		DB:        c.Redis.DB,
		KeyPrefix: c.Redis.KeyPrefix,
	}
}

// BreakerOptions returns the store package configuration.
func (c *StoreConfig) BreakerOptions() store.BreakerConfig {
	return store.BreakerConfig{
		Name:         "store-" + c.Backend,
		MaxRequests:  c.Breaker.MaxRequests,
		Interval:     c.Breaker.Interval,
		Timeout:      c.Breaker.Timeout,
		MinRequests:  c.Breaker.MinRequests,
		FailureRatio: c.Breaker.FailureRatio,
	}
}

// PolicyConfig is the cache policy of one analysis type.
type PolicyConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	DefaultTTL     time.Duration `koanf:"default_ttl"`
	Consumption    PolicyConfig  `koanf:"consumption"`
	Profiling      PolicyConfig  `koanf:"profiling"`
	Recommendation PolicyConfig  `koanf:"recommendation"`

	// CatalogSnapshotTTL bounds how long the product list is memoized.
	CatalogSnapshotTTL time.Duration `koanf:"catalog_snapshot_ttl"`
}

// ResultCache returns the cache package configuration.
func (c *CacheConfig) ResultCache() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.DefaultTTL = c.DefaultTTL
	cfg.Policies = map[cache.AnalysisType]cache.Policy{
		cache.AnalysisConsumption:    c.Consumption.policy(),
		cache.AnalysisProfiling:      c.Profiling.policy(),
		cache.AnalysisRecommendation: c.Recommendation.policy(),
	}
	return cfg
}

func (p PolicyConfig) policy() cache.Policy {
	return cache.Policy{Enabled: p.Enabled, TTL: p.TTL, MaxEntries: p.MaxEntries}
}

// CostConfig configures invocation cost tracking.
type CostConfig struct {
	Enabled bool `koanf:"enabled"`

	// DuckDBPath is the invocation log database. Empty keeps it in memory.
	DuckDBPath string `koanf:"duckdb_path"`

	DefaultUnitCost float64            `koanf:"default_unit_cost"`
	UnitCosts       map[string]float64 `koanf:"unit_costs"`
	QueueSize       int                `koanf:"queue_size"`
	BatchSize       int                `koanf:"batch_size"`
	FlushInterval   time.Duration      `koanf:"flush_interval"`
}

// Tracker returns the cost package configuration.
func (c *CostConfig) Tracker() cost.Config {
	return cost.Config{
		Enabled:         c.Enabled,
		UnitCosts:       c.UnitCosts,
		DefaultUnitCost: c.DefaultUnitCost,
		QueueSize:       c.QueueSize,
		BatchSize:       c.BatchSize,
		FlushInterval:   c.FlushInterval,
	}
}

// SeedConfig configures the startup data loader.
type SeedConfig struct {
	// Path is a YAML seed file. Empty disables seeding.
	Path string `koanf:"path"`

	// OnlyIfEmpty skips seeding when the catalog already has products.
	OnlyIfEmpty bool `koanf:"only_if_empty"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	// RateLimit is requests per RateWindow per client IP. Zero disables it.
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`

	// FeedbackRate and FeedbackBurst bound feedback events per customer.
	FeedbackRate  float64 `koanf:"feedback_rate"`
	FeedbackBurst int     `koanf:"feedback_burst"`

	CORSOrigins  []string `koanf:"cors_origins"`
	MaxBodyBytes int64    `koanf:"max_body_bytes"`
}

// JanitorConfig configures periodic cleanup.
type JanitorConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
