// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfsense/config.yaml",
	"/etc/shelfsense/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, the config file if any, and
// the environment, then validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store
	"store_backend":          "store.backend",
	"badger_path":            "store.badger.path",
	"badger_in_memory":       "store.badger.in_memory",
	"redis_addr":             "store.redis.addr",
	"redis_password":         "store.redis.password",
	"redis_db":               "store.redis.db",
	"redis_key_prefix":       "store.redis.key_prefix",
	"store_breaker_enabled":  "store.breaker.enabled",
	"store_breaker_timeout":  "store.breaker.timeout",
	"store_breaker_ratio":    "store.breaker.failure_ratio",
	"store_breaker_requests": "store.breaker.min_requests",

	// Cache
	"cache_default_ttl":            "cache.default_ttl",
	"cache_recommendation_ttl":     "cache.recommendation.ttl",
	"cache_recommendation_entries": "cache.recommendation.max_entries",
	"cache_recommendation_enabled": "cache.recommendation.enabled",
	"cache_consumption_ttl":        "cache.consumption.ttl",
	"cache_profiling_ttl":          "cache.profiling.ttl",
	"catalog_snapshot_ttl":         "cache.catalog_snapshot_ttl",

	// Recommendation engine
	"recommend_default_limit":        "recommend.limits.default_limit",
	"recommend_max_limit":            "recommend.limits.max_limit",
	"recommend_history_limit":        "recommend.limits.history_limit",
	"recommend_collaborator_timeout": "recommend.limits.collaborator_timeout",
	"recommend_generator_timeout":    "recommend.limits.generator_timeout",
	"recommend_result_expiry":        "recommend.result_expiry",
	"recommend_result_retention":     "recommend.result_retention",
	"recommend_max_candidates":       "recommend.popularity.max_candidates",

	// Cost tracking
	"cost_enabled":           "cost.enabled",
	"cost_duckdb_path":       "cost.duckdb_path",
	"cost_default_unit_cost": "cost.default_unit_cost",
	"cost_queue_size":        "cost.queue_size",
	"cost_flush_interval":    "cost.flush_interval",

	// Seed
	"seed_path":          "seed.path",
	"seed_only_if_empty": "seed.only_if_empty",

	// API
	"rate_limit_requests": "api.rate_limit",
	"rate_limit_window":   "api.rate_window",
	"feedback_rate":       "api.feedback_rate",
	"feedback_burst":      "api.feedback_burst",
	"cors_origins":        "api.cors_origins",
	"max_body_bytes":      "api.max_body_bytes",

	// Janitor
	"janitor_enabled":  "janitor.enabled",
	"janitor_interval": "janitor.interval",
}

// envTransformFunc maps HTTP_PORT to server.port and so on. Unmapped names
// return "" so stray variables never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
