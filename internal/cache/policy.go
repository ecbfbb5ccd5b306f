// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cache

import (
	"fmt"
	"time"
)

// AnalysisType identifies the kind of computation a cache entry holds.
type AnalysisType string

const (
	// AnalysisConsumption covers consumption-pattern analysis.
	AnalysisConsumption AnalysisType = "consumption"

	// AnalysisProfiling covers customer profiling.
	AnalysisProfiling AnalysisType = "profiling"

	// AnalysisRecommendation covers recommendation generation.
	AnalysisRecommendation AnalysisType = "recommendation"
)

// AnalysisTypes lists every known analysis type.
var AnalysisTypes = []AnalysisType{AnalysisConsumption, AnalysisProfiling, AnalysisRecommendation}

// Valid reports whether t is a known analysis type.
func (t AnalysisType) Valid() bool {
	switch t {
	case AnalysisConsumption, AnalysisProfiling, AnalysisRecommendation:
		return true
	default:
		return false
	}
}

// Policy controls caching for one analysis type.
type Policy struct {
	// Enabled toggles caching for the type. A disabled type always misses.
	Enabled bool `json:"enabled"`

	// TTL is the lifetime of an entry.
	TTL time.Duration `json:"ttl"`

	// MaxEntries caps entries per (customer, analysis type).
	MaxEntries int `json:"max_entries"`
}

// Config holds ResultCache configuration.
type Config struct {
	// Policies maps each analysis type to its caching policy.
	Policies map[AnalysisType]Policy `json:"policies"`

	// DefaultTTL applies to ad-hoc SetKey calls without an explicit TTL.
	// Default: 1h.
	DefaultTTL time.Duration `json:"default_ttl"`

	// Table holds fingerprinted entries.
	// Default: analysis_cache.
	Table string `json:"table"`

	// AdHocTable holds ad-hoc entries.
	// Default: adhoc_cache.
	AdHocTable string `json:"adhoc_table"`
}

// DefaultConfig returns the standard policy table.
func DefaultConfig() Config {
	return Config{
		Policies: map[AnalysisType]Policy{
			AnalysisConsumption:    {Enabled: true, TTL: 60 * time.Minute, MaxEntries: 10},
			AnalysisProfiling:      {Enabled: true, TTL: 720 * time.Minute, MaxEntries: 5},
			AnalysisRecommendation: {Enabled: true, TTL: 30 * time.Minute, MaxEntries: 15},
		},
		DefaultTTL: time.Hour,
		Table:      "analysis_cache",
		AdHocTable: "adhoc_cache",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for t, p := range c.Policies {
		if !t.Valid() {
			return fmt.Errorf("cache.policies: unknown analysis type %q", t)
		}
		if !p.Enabled {
			continue
		}
		if p.TTL <= 0 {
			return fmt.Errorf("cache.policies.%s.ttl must be positive, got %v", t, p.TTL)
		}
		if p.MaxEntries < 1 {
			return fmt.Errorf("cache.policies.%s.max_entries must be positive, got %d", t, p.MaxEntries)
		}
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %v", c.DefaultTTL)
	}
	if c.Table == "" || c.AdHocTable == "" {
		return fmt.Errorf("cache tables must be named")
	}
	if c.Table == c.AdHocTable {
		return fmt.Errorf("cache.table and cache.adhoc_table must differ")
	}
	return nil
}

// policy returns the policy for t; unknown types are disabled.
func (c *Config) policy(t AnalysisType) Policy {
	p, ok := c.Policies[t]
	if !ok {
		return Policy{}
	}
	return p
}
