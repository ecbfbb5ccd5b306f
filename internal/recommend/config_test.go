// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative weight", func(c *Config) { c.Similarity.TagWeight = -0.1 }, true},
		{"price threshold one", func(c *Config) { c.Similarity.PriceThreshold = 1 }, true},
		{"score above one", func(c *Config) { c.Interaction.CartScore = 1.2 }, true},
		{"zero recent purchases", func(c *Config) { c.Collaborative.RecentPurchases = 0 }, true},
		{"max below default", func(c *Config) { c.Limits.MaxLimit = 5 }, true},
		{"zero generator timeout", func(c *Config) { c.Limits.GeneratorTimeout = 0 }, true},
		{"zero result expiry", func(c *Config) { c.ResultExpiry = 0 }, true},
		{"negative result retention", func(c *Config) { c.ResultRetention = -time.Hour }, true},
		{"zero result retention", func(c *Config) { c.ResultRetention = 0 }, false},
		{"zero candidates", func(c *Config) { c.Popularity.MaxCandidates = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Limits.DefaultLimit = 3
	if cfg.Limits.DefaultLimit != 10 {
		t.Errorf("Clone() shares state: DefaultLimit = %d, want 10", cfg.Limits.DefaultLimit)
	}

	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("Clone() of nil config should be nil")
	}
}
