// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Similarity contains the pairwise similarity weights.
	Similarity SimilarityConfig `json:"similarity" koanf:"similarity"`

	// Content contains parameters for the content-based signal.
	Content ContentConfig `json:"content" koanf:"content"`

	// Collaborative contains parameters for the collaborative signal.
	Collaborative CollaborativeConfig `json:"collaborative" koanf:"collaborative"`

	// Interaction contains parameters for the interaction-based signal.
	Interaction InteractionConfig `json:"interaction" koanf:"interaction"`

	// Popularity contains parameters for the popularity fallback.
	Popularity PopularityConfig `json:"popularity" koanf:"popularity"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// ResultExpiry is the soft expiry of persisted results.
	// Default: 24h.
	ResultExpiry time.Duration `json:"result_expiry" koanf:"result_expiry"`

	// ResultRetention is how long expired results are kept before the
	// janitor deletes them. Zero keeps them forever.
	// Default: 168h.
	ResultRetention time.Duration `json:"result_retention" koanf:"result_retention"`

	// ComplementaryPerCategory bounds the sample drawn from each adjacent
	// category.
	// Default: 2.
	ComplementaryPerCategory int `json:"complementary_per_category" koanf:"complementary_per_category"`
}

// SimilarityConfig holds the additive feature weights of the similarity model.
type SimilarityConfig struct {
	// CategoryWeight is credited when categories match.
	// Default: 0.35.
	CategoryWeight float64 `json:"category_weight" koanf:"category_weight"`

	// PriceWeight scales the price closeness ratio.
	// Default: 0.25.
	PriceWeight float64 `json:"price_weight" koanf:"price_weight"`

	// PriceThreshold is the closeness ratio that must be exceeded for any
	// price credit.
	// Default: 0.8.
	PriceThreshold float64 `json:"price_threshold" koanf:"price_threshold"`

	// SupplierWeight is credited when suppliers match.
	// Default: 0.15.
	SupplierWeight float64 `json:"supplier_weight" koanf:"supplier_weight"`

	// LocationWeight is credited when locations match.
	// Default: 0.10.
	LocationWeight float64 `json:"location_weight" koanf:"location_weight"`

	// TagWeight scales the Jaccard overlap of tags.
	// Default: 0.15.
	TagWeight float64 `json:"tag_weight" koanf:"tag_weight"`
}

// ContentConfig contains parameters for the content-based signal.
type ContentConfig struct {
	// FavoriteCategoryScore is assigned to items in a favorite category.
	// Default: 0.8.
	FavoriteCategoryScore float64 `json:"favorite_category_score" koanf:"favorite_category_score"`

	// PreferredBrandScore is assigned to items from a preferred supplier.
	// Default: 0.75.
	PreferredBrandScore float64 `json:"preferred_brand_score" koanf:"preferred_brand_score"`
}

// CollaborativeConfig contains parameters for the collaborative signal.
type CollaborativeConfig struct {
	// RecentPurchases is how many distinct recent purchases seed similarity.
	// Default: 5.
	RecentPurchases int `json:"recent_purchases" koanf:"recent_purchases"`

	// MinSimilarity is the lowest similarity that produces a candidate.
	// Default: 0.4.
	MinSimilarity float64 `json:"min_similarity" koanf:"min_similarity"`

	// ScoreFactor multiplies similarity into the item score.
	// Default: 0.9.
	ScoreFactor float64 `json:"score_factor" koanf:"score_factor"`

	// ComplementarySample is how many recent purchases seed complementary
	// lookups.
	// Default: 3.
	ComplementarySample int `json:"complementary_sample" koanf:"complementary_sample"`

	// ComplementaryScore is assigned to complementary items.
	// Default: 0.7.
	ComplementaryScore float64 `json:"complementary_score" koanf:"complementary_score"`
}

// InteractionConfig contains parameters for the interaction-based signal.
type InteractionConfig struct {
	// RecentViews is how many distinct recent views seed similarity.
	// Default: 5.
	RecentViews int `json:"recent_views" koanf:"recent_views"`

	// MinSimilarity is the lowest similarity that produces a candidate.
	// Default: 0.5.
	MinSimilarity float64 `json:"min_similarity" koanf:"min_similarity"`

	// ScoreFactor multiplies similarity into the item score.
	// Default: 0.6.
	ScoreFactor float64 `json:"score_factor" koanf:"score_factor"`

	// CartScore is assigned to items left in the cart.
	// Default: 0.85.
	CartScore float64 `json:"cart_score" koanf:"cart_score"`
}

// PopularityConfig contains parameters for the popularity signal.
type PopularityConfig struct {
	// Score is the fixed score of popularity items.
	// Default: 0.5.
	Score float64 `json:"score" koanf:"score"`

	// MaxCandidates bounds how many ranked products the signal returns. The
	// engine skips products already recommended, so this should exceed the
	// request limit.
	// Default: 200.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit applies when a request asks for zero items.
	// Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps the items per request.
	// Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// HistoryLimit bounds purchases loaded per request.
	// Default: 100.
	HistoryLimit int `json:"history_limit" koanf:"history_limit"`

	// InteractionLimit bounds interactions loaded per request.
	// Default: 100.
	InteractionLimit int `json:"interaction_limit" koanf:"interaction_limit"`

	// CollaboratorTimeout bounds each customer directory call.
	// Default: 2s.
	CollaboratorTimeout time.Duration `json:"collaborator_timeout" koanf:"collaborator_timeout"`

	// GeneratorTimeout bounds each signal generator run.
	// Default: 3s.
	GeneratorTimeout time.Duration `json:"generator_timeout" koanf:"generator_timeout"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Similarity: SimilarityConfig{
			CategoryWeight: 0.35,
			PriceWeight:    0.25,
			PriceThreshold: 0.8,
			SupplierWeight: 0.15,
			LocationWeight: 0.10,
			TagWeight:      0.15,
		},
		Content: ContentConfig{
			FavoriteCategoryScore: 0.8,
			PreferredBrandScore:   0.75,
		},
		Collaborative: CollaborativeConfig{
			RecentPurchases:     5,
			MinSimilarity:       0.4,
			ScoreFactor:         0.9,
			ComplementarySample: 3,
			ComplementaryScore:  0.7,
		},
		Interaction: InteractionConfig{
			RecentViews:   5,
			MinSimilarity: 0.5,
			ScoreFactor:   0.6,
			CartScore:     0.85,
		},
		Popularity: PopularityConfig{
			Score:         0.5,
			MaxCandidates: 200,
		},
		Limits: LimitsConfig{
			DefaultLimit:        10,
			MaxLimit:            100,
			HistoryLimit:        100,
			InteractionLimit:    100,
			CollaboratorTimeout: 2 * time.Second,
			GeneratorTimeout:    3 * time.Second,
		},
		ResultExpiry:             24 * time.Hour,
		ResultRetention:          7 * 24 * time.Hour,
		ComplementaryPerCategory: 2,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.Similarity.validate(); err != nil {
		return err
	}

	scores := map[string]float64{
		"content.favorite_category_score":   c.Content.FavoriteCategoryScore,
		"content.preferred_brand_score":     c.Content.PreferredBrandScore,
		"collaborative.min_similarity":      c.Collaborative.MinSimilarity,
		"collaborative.score_factor":        c.Collaborative.ScoreFactor,
		"collaborative.complementary_score": c.Collaborative.ComplementaryScore,
		"interaction.min_similarity":        c.Interaction.MinSimilarity,
		"interaction.score_factor":          c.Interaction.ScoreFactor,
		"interaction.cart_score":            c.Interaction.CartScore,
		"popularity.score":                  c.Popularity.Score,
	}
	for name, v := range scores {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, v)
		}
	}

	if c.Collaborative.RecentPurchases < 1 {
		return fmt.Errorf("collaborative.recent_purchases must be positive, got %d", c.Collaborative.RecentPurchases)
	}
	if c.Collaborative.ComplementarySample < 0 {
		return fmt.Errorf("collaborative.complementary_sample must be non-negative, got %d", c.Collaborative.ComplementarySample)
	}
	if c.Interaction.RecentViews < 1 {
		return fmt.Errorf("interaction.recent_views must be positive, got %d", c.Interaction.RecentViews)
	}
	if c.Popularity.MaxCandidates < 1 {
		return fmt.Errorf("popularity.max_candidates must be positive, got %d", c.Popularity.MaxCandidates)
	}
	if c.ComplementaryPerCategory < 1 {
		return fmt.Errorf("complementary_per_category must be positive, got %d", c.ComplementaryPerCategory)
	}
	if c.ResultExpiry <= 0 {
		return fmt.Errorf("result_expiry must be positive, got %v", c.ResultExpiry)
	}
	if c.ResultRetention < 0 {
		return fmt.Errorf("result_retention must be non-negative, got %v", c.ResultRetention)
	}

	return c.Limits.validate()
}

func (s *SimilarityConfig) validate() error {
	weights := []float64{s.CategoryWeight, s.PriceWeight, s.SupplierWeight, s.LocationWeight, s.TagWeight}
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("similarity weights must be non-negative, got %f", w)
		}
	}
	if s.PriceThreshold < 0 || s.PriceThreshold >= 1 {
		return fmt.Errorf("similarity.price_threshold must be in [0, 1), got %f", s.PriceThreshold)
	}
	return nil
}

func (l *LimitsConfig) validate() error {
	if l.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", l.DefaultLimit)
	}
	if l.MaxLimit < l.DefaultLimit {
		return fmt.Errorf("limits.max_limit (%d) must be >= default_limit (%d)", l.MaxLimit, l.DefaultLimit)
	}
	if l.HistoryLimit < 1 || l.InteractionLimit < 1 {
		return fmt.Errorf("limits.history_limit and interaction_limit must be positive")
	}
	if l.CollaboratorTimeout <= 0 || l.GeneratorTimeout <= 0 {
		return fmt.Errorf("limits timeouts must be positive")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
