// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package signals

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

// ReasonPopular is the reason attached to popularity items.
const ReasonPopular = "popular item"

// Popularity ranks catalog items by quantity on hand. It needs no customer
// input, which makes it the fallback when personalized signals have nothing.
type Popularity struct {
	base
	cfg recommend.PopularityConfig
}

// NewPopularity creates the popularity generator.
func NewPopularity(catalog recommend.ProductCatalog, cfg recommend.PopularityConfig) *Popularity {
	return &Popularity{
		base: newBase(recommend.SignalPopularity, catalog),
		cfg:  cfg,
	}
}

// Applicable is always true.
func (p *Popularity) Applicable(*recommend.SignalRequest) bool {
	return true
}

// Generate returns up to MaxCandidates products ordered by quantity
// descending, then product id, all at the fixed popularity score.
func (p *Popularity) Generate(ctx context.Context, _ *recommend.SignalRequest) ([]recommend.RecommendationItem, error) {
	products, err := p.catalog.ListAll(ctx, recommend.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Quantity != products[j].Quantity {
			return products[i].Quantity > products[j].Quantity
		}
		return products[i].ID < products[j].ID
	})

	n := len(products)
	if p.cfg.MaxCandidates > 0 && n > p.cfg.MaxCandidates {
		n = p.cfg.MaxCandidates
	}

	items := make([]recommend.RecommendationItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, p.item(&products[i], p.cfg.Score, ReasonPopular))
	}
	return items, nil
}
