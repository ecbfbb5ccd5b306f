// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package signals

import (
	"context"
	"fmt"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

// Collaborative recommends products related to what the customer bought.
//
// For each of the most recent distinct purchases it finds similar products
// at or above MinSimilarity and scores them similarity * ScoreFactor. For a
// smaller sample it adds complementary products from adjacent categories at
// ComplementaryScore. Products the customer already bought are excluded.
type Collaborative struct {
	base
	scorer      *recommend.Scorer
	cfg         recommend.CollaborativeConfig
	perCategory int
}

// NewCollaborative creates the collaborative generator.
func NewCollaborative(catalog recommend.ProductCatalog, scorer *recommend.Scorer, cfg recommend.CollaborativeConfig, perCategory int) *Collaborative {
	return &Collaborative{
		base:        newBase(recommend.SignalCollaborative, catalog),
		scorer:      scorer,
		cfg:         cfg,
		perCategory: perCategory,
	}
}

// Applicable requires purchase history.
func (c *Collaborative) Applicable(req *recommend.SignalRequest) bool {
	return len(req.Purchases) > 0
}

// Generate expands recent purchases into similar and complementary items.
func (c *Collaborative) Generate(ctx context.Context, req *recommend.SignalRequest) ([]recommend.RecommendationItem, error) {
	purchased := make(map[string]struct{}, len(req.Purchases))
	ids := make([]string, len(req.Purchases))
	for i, p := range req.Purchases {
		purchased[p.ProductID] = struct{}{}
		ids[i] = p.ProductID
	}

	recent := recentDistinct(ids, c.cfg.RecentPurchases)

	corpus, err := c.catalog.ListAll(ctx, recommend.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	items := make([]recommend.RecommendationItem, 0)
	for n, id := range recent {
		target, ok, err := c.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		for _, s := range c.scorer.FindSimilar(&target, corpus, req.Limit, c.cfg.MinSimilarity) {
			if _, bought := purchased[s.Product.ID]; bought {
				continue
			}
			items = append(items, c.item(&s.Product, s.Score*c.cfg.ScoreFactor,
				"similar to "+displayName(&target), "similar"))
		}

		if n >= c.cfg.ComplementarySample {
			continue
		}
		complements, err := recommend.Complementary(ctx, c.catalog, &target, c.perCategory)
		if err != nil {
			return nil, err
		}
		for i := range complements {
			if _, bought := purchased[complements[i].ID]; bought {
				continue
			}
			items = append(items, c.item(&complements[i], c.cfg.ComplementaryScore,
				recommend.ReasonBoughtTogether, "complementary"))
		}
	}

	sortByScore(items)
	return items, nil
}

func displayName(p *recommend.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
