// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package signals implements the signal generators blended by the
// recommendation engine.
//
// Each generator implements the recommend.Generator interface and can be
// registered with recommend.NewEngine.
//
// # Generators
//
//   - Collaborative: similarity to recent purchases plus complementary items
//   - ContentBased: favorite categories and preferred brands within budget
//   - InteractionBased: similarity to recent views plus items left in cart
//   - Popularity: stock on hand, used to fill remaining slots
//
// # Thread Safety
//
// Generators hold no per-request state and are safe for concurrent use. They
// never mutate the SignalRequest they are given.
package signals

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

// base provides what every generator shares.
type base struct {
	kind    recommend.SignalKind
	catalog recommend.ProductCatalog
}

func newBase(kind recommend.SignalKind, catalog recommend.ProductCatalog) base {
	return base{kind: kind, catalog: catalog}
}

// Kind returns the signal identifier.
func (b *base) Kind() recommend.SignalKind {
	return b.kind
}

// item builds a RecommendationItem tagged with the signal name.
func (b *base) item(p *recommend.Product, score float64, reason string, tags ...string) recommend.RecommendationItem {
	return recommend.RecommendationItem{
		Product: *p,
		Score:   score,
		Reason:  reason,
		Tags:    append([]string{b.kind.String()}, tags...),
	}
}

// lookup fetches a product, reporting ok=false for unknown ids.
func (b *base) lookup(ctx context.Context, id string) (recommend.Product, bool, error) {
	p, err := b.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			return p, false, nil
		}
		return p, false, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, true, nil
}

// recentDistinct returns up to n distinct product ids from ids, walking from
// the end (most recent) backwards.
func recentDistinct(ids []string, n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := len(ids) - 1; i >= 0 && len(out) < n; i-- {
		if _, ok := seen[ids[i]]; ok || ids[i] == "" {
			continue
		}
		seen[ids[i]] = struct{}{}
		out = append(out, ids[i])
	}
	return out
}

// sortByScore orders items by score descending, then product id.
func sortByScore(items []recommend.RecommendationItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Product.ID < items[j].Product.ID
	})
}

// All returns the four standard generators configured from cfg.
func All(catalog recommend.ProductCatalog, cfg *recommend.Config) []recommend.Generator {
	scorer := recommend.NewScorer(cfg.Similarity)
	return []recommend.Generator{
		NewCollaborative(catalog, scorer, cfg.Collaborative, cfg.ComplementaryPerCategory),
		NewContentBased(catalog, cfg.Content),
		NewInteractionBased(catalog, scorer, cfg.Interaction),
		NewPopularity(catalog, cfg.Popularity),
	}
}
