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

// ReasonInCart is the reason attached to items left in the cart.
const ReasonInCart = "previously in cart"

// InteractionBased recommends from browsing and cart activity.
//
// Recently viewed products seed a similarity search at MinSimilarity scored
// similarity * ScoreFactor. Products added to the cart and not removed
// afterwards are recommended directly at CartScore.
type InteractionBased struct {
	base
	scorer *recommend.Scorer
	cfg    recommend.InteractionConfig
}

// NewInteractionBased creates the interaction-based generator.
func NewInteractionBased(catalog recommend.ProductCatalog, scorer *recommend.Scorer, cfg recommend.InteractionConfig) *InteractionBased {
	return &InteractionBased{
		base:   newBase(recommend.SignalInteractionBased, catalog),
		scorer: scorer,
		cfg:    cfg,
	}
}

// Applicable requires at least one interaction.
func (g *InteractionBased) Applicable(req *recommend.SignalRequest) bool {
	return len(req.Interactions) > 0
}

// Generate scores products similar to recent views and items left in cart.
func (g *InteractionBased) Generate(ctx context.Context, req *recommend.SignalRequest) ([]recommend.RecommendationItem, error) {
	events := chronological(req.Interactions)

	var views []string
	for _, ev := range events {
		if ev.Type == recommend.InteractionView {
			views = append(views, ev.ProductID)
		}
	}

	items := make([]recommend.RecommendationItem, 0)

	if recent := recentDistinct(views, g.cfg.RecentViews); len(recent) > 0 {
		corpus, err := g.catalog.ListAll(ctx, recommend.ProductFilter{})
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}
		for _, id := range recent {
			target, ok, err := g.lookup(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			for _, s := range g.scorer.FindSimilar(&target, corpus, req.Limit, g.cfg.MinSimilarity) {
				items = append(items, g.item(&s.Product, s.Score*g.cfg.ScoreFactor,
					"similar to recently viewed "+displayName(&target), "viewed-similar"))
			}
		}
	}

	for _, id := range leftInCart(events) {
		p, ok, err := g.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, g.item(&p, g.cfg.CartScore, ReasonInCart, "cart"))
	}

	sortByScore(items)
	return items, nil
}

// chronological returns a copy of events sorted by timestamp. Equal
// timestamps keep their input order.
func chronological(events []recommend.InteractionEvent) []recommend.InteractionEvent {
	out := make([]recommend.InteractionEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// leftInCart returns product ids whose last cart event is an addition,
// sorted by id. events must be chronological.
func leftInCart(events []recommend.InteractionEvent) []string {
	inCart := make(map[string]bool)
	for _, ev := range events {
		switch ev.Type {
		case recommend.InteractionAddToCart:
			inCart[ev.ProductID] = true
		case recommend.InteractionRemoveFromCart:
			delete(inCart, ev.ProductID)
		}
	}

	ids := make([]string, 0, len(inCart))
	for id := range inCart {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
