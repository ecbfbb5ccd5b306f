// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package signals

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

// ContentBased recommends products matching stated preferences.
//
// The catalog is first narrowed to the customer's budget range. Products in
// a favorite category score FavoriteCategoryScore; remaining products from a
// preferred supplier score PreferredBrandScore.
type ContentBased struct {
	base
	cfg recommend.ContentConfig
}

// NewContentBased creates the content-based generator.
func NewContentBased(catalog recommend.ProductCatalog, cfg recommend.ContentConfig) *ContentBased {
	return &ContentBased{
		base: newBase(recommend.SignalContentBased, catalog),
		cfg:  cfg,
	}
}

// Applicable requires a profile with favorite categories or brands.
func (c *ContentBased) Applicable(req *recommend.SignalRequest) bool {
	return req.Profile.HasPreferences()
}

// Generate scores budget-eligible products against the profile.
func (c *ContentBased) Generate(ctx context.Context, req *recommend.SignalRequest) ([]recommend.RecommendationItem, error) {
	prefs := req.Profile.Preferences

	filter := recommend.ProductFilter{}
	if b := prefs.BudgetRange; b != nil {
		filter.MinPrice = b.Min
		filter.MaxPrice = b.Max
	}

	products, err := c.catalog.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	favorites := foldSet(prefs.FavoriteCategories)
	brands := foldSet(prefs.BrandPreferences)

	items := make([]recommend.RecommendationItem, 0)
	for i := range products {
		p := &products[i]
		if b := prefs.BudgetRange; b != nil && !b.Contains(p.Price) {
			continue
		}

		if _, ok := favorites[fold(p.Category)]; ok {
			items = append(items, c.item(p, c.cfg.FavoriteCategoryScore,
				"matches favorite category "+p.Category, "favorite-category"))
			continue
		}
		if _, ok := brands[fold(p.Supplier)]; ok {
			items = append(items, c.item(p, c.cfg.PreferredBrandScore,
				"from preferred brand "+p.Supplier, "preferred-brand"))
		}
	}

	sortByScore(items)
	return items, nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}
