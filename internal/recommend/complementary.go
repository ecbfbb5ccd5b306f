// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ReasonBoughtTogether is the reason attached to complementary items.
const ReasonBoughtTogether = "frequently bought together"

// complementaryCategories maps a lower-cased category to the categories its
// products are commonly bought with.
var complementaryCategories = map[string][]string{
	"dairy":      {"Bakery", "Fruits", "Cereals"},
	"bakery":     {"Dairy", "Beverages", "Snacks"},
	"fruits":     {"Dairy", "Vegetables", "Cereals"},
	"vegetables": {"Meat", "Fruits", "Grains"},
	"meat":       {"Vegetables", "Beverages", "Grains"},
	"cereals":    {"Dairy", "Fruits"},
	"beverages":  {"Snacks", "Bakery", "Meat"},
	"snacks":     {"Beverages", "Bakery"},
}

// ComplementaryCategories returns the categories adjacent to category, or
// nil when the category has no entry.
func ComplementaryCategories(category string) []string {
	adjacent := complementaryCategories[strings.ToLower(strings.TrimSpace(category))]
	if adjacent == nil {
		return nil
	}
	out := make([]string, len(adjacent))
	copy(out, adjacent)
	return out
}

// Complementary returns up to perCategory products from each category
// adjacent to p, in table order and by product id within a category. The
// product itself is never returned. Categories that fail with ErrNotFound
// are skipped.
func Complementary(ctx context.Context, catalog ProductCatalog, p *Product, perCategory int) ([]Product, error) {
	var out []Product
	for _, category := range ComplementaryCategories(p.Category) {
		products, err := catalog.ListByCategory(ctx, category)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return out, fmt.Errorf("list category %s: %w", category, err)
		}

		sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

		taken := 0
		for i := range products {
			if taken >= perCategory {
				break
			}
			if products[i].ID == p.ID {
				continue
			}
			out = append(out, products[i])
			taken++
		}
	}
	return out, nil
}
