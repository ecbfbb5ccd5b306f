// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package retail provides the store-backed collaborators of the
// recommendation engine: the product catalog and the customer directory.
package retail

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/store"
)

// Store tables and indexes.
const (
	TableProducts     = "products"
	TableProfiles     = "profiles"
	TablePurchases    = "purchases"
	TableInteractions = "interactions"

	indexCategory = "category"
	indexCustomer = "customer"
)

const snapshotKey = "all"

// StoreCatalog is a recommend.ProductCatalog over a persistent store. Full
// catalog scans are memoized for a short TTL since every signal generator
// reads the whole catalog.
type StoreCatalog struct {
	store    store.Store
	snapshot *cache.Memo[[]recommend.Product]
	logger   zerolog.Logger
}

// NewStoreCatalog creates a catalog over s. A non-positive snapshotTTL
// disables memoization.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreCatalog(s store.Store, snapshotTTL time.Duration, logger zerolog.Logger) *StoreCatalog {
	c := &StoreCatalog{
		store:  s,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
	if snapshotTTL > 0 {
		c.snapshot = cache.NewMemo[[]recommend.Product](snapshotTTL)
	}
	return c
}

// GetProduct returns the product with id.
func (c *StoreCatalog) GetProduct(ctx context.Context, id string) (recommend.Product, error) {
	p, err := store.GetJSON[recommend.Product](ctx, c.store, TableProducts, id)
	if err != nil {
		return p, fmt.Errorf("product %s: %w", id, translate(err))
	}
	return p, nil
}

// ListAll returns every product passing filter, sorted by id.
func (c *StoreCatalog) ListAll(ctx context.Context, filter recommend.ProductFilter) ([]recommend.Product, error) {
	all, err := c.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Product, 0, len(all))
	for i := range all {
		if filter.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// ListByCategory returns products in category (case-insensitive), sorted by id.
func (c *StoreCatalog) ListByCategory(ctx context.Context, category string) ([]recommend.Product, error) {
	items, err := c.store.Query(ctx, TableProducts, store.ByIndex(indexCategory, categoryKey(category)))
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", category, translate(err))
	}
	return c.decode(items), nil
}

// PutProduct creates or replaces a product.
func (c *StoreCatalog) PutProduct(ctx context.Context, p *recommend.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: product id is required", recommend.ErrInvalidRequest)
	}
	err := store.PutJSON(ctx, c.store, TableProducts, p.ID, p, map[string]string{
		indexCategory: categoryKey(p.Category),
	})
	if err != nil {
		return fmt.Errorf("put product %s: %w", p.ID, translate(err))
	}
	if c.snapshot != nil {
		c.snapshot.Clear()
	}
	return nil
}

func (c *StoreCatalog) all(ctx context.Context) ([]recommend.Product, error) {
	if c.snapshot != nil {
		if products, ok := c.snapshot.Get(snapshotKey); ok {
			return products, nil
		}
	}

	items, err := c.store.Query(ctx, TableProducts, store.All())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", translate(err))
	}
	products := c.decode(items)

	if c.snapshot != nil {
		c.snapshot.Set(snapshotKey, products)
	}
	return products, nil
}

// decode parses product records sorted by id, skipping malformed ones.
func (c *StoreCatalog) decode(items []store.Item) []recommend.Product {
	products := make([]recommend.Product, 0, len(items))
	for _, item := range items {
		var p recommend.Product
		if err := json.Unmarshal(item.Value, &p); err != nil {
			c.logger.Warn().
				Err(errors.Join(recommend.ErrMalformed, err)).
				Str("key", item.Key).
				Msg("skipping malformed product")
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
