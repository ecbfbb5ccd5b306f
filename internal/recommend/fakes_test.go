// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeCatalog is an in-memory ProductCatalog.
type fakeCatalog struct {
	products []Product
	listErr  error
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
}

func (c *fakeCatalog) ListAll(_ context.Context, filter ProductFilter) ([]Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]Product, 0, len(c.products))
	for i := range c.products {
		if filter.Matches(&c.products[i]) {
			out = append(out, c.products[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *fakeCatalog) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return c.ListAll(ctx, ProductFilter{Category: category})
}

// fakeDirectory is an in-memory CustomerDirectory and FeedbackSink.
type fakeDirectory struct {
	mu           sync.Mutex
	profiles     map[string]CustomerProfile
	purchases    map[string][]PurchaseRecord
	interactions map[string][]InteractionEvent

	profileErr     error
	purchaseErr    error
	interactionErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles:     make(map[string]CustomerProfile),
		purchases:    make(map[string][]PurchaseRecord),
		interactions: make(map[string][]InteractionEvent),
	}
}

func (d *fakeDirectory) GetProfile(_ context.Context, customerID string) (CustomerProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.profileErr != nil {
		return CustomerProfile{}, d.profileErr
	}
	p, ok := d.profiles[customerID]
	if !ok {
		return p, ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) GetPurchaseHistory(_ context.Context, customerID string, _ int) ([]PurchaseRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.purchaseErr != nil {
		return nil, d.purchaseErr
	}
	return append([]PurchaseRecord(nil), d.purchases[customerID]...), nil
}

func (d *fakeDirectory) GetInteractions(_ context.Context, customerID string, _ int) ([]InteractionEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.interactionErr != nil {
		return nil, d.interactionErr
	}
	return append([]InteractionEvent(nil), d.interactions[customerID]...), nil
}

func (d *fakeDirectory) AppendInteraction(_ context.Context, ev InteractionEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interactions[ev.CustomerID] = append(d.interactions[ev.CustomerID], ev)
	return nil
}

// stubGenerator returns canned items or an error.
type stubGenerator struct {
	kind       SignalKind
	items      []RecommendationItem
	err        error
	panicValue any
	applicable func(*SignalRequest) bool
	calls      atomic.Int32
}

func (g *stubGenerator) Kind() SignalKind { return g.kind }

func (g *stubGenerator) Applicable(req *SignalRequest) bool {
	if g.applicable == nil {
		return true
	}
	return g.applicable(req)
}

func (g *stubGenerator) Generate(context.Context, *SignalRequest) ([]RecommendationItem, error) {
	g.calls.Add(1)
	if g.panicValue != nil {
		panic(g.panicValue)
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.items, nil
}

// recordingResults is an in-memory ResultStore.
type recordingResults struct {
	mu    sync.Mutex
	saved []RecommendationResult
}

func (r *recordingResults) Save(_ context.Context, result *RecommendationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *result)
	return nil
}

func (r *recordingResults) History(_ context.Context, customerID string, limit int) ([]RecommendationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecommendationResult
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].CustomerID == customerID {
			out = append(out, r.saved[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func product(id, category string, price float64) Product {
	return Product{ID: id, Name: strings.ToUpper(id), Category: category, Price: price, Quantity: 10}
}

func itemsOf(score float64, ids ...string) []RecommendationItem {
	items := make([]RecommendationItem, len(ids))
	for i, id := range ids {
		items[i] = RecommendationItem{Product: Product{ID: id}, Score: score, Reason: "stub"}
	}
	return items
}

func itemIDs(items []RecommendationItem) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].Product.ID
	}
	return ids
}
