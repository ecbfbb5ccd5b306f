// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package signals

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type mockCatalog struct {
	products []recommend.Product
	err      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (recommend.Product, error) {
	if m.err != nil {
		return recommend.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return recommend.Product{}, recommend.ErrNotFound
}

func (m *mockCatalog) ListAll(_ context.Context, filter recommend.ProductFilter) ([]recommend.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []recommend.Product
	for i := range m.products {
		if filter.Matches(&m.products[i]) {
			out = append(out, m.products[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCatalog) ListByCategory(ctx context.Context, category string) ([]recommend.Product, error) {
	return m.ListAll(ctx, recommend.ProductFilter{Category: category})
}

type mockDirectory struct {
	profiles     map[string]recommend.CustomerProfile
	purchases    map[string][]recommend.PurchaseRecord
	interactions map[string][]recommend.InteractionEvent
}

func (m *mockDirectory) GetProfile(_ context.Context, id string) (recommend.CustomerProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return p, recommend.ErrNotFound
	}
	return p, nil
}

func (m *mockDirectory) GetPurchaseHistory(_ context.Context, id string, _ int) ([]recommend.PurchaseRecord, error) {
	return m.purchases[id], nil
}

func (m *mockDirectory) GetInteractions(_ context.Context, id string, _ int) ([]recommend.InteractionEvent, error) {
	return m.interactions[id], nil
}

func grocery() *mockCatalog {
	return &mockCatalog{products: []recommend.Product{
		{ID: "milk", Name: "Whole Milk", Category: "Dairy", Price: 3.00, Quantity: 40},
		{ID: "cream", Name: "Cream", Category: "Dairy", Price: 3.20, Quantity: 15},
		{ID: "cheese", Name: "Cheddar", Category: "Dairy", Price: 9.00, Quantity: 5},
		{ID: "bread", Name: "Sourdough", Category: "Bakery", Price: 4.00, Quantity: 25},
		{ID: "apple", Name: "Apple", Category: "Fruits", Price: 1.00, Quantity: 60},
		{ID: "juice", Name: "Orange Juice", Category: "Beverages", Price: 2.50, Supplier: "Acme", Quantity: 15},
	}}
}

func ids(items []recommend.RecommendationItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Product.ID
	}
	return out
}

func scoreOf(t *testing.T, items []recommend.RecommendationItem, id string) float64 {
	t.Helper()
	for i := range items {
		if items[i].Product.ID == id {
			return items[i].Score
		}
	}
	t.Fatalf("item %s not found in %v", id, ids(items))
	return 0
}

const dairyPair = 0.35 + 0.25*(1-0.20/3.10)

func TestRecentDistinct(t *testing.T) {
	t.Parallel()

	got := recentDistinct([]string{"a", "b", "a", "", "c", "c"}, 2)
	if !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Errorf("recentDistinct() = %v, want [c a]", got)
	}
}

func TestContentBased(t *testing.T) {
	t.Parallel()

	g := NewContentBased(grocery(), recommend.DefaultConfig().Content)
	req := &recommend.SignalRequest{
		CustomerID: "c1",
		Profile: &recommend.CustomerProfile{
			CustomerID: "c1",
			Preferences: recommend.Preferences{
				FavoriteCategories: []string{" dairy "},
				BrandPreferences:   []string{"ACME"},
				BudgetRange:        &recommend.BudgetRange{Min: 1, Max: 5},
			},
		},
		Limit: 10,
	}

	if !g.Applicable(req) {
		t.Fatal("Applicable() = false, want true for profile with preferences")
	}
	if g.Applicable(&recommend.SignalRequest{}) {
		t.Error("Applicable() = true, want false without profile")
	}

	items, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{"cream", "milk", "juice"}
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	if s := scoreOf(t, items, "milk"); s != 0.8 {
		t.Errorf("favorite category score = %v, want 0.8", s)
	}
	if s := scoreOf(t, items, "juice"); s != 0.75 {
		t.Errorf("preferred brand score = %v, want 0.75", s)
	}
	if items[0].Tags[0] != recommend.SignalContentBased.String() {
		t.Errorf("Tags = %v, want signal name first", items[0].Tags)
	}
}

func TestCollaborative(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	g := NewCollaborative(grocery(), recommend.NewScorer(cfg.Similarity), cfg.Collaborative, cfg.ComplementaryPerCategory)
	req := &recommend.SignalRequest{
		CustomerID: "c1",
		Purchases: []recommend.PurchaseRecord{
			{CustomerID: "c1", ProductID: "milk", Quantity: 1},
			{CustomerID: "c1", ProductID: "discontinued", Quantity: 1},
		},
		Limit: 10,
	}

	items, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []string{"apple", "bread", "cream"}
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	if s := scoreOf(t, items, "cream"); math.Abs(s-dairyPair*0.9) > 1e-9 {
		t.Errorf("similar score = %v, want %v", s, dairyPair*0.9)
	}
	if items[0].Reason != recommend.ReasonBoughtTogether || items[0].Score != 0.7 {
		t.Errorf("complementary item = %+v, want reason %q score 0.7", items[0], recommend.ReasonBoughtTogether)
	}
	for _, item := range items {
		if item.Product.ID == "milk" {
			t.Error("Generate() recommended an already purchased product")
		}
	}
}

func TestCollaborativeCatalogUnavailable(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	catalog := &mockCatalog{err: recommend.ErrUpstreamUnavailable}
	g := NewCollaborative(catalog, recommend.NewScorer(cfg.Similarity), cfg.Collaborative, 2)

	_, err := g.Generate(context.Background(), &recommend.SignalRequest{
		Purchases: []recommend.PurchaseRecord{{ProductID: "milk"}},
	})
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("Generate() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestInteractionBased(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	g := NewInteractionBased(grocery(), recommend.NewScorer(cfg.Similarity), cfg.Interaction)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	event := func(id string, typ recommend.InteractionType, minute int) recommend.InteractionEvent {
		return recommend.InteractionEvent{CustomerID: "c1", ProductID: id, Type: typ, Timestamp: base.Add(time.Duration(minute) * time.Minute)}
	}

	req := &recommend.SignalRequest{
		CustomerID: "c1",
		Interactions: []recommend.InteractionEvent{
			// Deliberately unordered.
			event("apple", recommend.InteractionRemoveFromCart, 3),
			event("milk", recommend.InteractionView, 0),
			event("bread", recommend.InteractionAddToCart, 1),
			event("apple", recommend.InteractionAddToCart, 2),
		},
		Limit: 10,
	}

	items, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{"bread", "cream"}
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	if items[0].Reason != ReasonInCart || items[0].Score != 0.85 {
		t.Errorf("cart item = %+v, want reason %q score 0.85", items[0], ReasonInCart)
	}
	if s := items[1].Score; math.Abs(s-dairyPair*0.6) > 1e-9 {
		t.Errorf("viewed-similar score = %v, want %v", s, dairyPair*0.6)
	}
}

func TestLeftInCart(t *testing.T) {
	t.Parallel()

	events := []recommend.InteractionEvent{
		{ProductID: "b", Type: recommend.InteractionAddToCart},
		{ProductID: "a", Type: recommend.InteractionAddToCart},
		{ProductID: "b", Type: recommend.InteractionRemoveFromCart},
		{ProductID: "c", Type: recommend.InteractionRemoveFromCart},
		{ProductID: "c", Type: recommend.InteractionAddToCart},
		{ProductID: "d", Type: recommend.InteractionView},
	}
	if got := leftInCart(events); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("leftInCart() = %v, want [a c]", got)
	}
}

func TestPopularity(t *testing.T) {
	t.Parallel()

	g := NewPopularity(grocery(), recommend.PopularityConfig{Score: 0.5, MaxCandidates: 4})
	items, err := g.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{"apple", "milk", "bread", "cream"}
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
	for _, item := range items {
		if item.Score != 0.5 || item.Reason != ReasonPopular {
			t.Errorf("item %s = %v/%q, want 0.5/%q", item.Product.ID, item.Score, item.Reason, ReasonPopular)
		}
	}
}

func TestAllRegistersEachSignalOnce(t *testing.T) {
	t.Parallel()

	seen := make(map[recommend.SignalKind]bool)
	for _, g := range All(grocery(), recommend.DefaultConfig()) {
		if seen[g.Kind()] {
			t.Errorf("All() registered %s twice", g.Kind())
		}
		seen[g.Kind()] = true
	}
	if len(seen) != 4 {
		t.Errorf("All() registered %d signals, want 4", len(seen))
	}
}

func TestEngineWithStandardGenerators(t *testing.T) {
	t.Parallel()

	catalog := grocery()
	dir := &mockDirectory{
		profiles: map[string]recommend.CustomerProfile{
			"c1": {CustomerID: "c1", Preferences: recommend.Preferences{FavoriteCategories: []string{"Dairy"}}},
		},
		purchases: map[string][]recommend.PurchaseRecord{
			"c1": {{CustomerID: "c1", ProductID: "milk", Quantity: 2}},
		},
		interactions: map[string][]recommend.InteractionEvent{
			"c1": {{CustomerID: "c1", ProductID: "bread", Type: recommend.InteractionAddToCart}},
		},
	}
	cfg := recommend.DefaultConfig()
	engine, err := recommend.NewEngine(cfg, dir, All(catalog, cfg), testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx := context.Background()

	t.Run("known customer", func(t *testing.T) {
		result, err := engine.Generate(ctx, "c1", nil, 4)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if result.AlgorithmType != recommend.AlgorithmCollaborative {
			t.Errorf("AlgorithmType = %s, want collaborative", result.AlgorithmType)
		}
		if len(result.Items) > 4 {
			t.Errorf("Items = %d, want at most 4", len(result.Items))
		}
		seen := make(map[string]bool)
		for i, item := range result.Items {
			if seen[item.Product.ID] {
				t.Errorf("duplicate product %s", item.Product.ID)
			}
			seen[item.Product.ID] = true
			if item.Score < 0 || item.Score > 1 {
				t.Errorf("item %s score %v outside [0, 1]", item.Product.ID, item.Score)
			}
			if i > 0 && item.Score > result.Items[i-1].Score {
				t.Errorf("items not sorted by score at %d", i)
			}
		}
	})

	t.Run("popularity fill keeps score order", func(t *testing.T) {
		result, err := engine.Generate(ctx, "c1", nil, 10)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if scoreOf(t, result.Items, "juice") != cfg.Popularity.Score {
			t.Errorf("juice score = %v, want popularity score %v", scoreOf(t, result.Items, "juice"), cfg.Popularity.Score)
		}
		for i := 1; i < len(result.Items); i++ {
			prev, cur := result.Items[i-1], result.Items[i]
			if cur.Score > prev.Score {
				t.Errorf("items not sorted by score: %s(%.2f) after %s(%.2f)",
					cur.Product.ID, cur.Score, prev.Product.ID, prev.Score)
			}
		}
	})

	t.Run("unknown customer", func(t *testing.T) {
		result, err := engine.Generate(ctx, "stranger", nil, 3)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !result.Fallback || result.Confidence != recommend.ConfidenceFallback {
			t.Errorf("result fallback=%v confidence=%v, want popularity fallback", result.Fallback, result.Confidence)
		}
		want := []string{"apple", "milk", "bread"}
		if got := ids(result.Items); !reflect.DeepEqual(got, want) {
			t.Errorf("Items = %v, want %v", got, want)
		}
		for _, item := range result.Items {
			if !strings.Contains(strings.Join(item.Tags, ","), "popularity") {
				t.Errorf("item %s tags = %v, want popularity tag", item.Product.ID, item.Tags)
			}
		}
	})
}
