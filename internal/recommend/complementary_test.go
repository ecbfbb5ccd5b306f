// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestComplementaryCategories(t *testing.T) {
	t.Parallel()

	got := ComplementaryCategories(" DAIRY ")
	if len(got) != 3 || got[0] != "Bakery" {
		t.Errorf("ComplementaryCategories(Dairy) = %v, want Bakery first of 3", got)
	}

	got[0] = "mutated"
	if again := ComplementaryCategories("dairy"); again[0] != "Bakery" {
		t.Error("ComplementaryCategories() exposed its internal table")
	}

	if got := ComplementaryCategories("Toys"); got != nil {
		t.Errorf("ComplementaryCategories(Toys) = %v, want nil", got)
	}
}

func TestComplementary(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{products: []Product{
		product("milk", "Dairy", 3),
		product("bread-b", "Bakery", 4),
		product("bread-a", "Bakery", 4),
		product("bread-c", "Bakery", 4),
		product("apple", "Fruits", 1),
	}}
	milk := catalog.products[0]

	got, err := Complementary(context.Background(), catalog, &milk, 2)
	if err != nil {
		t.Fatalf("Complementary() error = %v, want nil", err)
	}
	want := []string{"bread-a", "bread-b", "apple"}
	if len(got) != len(want) {
		t.Fatalf("Complementary() = %d products, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Complementary()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestComplementaryPropagatesUnavailable(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{listErr: ErrUpstreamUnavailable}
	p := product("milk", "Dairy", 3)

	_, err := Complementary(context.Background(), catalog, &p, 2)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("Complementary() error = %v, want ErrUpstreamUnavailable", err)
	}
}
