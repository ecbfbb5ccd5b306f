// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package retail

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/shelfsense/internal/recommend"
)

// Seed is the YAML document used to populate an empty store.
type Seed struct {
	Products     []SeedProduct     `yaml:"products"`
	Profiles     []SeedProfile     `yaml:"profiles"`
	Purchases    []SeedPurchase    `yaml:"purchases"`
	Interactions []SeedInteraction `yaml:"interactions"`
}

// SeedProduct is a catalog entry in a seed file.
type SeedProduct struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Price    float64  `yaml:"price"`
	Supplier string   `yaml:"supplier"`
	Location string   `yaml:"location"`
	Quantity int      `yaml:"quantity"`
	Tags     []string `yaml:"tags"`
}

// SeedProfile is a customer profile in a seed file.
type SeedProfile struct {
	CustomerID          string   `yaml:"customer_id"`
	DietaryRestrictions []string `yaml:"dietary_restrictions"`
	FavoriteCategories  []string `yaml:"favorite_categories"`
	BrandPreferences    []string `yaml:"brand_preferences"`
	BudgetMin           float64  `yaml:"budget_min"`
	BudgetMax           float64  `yaml:"budget_max"`
}

// SeedPurchase is a purchase in a seed file.
type SeedPurchase struct {
	ID         string    `yaml:"id"`
	CustomerID string    `yaml:"customer_id"`
	ProductID  string    `yaml:"product_id"`
	Quantity   int       `yaml:"quantity"`
	UnitPrice  float64   `yaml:"unit_price"`
	Date       time.Time `yaml:"date"`
}

// SeedInteraction is an interaction in a seed file.
type SeedInteraction struct {
	ID         string    `yaml:"id"`
	CustomerID string    `yaml:"customer_id"`
	ProductID  string    `yaml:"product_id"`
	Type       string    `yaml:"type"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// SeedStats counts the records applied from a seed.
type SeedStats struct {
	Products     int
	Profiles     int
	Purchases    int
	Interactions int
}

// LoadSeedFile reads and parses a seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%w: parse seed: %w", recommend.ErrMalformed, err)
	}
	return &seed, nil
}

// Apply writes every seed record through the catalog and directory.
func (s *Seed) Apply(ctx context.Context, catalog *StoreCatalog, directory *StoreDirectory) (SeedStats, error) {
	var stats SeedStats

	for _, sp := range s.Products {
		p := recommend.Product{
			ID:       sp.ID,
			Name:     sp.Name,
			Category: sp.Category,
			Price:    sp.Price,
			Supplier: sp.Supplier,
			Location: sp.Location,
			Quantity: sp.Quantity,
			Tags:     sp.Tags,
		}
		if err := catalog.PutProduct(ctx, &p); err != nil {
			return stats, err
		}
		stats.Products++
	}

	for _, sp := range s.Profiles {
		p := recommend.CustomerProfile{
			CustomerID: sp.CustomerID,
			Preferences: recommend.Preferences{
				DietaryRestrictions: sp.DietaryRestrictions,
				FavoriteCategories:  sp.FavoriteCategories,
				BrandPreferences:    sp.BrandPreferences,
			},
		}
		if sp.BudgetMin > 0 || sp.BudgetMax > 0 {
			p.Preferences.BudgetRange = &recommend.BudgetRange{Min: sp.BudgetMin, Max: sp.BudgetMax}
		}
		if err := directory.PutProfile(ctx, &p); err != nil {
			return stats, err
		}
		stats.Profiles++
	}

	for _, sp := range s.Purchases {
		rec := recommend.PurchaseRecord{
			ID:           sp.ID,
			CustomerID:   sp.CustomerID,
			ProductID:    sp.ProductID,
			Quantity:     sp.Quantity,
			UnitPrice:    sp.UnitPrice,
			PurchaseDate: sp.Date,
		}
		if err := directory.RecordPurchase(ctx, &rec); err != nil {
			return stats, err
		}
		stats.Purchases++
	}

	for _, si := range s.Interactions {
		ev := recommend.InteractionEvent{
			ID:         si.ID,
			CustomerID: si.CustomerID,
			ProductID:  si.ProductID,
			Type:       recommend.InteractionType(si.Type),
			Timestamp:  si.Timestamp,
		}
		if err := directory.AppendInteraction(ctx, ev); err != nil {
			return stats, err
		}
		stats.Interactions++
	}

	return stats, nil
}
