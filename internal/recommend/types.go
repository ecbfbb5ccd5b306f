// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"strings"
	"time"
)

// Product is a catalog item snapshot.
type Product struct {
	// ID is the unique product identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Category is the catalog category (e.g. Dairy, Bakery).
	Category string `json:"category"`

	// Price is the unit price. Non-positive prices are treated as unknown.
	Price float64 `json:"price"`

	// Supplier is the supplier or brand.
	Supplier string `json:"supplier"`

	// Location is the aisle or shelf bucket.
	Location string `json:"location"`

	// Quantity is the quantity on hand.
	Quantity int `json:"quantity"`

	// Tags are free-form labels (organic, gluten-free, ...).
	Tags []string `json:"tags,omitempty"`
}

// BudgetRange bounds acceptable prices. A zero Max means no upper bound.
type BudgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price falls inside the range.
func (b BudgetRange) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Max <= 0 || price <= b.Max
}

// Preferences are a customer's stated shopping preferences.
type Preferences struct {
	DietaryRestrictions []string     `json:"dietary_restrictions,omitempty"`
	FavoriteCategories  []string     `json:"favorite_categories,omitempty"`
	BudgetRange         *BudgetRange `json:"budget_range,omitempty"`
	BrandPreferences    []string     `json:"brand_preferences,omitempty"`
}

// CustomerProfile holds the preferences of one customer.
type CustomerProfile struct {
	CustomerID  string      `json:"customer_id"`
	Preferences Preferences `json:"preferences"`
}

// HasPreferences reports whether the profile carries anything the
// content-based signal can use.
func (p *CustomerProfile) HasPreferences() bool {
	if p == nil {
		return false
	}
	return len(p.Preferences.FavoriteCategories) > 0 || len(p.Preferences.BrandPreferences) > 0
}

// PurchaseRecord is one line of purchase history.
type PurchaseRecord struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	PurchaseDate time.Time `json:"purchase_date"`
}

// InteractionType classifies a customer interaction.
type InteractionType string

const (
	// InteractionView is a product page view.
	InteractionView InteractionType = "view"

	// InteractionAddToCart is a cart addition.
	InteractionAddToCart InteractionType = "add_to_cart"

	// InteractionRemoveFromCart is a cart removal.
	InteractionRemoveFromCart InteractionType = "remove_from_cart"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionAddToCart, InteractionRemoveFromCart:
		return true
	default:
		return false
	}
}

// InteractionEvent is a single customer interaction with a product.
type InteractionEvent struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	ProductID  string          `json:"product_id"`
	Type       InteractionType `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
}

// RecommendationItem is one ranked suggestion.
type RecommendationItem struct {
	Product Product  `json:"product"`
	Score   float64  `json:"score"`
	Reason  string   `json:"reason"`
	Tags    []string `json:"tags,omitempty"`
}

// AlgorithmType labels which signal source produced a result.
type AlgorithmType string

const (
	AlgorithmCollaborative    AlgorithmType = "collaborative"
	AlgorithmContentBased     AlgorithmType = "content-based"
	AlgorithmInteractionBased AlgorithmType = "interaction-based"
	AlgorithmPopularity       AlgorithmType = "popularity"
	AlgorithmHybrid           AlgorithmType = "hybrid"
)

// ResultStatus is the lifecycle state of a persisted result.
type ResultStatus string

const (
	StatusActive  ResultStatus = "active"
	StatusExpired ResultStatus = "expired"
)

// RecommendationResult is the output of one generation request.
type RecommendationResult struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customer_id"`
	Items         []RecommendationItem `json:"items"`
	AlgorithmType AlgorithmType        `json:"algorithm_type"`
	Confidence    float64              `json:"confidence"`
	Context       map[string]string    `json:"context,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
	ExpiresAt     time.Time            `json:"expires_at"`
	Status        ResultStatus         `json:"status"`

	// Fallback is set when every personalized signal failed.
	Fallback bool `json:"fallback,omitempty"`

	// CacheHit is set when the result was served from the result cache.
	CacheHit bool `json:"cache_hit"`
}

// SimilarProduct is a product scored against a target.
type SimilarProduct struct {
	Product Product  `json:"product"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// SignalKind identifies a signal generator.
type SignalKind int

const (
	SignalCollaborative SignalKind = iota
	SignalContentBased
	SignalInteractionBased
	SignalPopularity
)

// String returns the signal name used in logs, metrics and item tags.
func (k SignalKind) String() string {
	switch k {
	case SignalCollaborative:
		return "collaborative"
	case SignalContentBased:
		return "content-based"
	case SignalInteractionBased:
		return "interaction-based"
	case SignalPopularity:
		return "popularity"
	default:
		return "unknown"
	}
}

// Personal reports whether the signal uses customer-specific input.
func (k SignalKind) Personal() bool {
	return k != SignalPopularity
}

// ProductFilter narrows ListAll results. Zero values disable a clause.
type ProductFilter struct {
	Category    string  `json:"category,omitempty"`
	MinPrice    float64 `json:"min_price,omitempty"`
	MaxPrice    float64 `json:"max_price,omitempty"`
	InStockOnly bool    `json:"in_stock_only,omitempty"`
}

// Matches reports whether p passes the filter.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, p.Category) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.InStockOnly && p.Quantity <= 0 {
		return false
	}
	return true
}

// ProductCatalog is the read side of the product catalog.
type ProductCatalog interface {
	// GetProduct returns ErrNotFound for unknown ids.
	GetProduct(ctx context.Context, id string) (Product, error)

	// ListAll returns every product passing filter, sorted by id.
	ListAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// ListByCategory returns products in category, sorted by id.
	ListByCategory(ctx context.Context, category string) ([]Product, error)
}

// CustomerDirectory supplies customer profiles and history.
type CustomerDirectory interface {
	// GetProfile returns ErrNotFound when the customer has no profile.
	GetProfile(ctx context.Context, customerID string) (CustomerProfile, error)

	// GetPurchaseHistory returns up to limit most recent purchases in
	// chronological order.
	GetPurchaseHistory(ctx context.Context, customerID string, limit int) ([]PurchaseRecord, error)

	// GetInteractions returns up to limit most recent interactions in
	// chronological order.
	GetInteractions(ctx context.Context, customerID string, limit int) ([]InteractionEvent, error)
}

// FeedbackSink appends interaction events for future requests.
type FeedbackSink interface {
	AppendInteraction(ctx context.Context, event InteractionEvent) error
}

// ResultStore persists generated results.
type ResultStore interface {
	Save(ctx context.Context, result *RecommendationResult) error
	History(ctx context.Context, customerID string, limit int) ([]RecommendationResult, error)
}

// SignalRequest is the input handed to every generator.
type SignalRequest struct {
	CustomerID   string
	Profile      *CustomerProfile
	Purchases    []PurchaseRecord
	Interactions []InteractionEvent
	Limit        int
}

// Generator produces candidate items for one signal.
type Generator interface {
	// Kind identifies the signal.
	Kind() SignalKind

	// Applicable reports whether req carries the input this signal consumes.
	Applicable(req *SignalRequest) bool

	// Generate returns candidate items. Items need not be unique or sorted.
	Generate(ctx context.Context, req *SignalRequest) ([]RecommendationItem, error)
}
