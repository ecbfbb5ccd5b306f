// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package retail

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/store"
)

// StoreDirectory is a recommend.CustomerDirectory and recommend.FeedbackSink
// over a persistent store. Purchases and interactions are one record each,
// indexed by customer.
type StoreDirectory struct {
	store  store.Store
	logger zerolog.Logger
}

// NewStoreDirectory creates a directory over s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreDirectory(s store.Store, logger zerolog.Logger) *StoreDirectory {
	return &StoreDirectory{
		store:  s,
		logger: logger.With().Str("component", "directory").Logger(),
	}
}

// GetProfile returns the customer's profile.
func (d *StoreDirectory) GetProfile(ctx context.Context, customerID string) (recommend.CustomerProfile, error) {
	p, err := store.GetJSON[recommend.CustomerProfile](ctx, d.store, TableProfiles, customerID)
	if err != nil {
		return p, fmt.Errorf("profile %s: %w", customerID, translate(err))
	}
	return p, nil
}

// PutProfile creates or replaces a profile.
func (d *StoreDirectory) PutProfile(ctx context.Context, p *recommend.CustomerProfile) error {
	if strings.TrimSpace(p.CustomerID) == "" {
		return fmt.Errorf("%w: customer id is required", recommend.ErrInvalidRequest)
	}
	if err := store.PutJSON(ctx, d.store, TableProfiles, p.CustomerID, p, nil); err != nil {
		return fmt.Errorf("put profile %s: %w", p.CustomerID, translate(err))
	}
	return nil
}

// GetPurchaseHistory returns up to limit most recent purchases, oldest first.
func (d *StoreDirectory) GetPurchaseHistory(ctx context.Context, customerID string, limit int) ([]recommend.PurchaseRecord, error) {
	items, err := d.store.Query(ctx, TablePurchases, store.ByIndex(indexCustomer, customerID))
	if err != nil {
		return nil, fmt.Errorf("purchases of %s: %w", customerID, translate(err))
	}

	records := decodeAll[recommend.PurchaseRecord](d, items)
	sort.Slice(records, func(i, j int) bool {
		if !records[i].PurchaseDate.Equal(records[j].PurchaseDate) {
			return records[i].PurchaseDate.Before(records[j].PurchaseDate)
		}
		return records[i].ID < records[j].ID
	})
	return tail(records, limit), nil
}

// RecordPurchase appends a purchase. An empty id is generated.
func (d *StoreDirectory) RecordPurchase(ctx context.Context, rec *recommend.PurchaseRecord) error {
	if strings.TrimSpace(rec.CustomerID) == "" || strings.TrimSpace(rec.ProductID) == "" {
		return fmt.Errorf("%w: customer id and product id are required", recommend.ErrInvalidRequest)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := store.PutJSON(ctx, d.store, TablePurchases, rec.ID, rec, map[string]string{
		indexCustomer: rec.CustomerID,
	}); err != nil {
		return fmt.Errorf("record purchase: %w", translate(err))
	}
	return nil
}

// GetInteractions returns up to limit most recent interactions, oldest first.
func (d *StoreDirectory) GetInteractions(ctx context.Context, customerID string, limit int) ([]recommend.InteractionEvent, error) {
	items, err := d.store.Query(ctx, TableInteractions, store.ByIndex(indexCustomer, customerID))
	if err != nil {
		return nil, fmt.Errorf("interactions of %s: %w", customerID, translate(err))
	}

	events := decodeAll[recommend.InteractionEvent](d, items)
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID < events[j].ID
	})
	return tail(events, limit), nil
}

// AppendInteraction stores an interaction event. An empty id is generated.
func (d *StoreDirectory) AppendInteraction(ctx context.Context, ev recommend.InteractionEvent) error {
	if !ev.Type.Valid() {
		return fmt.Errorf("%w: unknown interaction type %q", recommend.ErrInvalidRequest, ev.Type)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if err := store.PutJSON(ctx, d.store, TableInteractions, ev.ID, ev, map[string]string{
		indexCustomer: ev.CustomerID,
	}); err != nil {
		return fmt.Errorf("append interaction: %w", translate(err))
	}
	return nil
}

func decodeAll[T any](d *StoreDirectory, items []store.Item) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item.Value, &v); err != nil {
			d.logger.Warn().Err(err).Str("key", item.Key).Msg("skipping malformed record")
			continue
		}
		out = append(out, v)
	}
	return out
}

// tail returns the last n elements of s. A non-positive n returns s.
func tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
