// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package storage persists generated recommendation results.
//
// Results are written to a persistent store table independent of the
// response cache. Each record carries a soft expiry; the janitor flips
// records past their expiry to status expired so history stays available,
// and deletes them once they are older than the retention window.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/store"
)

// DefaultTable is the store table holding results.
const DefaultTable = "recommendation_results"

const indexCustomer = "customer"

// ResultLog is a store-backed recommend.ResultStore.
type ResultLog struct {
	store     store.Store
	table     string
	retention time.Duration
	logger    zerolog.Logger
}

// ResultLogOption configures a ResultLog.
type ResultLogOption func(*ResultLog)

// WithRetention deletes results once they are more than d past their
// expiry. Zero keeps expired results forever.
func WithRetention(d time.Duration) ResultLogOption {
	return func(l *ResultLog) {
		if d > 0 {
			l.retention = d
		}
	}
}

// NewResultLog creates a result log over s. An empty table uses DefaultTable.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResultLog(s store.Store, table string, logger zerolog.Logger, opts ...ResultLogOption) *ResultLog {
	if table == "" {
		table = DefaultTable
	}
	l := &ResultLog{
		store:  s,
		table:  table,
		logger: logger.With().Str("component", "result_log").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Save persists result, indexed by customer.
func (l *ResultLog) Save(ctx context.Context, result *recommend.RecommendationResult) error {
	if result.ID == "" {
		return errors.New("result id is required")
	}
	if err := store.PutJSON(ctx, l.store, l.table, result.ID, result, map[string]string{
		indexCustomer: result.CustomerID,
	}); err != nil {
		return fmt.Errorf("save result %s: %w", result.ID, err)
	}
	return nil
}

// Get returns a single result by id.
func (l *ResultLog) Get(ctx context.Context, id string) (recommend.RecommendationResult, error) {
	result, err := store.GetJSON[recommend.RecommendationResult](ctx, l.store, l.table, id)
	if errors.Is(err, store.ErrNotFound) {
		return result, fmt.Errorf("result %s: %w", id, recommend.ErrNotFound)
	}
	return result, err
}

// History returns the customer's results, newest first. A non-positive limit
// returns all of them.
func (l *ResultLog) History(ctx context.Context, customerID string, limit int) ([]recommend.RecommendationResult, error) {
	items, err := l.store.Query(ctx, l.table, store.ByIndex(indexCustomer, customerID))
	if err != nil {
		return nil, fmt.Errorf("query results for %s: %w", customerID, err)
	}

	results := l.decode(items)
	sort.Slice(results, func(i, j int) bool {
		if !results[i].GeneratedAt.Equal(results[j].GeneratedAt) {
			return results[i].GeneratedAt.After(results[j].GeneratedAt)
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ExpireStale marks every active result whose expiry is before now as
// expired, deletes results past the retention window, and returns how many
// records were expired or deleted.
func (l *ResultLog) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	items, err := l.store.Query(ctx, l.table, store.All())
	if err != nil {
		return 0, fmt.Errorf("scan results: %w", err)
	}

	expired, purged := 0, 0
	for _, r := range l.decode(items) {
		if !now.After(r.ExpiresAt) {
			continue
		}
		if l.retention > 0 && now.After(r.ExpiresAt.Add(l.retention)) {
			if err := l.store.Delete(ctx, l.table, r.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return expired + purged, fmt.Errorf("delete result %s: %w", r.ID, err)
			}
			purged++
			continue
		}
		if r.Status != recommend.StatusActive {
			continue
		}
		r.Status = recommend.StatusExpired
		if err := l.Save(ctx, &r); err != nil {
			return expired + purged, err
		}
		expired++
	}

	if expired+purged > 0 {
		l.logger.Debug().
			Int("expired", expired).
			Int("purged", purged).
			Msg("expired stale results")
	}
	return expired + purged, nil
}

func (l *ResultLog) decode(items []store.Item) []recommend.RecommendationResult {
	results := make([]recommend.RecommendationResult, 0, len(items))
	for _, item := range items {
		var r recommend.RecommendationResult
		if err := json.Unmarshal(item.Value, &r); err != nil {
			l.logger.Warn().Err(err).Str("key", item.Key).Msg("skipping malformed result record")
			continue
		}
		results = append(results, r)
	}
	return results
}
