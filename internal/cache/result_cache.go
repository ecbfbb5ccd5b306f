// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/metrics"
	"github.com/tomtom215/shelfsense/internal/store"
)

// Index names written on fingerprinted entries.
const (
	indexCustomer = "customer"
	indexScope    = "scope"
)

// Entry is the stored form of a cached payload.
type Entry struct {
	Key            string          `json:"key"`
	CustomerID     string          `json:"customer_id,omitempty"`
	AnalysisType   AnalysisType    `json:"analysis_type,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
	HitCount       int64           `json:"hit_count"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	StoreErrors int64 `json:"store_errors"`
}

// HitRate returns hits / (hits + misses) as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// ResultCache is the fingerprint-keyed analysis cache.
type ResultCache struct {
	store  store.Store
	config Config
	logger zerolog.Logger
	now    func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	storeErrors atomic.Int64
}

// Option customizes a ResultCache.
type Option func(*ResultCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		c.now = now
	}
}

// NewResultCache creates a cache over s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResultCache(s store.Store, cfg Config, logger zerolog.Logger, opts ...Option) (*ResultCache, error) {
	if s == nil {
		return nil, errors.New("cache: store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	c := &ResultCache{
		store:  s,
		config: cfg,
		logger: logger.With().Str("component", "cache").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached payload for d, or false on a miss.
func (c *ResultCache) Get(ctx context.Context, d Descriptor) ([]byte, bool) {
	policy := c.config.policy(d.AnalysisType)
	if !policy.Enabled {
		return nil, false
	}

	key := Key(d)
	entry, ok := c.load(ctx, c.config.Table, key, string(d.AnalysisType))
	if !ok {
		return nil, false
	}

	entry.HitCount++
	entry.LastAccessedAt = c.now()
	// Last writer wins; a lost hit count is acceptable.
	if err := c.write(ctx, c.config.Table, &entry, entryIndexes(d.CustomerID, d.AnalysisType)); err != nil {
		c.storeError("touch", err)
	}

	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(string(d.AnalysisType)).Inc()
	c.logger.Debug().
		Str("customer_id", d.CustomerID).
		Str("analysis_type", string(d.AnalysisType)).
		Int64("hit_count", entry.HitCount).
		Msg("cache hit")
	return entry.Payload, true
}

// Lookup returns the stored entry for d without touching hit statistics.
func (c *ResultCache) Lookup(ctx context.Context, d Descriptor) (Entry, error) {
	data, err := c.store.Get(ctx, c.config.Table, Key(d))
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, nil
}

// Set stores payload for d and trims the customer's entries to the cap.
func (c *ResultCache) Set(ctx context.Context, d Descriptor, payload []byte) {
	policy := c.config.policy(d.AnalysisType)
	if !policy.Enabled {
		return
	}

	now := c.now()
	entry := Entry{
		Key:            Key(d),
		CustomerID:     d.CustomerID,
		AnalysisType:   d.AnalysisType,
		Payload:        append(json.RawMessage(nil), payload...),
		CreatedAt:      now,
		ExpiresAt:      now.Add(policy.TTL),
		LastAccessedAt: now,
	}
	if err := c.write(ctx, c.config.Table, &entry, entryIndexes(d.CustomerID, d.AnalysisType)); err != nil {
		c.storeError("set", err)
		return
	}

	c.enforceCap(ctx, d.CustomerID, d.AnalysisType, policy.MaxEntries)
}

// enforceCap deletes the oldest entries of (customer, type) beyond max.
func (c *ResultCache) enforceCap(ctx context.Context, customerID string, t AnalysisType, maxEntries int) {
	items, err := c.store.Query(ctx, c.config.Table, store.ByIndex(indexScope, scopeValue(customerID, t)))
	if err != nil {
		c.storeError("cleanup", err)
		return
	}
	if len(items) <= maxEntries {
		return
	}

	entries := decodeEntries(items)
	// Newest first; key breaks ties so cleanup is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Key < entries[j].Key
	})

	for _, e := range entries[min(maxEntries, len(entries)):] {
		if err := c.store.Delete(ctx, c.config.Table, e.Key); err != nil {
			c.storeError("cleanup", err)
			continue
		}
		c.evict(string(t), "cap")
	}
}

// InvalidateCustomer deletes every fingerprinted entry for customerID across
// all analysis types and returns the number removed.
func (c *ResultCache) InvalidateCustomer(ctx context.Context, customerID string) (int, error) {
	items, err := c.store.Query(ctx, c.config.Table, store.ByIndex(indexCustomer, customerID))
	if err != nil {
		c.storeError("invalidate", err)
		return 0, fmt.Errorf("query customer entries: %w", err)
	}

	removed := 0
	var firstErr error
	for _, e := range decodeEntries(items) {
		if err := c.store.Delete(ctx, c.config.Table, e.Key); err != nil {
			c.storeError("invalidate", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
		c.evict(string(e.AnalysisType), "invalidated")
	}

	c.logger.Info().Str("customer_id", customerID).Int("removed", removed).Msg("customer cache invalidated")
	return removed, firstErr
}

// GetKey returns an ad-hoc cached value.
func (c *ResultCache) GetKey(ctx context.Context, key string) ([]byte, bool) {
	entry, ok := c.load(ctx, c.config.AdHocTable, key, "adhoc")
	if !ok {
		return nil, false
	}
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues("adhoc").Inc()
	return entry.Payload, true
}

// SetKey stores an ad-hoc value. A non-positive ttl uses DefaultTTL.
func (c *ResultCache) SetKey(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	now := c.now()
	entry := Entry{
		Key:            key,
		Payload:        append(json.RawMessage(nil), value...),
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
	if err := c.write(ctx, c.config.AdHocTable, &entry, nil); err != nil {
		c.storeError("set", err)
	}
}

// Sweep deletes expired entries from both tables and returns how many were
// removed.
func (c *ResultCache) Sweep(ctx context.Context) (int, error) {
	now := c.now()
	removed := 0
	for _, table := range []string{c.config.Table, c.config.AdHocTable} {
		items, err := c.store.Query(ctx, table, store.All())
		if err != nil {
			c.storeError("sweep", err)
			return removed, fmt.Errorf("scan %s: %w", table, err)
		}
		for _, e := range decodeEntries(items) {
			if !now.After(e.ExpiresAt) {
				continue
			}
			if err := c.store.Delete(ctx, table, e.Key); err != nil {
				c.storeError("sweep", err)
				continue
			}
			removed++
			c.evict(analysisLabel(e), "expired")
		}
	}
	return removed, nil
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		StoreErrors: c.storeErrors.Load(),
	}
}

// load reads and validates an entry, deleting it if expired or corrupt.
func (c *ResultCache) load(ctx context.Context, table, key, label string) (Entry, bool) {
	var entry Entry

	data, err := c.store.Get(ctx, table, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.storeError("get", err)
		}
		c.miss(label)
		return entry, false
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed cache entry")
		_ = c.store.Delete(ctx, table, key)
		c.miss(label)
		return entry, false
	}

	if c.now().After(entry.ExpiresAt) {
		if err := c.store.Delete(ctx, table, key); err != nil {
			c.storeError("delete", err)
		}
		c.evict(label, "expired")
		c.miss(label)
		return entry, false
	}

	return entry, true
}

func (c *ResultCache) write(ctx context.Context, table string, entry *Entry, indexes map[string]string) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Put(ctx, table, store.Item{Key: entry.Key, Value: data, Indexes: indexes})
}

func (c *ResultCache) miss(label string) {
	c.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(label).Inc()
}

func (c *ResultCache) evict(label, reason string) {
	c.evictions.Add(1)
	metrics.CacheEvictions.WithLabelValues(label, reason).Inc()
}

func (c *ResultCache) storeError(op string, err error) {
	c.storeErrors.Add(1)
	metrics.CacheErrors.WithLabelValues(op).Inc()
	c.logger.Warn().Err(err).Str("operation", op).Msg("cache store error, degrading to miss")
}

func entryIndexes(customerID string, t AnalysisType) map[string]string {
	return map[string]string{
		indexCustomer: customerID,
		indexScope:    scopeValue(customerID, t),
	}
}

// decodeEntries decodes store items, skipping any that fail to parse.
func decodeEntries(items []store.Item) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal(item.Value, &e); err != nil {
			continue
		}
		e.Key = item.Key
		entries = append(entries, e)
	}
	return entries
}

func analysisLabel(e Entry) string {
	if e.AnalysisType == "" {
		return "adhoc"
	}
	return string(e.AnalysisType)
}
