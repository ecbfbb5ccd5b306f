// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package store provides the generic persistent key-value store shared by the
// result cache, the recommendation log and the retail catalog.
//
// Records live in named tables. Each record may carry secondary index values
// (for example "customer" -> "c-42") that Query can filter on. No
// transactional guarantees are made across keys.
//
// Backends:
//   - MemoryStore: process-local maps, used in tests and single-node setups
//   - BadgerStore: embedded BadgerDB with index keys
//   - RedisStore: shared Redis with SET-based indexes
//
// Any backend can be wrapped with NewBreakerStore for circuit breaking.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("store: key not found")

	// ErrUnavailable is returned when the backend cannot be reached or the
	// circuit breaker is open.
	ErrUnavailable = errors.New("store: unavailable")
)

// Item is a single stored record.
type Item struct {
	// Key is unique within a table.
	Key string `json:"key"`

	// Value is the opaque payload.
	Value []byte `json:"value"`

	// Indexes maps index name to the value this record is filed under.
	Indexes map[string]string `json:"indexes,omitempty"`
}

// Condition selects records in Query. The zero Condition matches every
// record in the table.
type Condition struct {
	Index string
	Value string
}

// ByIndex returns a Condition matching records filed under index=value.
func ByIndex(index, value string) Condition {
	return Condition{Index: index, Value: value}
}

// All returns a Condition matching every record in a table.
func All() Condition {
	return Condition{}
}

// Matches reports whether an item satisfies the condition.
func (c Condition) Matches(item *Item) bool {
	if c.Index == "" {
		return true
	}
	return item.Indexes[c.Index] == c.Value
}

// Store is the persistent store contract.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, table, key string) ([]byte, error)

	// Put writes (or overwrites) an item.
	Put(ctx context.Context, table string, item Item) error

	// Query returns every item matching cond, in no particular order.
	Query(ctx context.Context, table string, cond Condition) ([]Item, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, table, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON fetches key and decodes it into T.
func GetJSON[T any](ctx context.Context, s Store, table, key string) (T, error) {
	var out T
	data, err := s.Get(ctx, table, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", table, key, err)
	}
	return out, nil
}

// PutJSON encodes v and writes it under key with the given indexes.
func PutJSON(ctx context.Context, s Store, table, key string, v any, indexes map[string]string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	return s.Put(ctx, table, Item{Key: key, Value: data, Indexes: indexes})
}

// cloneItem copies an item so callers never share backing arrays with the store.
func cloneItem(item Item) Item {
	out := Item{Key: item.Key}
	if item.Value != nil {
		out.Value = append([]byte(nil), item.Value...)
	}
	if len(item.Indexes) > 0 {
		out.Indexes = make(map[string]string, len(item.Indexes))
		for k, v := range item.Indexes {
			out.Indexes[k] = v
		}
	}
	return out
}
