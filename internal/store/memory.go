// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store backed by maps.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Item
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]Item)}
}

// Name implements Store.
func (m *MemoryStore) Name() string { return "memory" }

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrUnavailable
	}
	item, ok := m.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), item.Value...), nil
}

// Put implements Store.
//
//nolint:gocritic // Item is passed by value to match the Store interface
func (m *MemoryStore) Put(ctx context.Context, table string, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrUnavailable
	}
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string]Item)
		m.tables[table] = t
	}
	t[item.Key] = cloneItem(item)
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, table string, cond Condition) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrUnavailable
	}
	var out []Item
	for _, item := range m.tables[table] {
		if cond.Matches(&item) {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, table, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrUnavailable
	}
	delete(m.tables[table], key)
	return nil
}

// Close implements Store. Subsequent calls return ErrUnavailable.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of items in a table.
func (m *MemoryStore) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

var _ Store = (*MemoryStore)(nil)
