// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cache

import (
	"sync"
	"time"
)

type memoEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memo is a thread-safe in-process cache with a single TTL. Expired entries
// are dropped lazily on Get.
type Memo[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemo creates a memo whose entries live for ttl.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		entries: make(map[string]memoEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key.
func (m *Memo[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry[V]{value: value, expiresAt: m.now().Add(m.ttl)}
}

// Delete removes key.
func (m *Memo[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear removes every entry.
func (m *Memo[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoEntry[V])
}
