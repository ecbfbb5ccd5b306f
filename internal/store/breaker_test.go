// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// flakyStore fails every call while failing is set.
type flakyStore struct {
	*MemoryStore
	failing atomic.Bool
	calls   atomic.Int32
}

func (f *flakyStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.failing.Load() {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.Get(ctx, table, key)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	inner.failing.Store(true)

	b := NewBreakerStore(inner, BreakerConfig{Name: "test-open", MinRequests: 4, Timeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := b.Get(ctx, "t", "k"); err == nil {
			t.Fatalf("Get() #%d error = nil, want failure", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	before := inner.calls.Load()
	_, err := b.Get(ctx, "t", "k")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() with open breaker error = %v, want ErrUnavailable", err)
	}
	if inner.calls.Load() != before {
		t.Error("open breaker must not call the backend")
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	t.Parallel()

	b := NewBreakerStore(NewMemoryStore(), BreakerConfig{Name: "test-notfound", MinRequests: 2})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := b.Get(ctx, "t", "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestBreakerPassesThroughValues(t *testing.T) {
	t.Parallel()

	b := NewBreakerStore(NewMemoryStore(), BreakerConfig{Name: "test-pass"})
	ctx := context.Background()

	if err := b.Put(ctx, "t", Item{Key: "k", Value: []byte("v"), Indexes: map[string]string{"i": "1"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := b.Get(ctx, "t", "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, err)
	}
	items, err := b.Query(ctx, "t", ByIndex("i", "1"))
	if err != nil || len(items) != 1 {
		t.Errorf("Query() = %v, %v", items, err)
	}
	empty, err := b.Query(ctx, "t", ByIndex("i", "2"))
	if err != nil || len(empty) != 0 {
		t.Errorf("Query(no match) = %v, %v", empty, err)
	}
	if err := b.Delete(ctx, "t", "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}
