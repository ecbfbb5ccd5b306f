// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cache

import (
	"testing"
	"time"
)

func TestMemoExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMemo[[]string](time.Minute)
	m.now = clock.Now

	m.Set("all", []string{"p1", "p2"})
	if got, ok := m.Get("all"); !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, %v; want hit", got, ok)
	}

	clock.Advance(2 * time.Minute)
	if _, ok := m.Get("all"); ok {
		t.Error("Get() after ttl = hit, want miss")
	}
}

func TestMemoDeleteAndClear(t *testing.T) {
	t.Parallel()

	m := NewMemo[int](time.Hour)
	m.Set("a", 1)
	m.Set("b", 2)

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("Get(a) after Delete = hit")
	}
	m.Clear()
	if _, ok := m.Get("b"); ok {
		t.Error("Get(b) after Clear = hit")
	}
}
