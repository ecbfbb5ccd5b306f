// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cost

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// memorySink collects written batches.
type memorySink struct {
	mu      sync.Mutex
	batches [][]Invocation
	err     error
}

func (m *memorySink) Write(_ context.Context, batch []Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := make([]Invocation, len(batch))
	copy(cp, batch)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *memorySink) all() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invocation
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

func TestRecordPricesInvocations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UnitCosts = map[string]float64{OpSimilarProducts: 0.01}
	sink := &memorySink{}
	tracker, err := NewTracker(cfg, sink, testLogger())
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	tracker.Record(Invocation{Operation: OpGenerateRecommendations, CustomerID: "c1"})
	tracker.Record(Invocation{Operation: OpGenerateRecommendations, CustomerID: "c1", CacheHit: true})
	tracker.Record(Invocation{Operation: OpSimilarProducts, CacheHit: true})

	got := drainQueue(tracker)
	if len(got) != 3 {
		t.Fatalf("queued %d invocations, want 3", len(got))
	}

	tests := []struct {
		name          string
		inv           Invocation
		wantEstimated float64
		wantSaved     float64
	}{
		{"miss pays unit cost", got[0], 0.002, 0},
		{"hit saves unit cost", got[1], 0, 0.002},
		{"operation override", got[2], 0, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.inv.EstimatedCost != tt.wantEstimated {
				t.Errorf("EstimatedCost = %v, want %v", tt.inv.EstimatedCost, tt.wantEstimated)
			}
			if tt.inv.SavedCost != tt.wantSaved {
				t.Errorf("SavedCost = %v, want %v", tt.inv.SavedCost, tt.wantSaved)
			}
			if tt.inv.ID == "" || tt.inv.Timestamp.IsZero() {
				t.Error("Record() did not stamp id and timestamp")
			}
		})
	}
}

func drainQueue(t *Tracker) []Invocation {
	var out []Invocation
	for {
		select {
		case inv := <-t.queue:
			out = append(out, inv)
		default:
			return out
		}
	}
}

func TestRecordDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.QueueSize = 2
	tracker, err := NewTracker(cfg, &memorySink{}, testLogger())
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		tracker.Record(Invocation{Operation: OpGenerateRecommendations})
	}

	recorded, dropped := tracker.Counts()
	if recorded != 5 || dropped != 3 {
		t.Errorf("Counts() = (%d, %d), want (5, 3)", recorded, dropped)
	}
}

func TestRecordDisabledAndNil(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Enabled = false
	tracker, err := NewTracker(cfg, nil, testLogger())
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	tracker.Record(Invocation{Operation: OpGenerateRecommendations})
	if recorded, _ := tracker.Counts(); recorded != 0 {
		t.Errorf("disabled tracker recorded %d invocations", recorded)
	}

	var nilTracker *Tracker
	nilTracker.Record(Invocation{Operation: OpGenerateRecommendations})
}

func TestServeFlushesOnBatchSizeAndShutdown(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.FlushInterval = time.Hour
	sink := &memorySink{}
	tracker, err := NewTracker(cfg, sink, testLogger())
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tracker.Serve(ctx) }()

	for i := 0; i < 3; i++ {
		tracker.Record(Invocation{Operation: OpGenerateRecommendations})
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.all()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(sink.all()); n < 2 {
		t.Fatalf("sink holds %d invocations before shutdown, want >= 2", n)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if n := len(sink.all()); n != 3 {
		t.Errorf("sink holds %d invocations after shutdown, want 3", n)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative unit cost", func(c *Config) { c.DefaultUnitCost = -1 }, true},
		{"negative override", func(c *Config) { c.UnitCosts = map[string]float64{"x": -0.1} }, true},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }, true},
		{"zero interval", func(c *Config) { c.FlushInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
