// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cost

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func setupSink(t *testing.T) *DuckDBSink {
	t.Helper()

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sink, err := NewDuckDBSink(context.Background(), db, testLogger())
	if err != nil {
		t.Fatalf("NewDuckDBSink() error = %v", err)
	}
	return sink
}

func TestDuckDBSinkSummary(t *testing.T) {
	sink := setupSink(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	batch := []Invocation{
		{ID: "1", Operation: OpGenerateRecommendations, CustomerID: "c1", Latency: 40 * time.Millisecond, EstimatedCost: 0.002, Timestamp: now},
		{ID: "2", Operation: OpGenerateRecommendations, CustomerID: "c1", CacheHit: true, Latency: 2 * time.Millisecond, SavedCost: 0.002, Timestamp: now},
		{ID: "3", Operation: OpSimilarProducts, Latency: 10 * time.Millisecond, EstimatedCost: 0.001, Timestamp: now},
		{ID: "old", Operation: OpSimilarProducts, EstimatedCost: 5, Timestamp: now.Add(-48 * time.Hour)},
	}
	if err := sink.Write(ctx, batch); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	// Replayed rows are ignored.
	if err := sink.Write(ctx, batch[:1]); err != nil {
		t.Fatalf("Write() replay error = %v", err)
	}

	summaries, err := sink.Summary(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Summary() returned %d operations, want 2", len(summaries))
	}

	gen := summaries[0]
	if gen.Operation != OpGenerateRecommendations {
		t.Fatalf("summaries[0].Operation = %q, want %q", gen.Operation, OpGenerateRecommendations)
	}
	if gen.Invocations != 2 || gen.CacheHits != 1 {
		t.Errorf("generate counts = (%d, %d), want (2, 1)", gen.Invocations, gen.CacheHits)
	}
	if gen.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", gen.HitRate)
	}
	if gen.AvgLatencyMS != 21 {
		t.Errorf("AvgLatencyMS = %v, want 21", gen.AvgLatencyMS)
	}
	if gen.SavedCost != 0.002 {
		t.Errorf("SavedCost = %v, want 0.002", gen.SavedCost)
	}

	similar := summaries[1]
	if similar.Invocations != 1 || similar.EstimatedCost != 0.001 {
		t.Errorf("similar = %+v, want 1 invocation costing 0.001", similar)
	}
}

func TestTrackerWritesThroughDuckDB(t *testing.T) {
	sink := setupSink(t)

	cfg := DefaultConfig()
	cfg.FlushInterval = 10 * time.Millisecond
	tracker, err := NewTracker(cfg, sink, testLogger())
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = tracker.Serve(ctx)
		close(done)
	}()

	tracker.Record(Invocation{Operation: OpComplementaryProducts, Latency: time.Millisecond})
	cancel()
	<-done

	summaries, err := sink.Summary(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Invocations != 1 {
		t.Errorf("Summary() = %+v, want one complementary invocation", summaries)
	}
}
