// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cost

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"
)

const createInvocationsTable = `
CREATE TABLE IF NOT EXISTS cost_invocations (
	id             VARCHAR PRIMARY KEY,
	operation      VARCHAR NOT NULL,
	customer_id    VARCHAR,
	analysis_type  VARCHAR,
	cache_hit      BOOLEAN NOT NULL,
	latency_ms     DOUBLE NOT NULL,
	estimated_cost DOUBLE NOT NULL,
	saved_cost     DOUBLE NOT NULL,
	recorded_at    TIMESTAMP NOT NULL
)`

const insertInvocation = `
INSERT INTO cost_invocations (
	id, operation, customer_id, analysis_type, cache_hit,
	latency_ms, estimated_cost, saved_cost, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

const summaryQuery = `
SELECT
	operation,
	COUNT(*)                                     AS invocations,
	COUNT(*) FILTER (WHERE cache_hit)            AS cache_hits,
	COALESCE(AVG(latency_ms), 0)                 AS avg_latency_ms,
	COALESCE(SUM(estimated_cost), 0)             AS estimated_cost,
	COALESCE(SUM(saved_cost), 0)                 AS saved_cost
FROM cost_invocations
WHERE recorded_at >= ?
GROUP BY operation
ORDER BY operation`

// OperationSummary aggregates invocations of one operation.
type OperationSummary struct {
	Operation     string  `json:"operation"`
	Invocations   int64   `json:"invocations"`
	CacheHits     int64   `json:"cache_hits"`
	HitRate       float64 `json:"hit_rate"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
	EstimatedCost float64 `json:"estimated_cost"`
	SavedCost     float64 `json:"saved_cost"`
}

// DuckDBSink stores invocations in a DuckDB table.
type DuckDBSink struct {
	db     *sql.DB
	owned  bool
	logger zerolog.Logger
}

// OpenDuckDBSink opens (or creates) a database at path. An empty path opens
// an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenDuckDBSink(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBSink, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	sink, err := NewDuckDBSink(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sink.owned = true
	return sink, nil
}

// NewDuckDBSink uses an existing connection and creates the table if needed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDuckDBSink(ctx context.Context, db *sql.DB, logger zerolog.Logger) (*DuckDBSink, error) {
	if db == nil {
		return nil, errors.New("duckdb: connection is required")
	}
	if _, err := db.ExecContext(ctx, createInvocationsTable); err != nil {
		return nil, fmt.Errorf("create cost_invocations: %w", err)
	}
	return &DuckDBSink{
		db:     db,
		logger: logger.With().Str("component", "cost_sink").Logger(),
	}, nil
}

// Write inserts batch in a single transaction. Rows with an existing id are
// skipped.
func (s *DuckDBSink) Write(ctx context.Context, batch []Invocation) (err error) {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn().Err(rbErr).Msg("failed to roll back cost batch")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertInvocation)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Msg("failed to close prepared statement")
		}
	}()

	for i := range batch {
		inv := &batch[i]
		if _, err = stmt.ExecContext(ctx,
			inv.ID, inv.Operation, inv.CustomerID, inv.AnalysisType, inv.CacheHit,
			float64(inv.Latency)/float64(time.Millisecond),
			inv.EstimatedCost, inv.SavedCost, inv.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("insert invocation %s: %w", inv.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cost batch: %w", err)
	}
	return nil
}

// Summary aggregates invocations recorded at or after since, per operation.
func (s *DuckDBSink) Summary(ctx context.Context, since time.Time) ([]OperationSummary, error) {
	rows, err := s.db.QueryContext(ctx, summaryQuery, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query cost summary: %w", err)
	}
	defer rows.Close()

	summaries := make([]OperationSummary, 0)
	for rows.Next() {
		var sum OperationSummary
		if err := rows.Scan(
			&sum.Operation, &sum.Invocations, &sum.CacheHits,
			&sum.AvgLatencyMS, &sum.EstimatedCost, &sum.SavedCost,
		); err != nil {
			return nil, fmt.Errorf("scan cost summary: %w", err)
		}
		if sum.Invocations > 0 {
			sum.HitRate = float64(sum.CacheHits) / float64(sum.Invocations)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost summary: %w", err)
	}
	return summaries, nil
}

// Close closes the connection if the sink opened it.
func (s *DuckDBSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
