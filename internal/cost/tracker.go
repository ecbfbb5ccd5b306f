// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package cost records the cost and latency of recommendation operations.
//
// Every invocation updates Prometheus counters synchronously. When a Sink is
// configured, invocations are also queued and written in batches by the
// Tracker's Serve loop, which runs as a supervised service. Recording never
// blocks a request: when the queue is full the invocation is dropped from
// the sink (metrics are still updated).
//
// A cache hit carries no estimated cost; instead the unit cost of the
// operation is recorded as saved, which is the cost-avoidance the result
// cache exists for.
package cost

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/metrics"
)

// Operation names recorded by the recommendation service.
const (
	OpGenerateRecommendations = "generate_recommendations"
	OpSimilarProducts         = "similar_products"
	OpComplementaryProducts   = "complementary_products"
)

// Invocation is one recorded operation.
type Invocation struct {
	ID            string        `json:"id"`
	Operation     string        `json:"operation"`
	CustomerID    string        `json:"customer_id,omitempty"`
	AnalysisType  string        `json:"analysis_type,omitempty"`
	CacheHit      bool          `json:"cache_hit"`
	Latency       time.Duration `json:"latency"`
	EstimatedCost float64       `json:"estimated_cost"`
	SavedCost     float64       `json:"saved_cost"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Sink persists batches of invocations.
type Sink interface {
	Write(ctx context.Context, batch []Invocation) error
}

// Config configures a Tracker.
type Config struct {
	// Enabled toggles tracking entirely.
	Enabled bool `koanf:"enabled"`

	// UnitCosts overrides DefaultUnitCost per operation.
	UnitCosts map[string]float64 `koanf:"unit_costs"`

	// DefaultUnitCost is the estimated cost of one uncached operation.
	// Default: 0.002.
	DefaultUnitCost float64 `koanf:"default_unit_cost"`

	// QueueSize bounds invocations waiting for the sink.
	// Default: 1024.
	QueueSize int `koanf:"queue_size"`

	// BatchSize is the number of invocations written per sink call.
	// Default: 100.
	BatchSize int `koanf:"batch_size"`

	// FlushInterval forces a write of a partial batch.
	// Default: 5s.
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// DefaultConfig returns tracker defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DefaultUnitCost: 0.002,
		QueueSize:       1024,
		BatchSize:       100,
		FlushInterval:   5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DefaultUnitCost < 0 {
		return fmt.Errorf("cost.default_unit_cost must be non-negative, got %f", c.DefaultUnitCost)
	}
	for op, v := range c.UnitCosts {
		if v < 0 {
			return fmt.Errorf("cost.unit_costs.%s must be non-negative, got %f", op, v)
		}
	}
	if c.QueueSize < 1 || c.BatchSize < 1 {
		return fmt.Errorf("cost.queue_size and cost.batch_size must be positive")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("cost.flush_interval must be positive, got %v", c.FlushInterval)
	}
	return nil
}

// Tracker records invocations. Record is safe for concurrent use.
type Tracker struct {
	cfg    Config
	sink   Sink
	queue  chan Invocation
	logger zerolog.Logger
	now    func() time.Time

	recorded atomic.Int64
	dropped  atomic.Int64
}

// NewTracker creates a tracker. sink may be nil, in which case only metrics
// are updated.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(cfg Config, sink Sink, logger zerolog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cost config: %w", err)
	}
	t := &Tracker{
		cfg:    cfg,
		sink:   sink,
		logger: logger.With().Str("component", "cost").Logger(),
		now:    time.Now,
	}
	if sink != nil {
		t.queue = make(chan Invocation, cfg.QueueSize)
	}
	return t, nil
}

// UnitCost returns the estimated cost of one uncached op.
func (t *Tracker) UnitCost(op string) float64 {
	if v, ok := t.cfg.UnitCosts[op]; ok {
		return v
	}
	return t.cfg.DefaultUnitCost
}

// Record prices inv, updates metrics and queues it for the sink.
//
//nolint:gocritic // hugeParam: inv passed by value, it is copied into the queue
func (t *Tracker) Record(inv Invocation) {
	if t == nil || !t.cfg.Enabled {
		return
	}

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Timestamp.IsZero() {
		inv.Timestamp = t.now()
	}
	unit := t.UnitCost(inv.Operation)
	if inv.CacheHit {
		inv.EstimatedCost = 0
		inv.SavedCost = unit
	} else if inv.EstimatedCost == 0 {
		inv.EstimatedCost = unit
	}

	cacheLabel := "miss"
	if inv.CacheHit {
		cacheLabel = "hit"
	}
	metrics.CostInvocations.WithLabelValues(inv.Operation, cacheLabel).Inc()
	metrics.CostEstimated.WithLabelValues(inv.Operation).Add(inv.EstimatedCost)
	metrics.CostSaved.WithLabelValues(inv.Operation).Add(inv.SavedCost)
	metrics.CostLatency.WithLabelValues(inv.Operation).Observe(inv.Latency.Seconds())
	t.recorded.Add(1)

	if t.queue == nil {
		return
	}
	select {
	case t.queue <- inv:
	default:
		t.dropped.Add(1)
		metrics.CostDropped.Inc()
	}
}

// Counts returns how many invocations were recorded and dropped.
func (t *Tracker) Counts() (recorded, dropped int64) {
	return t.recorded.Load(), t.dropped.Load()
}

// Serve drains the queue into the sink until ctx is canceled, then flushes
// what remains. It implements suture.Service.
func (t *Tracker) Serve(ctx context.Context) error {
	if t.queue == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Invocation, 0, t.cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := t.sink.Write(ctx, batch); err != nil {
			t.logger.Warn().Err(err).Int("batch", len(batch)).Msg("failed to write cost batch")
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// Drain without blocking, then flush on a fresh context.
		drain:
			for {
				select {
				case inv := <-t.queue:
					batch = append(batch, inv)
				default:
					break drain
				}
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			flush(flushCtx)
			cancel()
			return ctx.Err()

		case inv := <-t.queue:
			batch = append(batch, inv)
			if len(batch) >= t.cfg.BatchSize {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (t *Tracker) String() string {
	return "cost-tracker"
}
