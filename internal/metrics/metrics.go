// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation Metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Total number of recommendation results generated, by algorithm label",
		},
		[]string{"algorithm"},
	)

	RecommendationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Total number of results served by the popularity fallback after every signal failed",
		},
	)

	SignalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_signal_duration_seconds",
			Help:    "Duration of signal generator runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"signal"},
	)

	SignalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_signal_failures_total",
			Help: "Total number of signal generator failures",
		},
		[]string{"signal", "kind"}, // kind: not_found, upstream_unavailable, malformed, internal
	)

	SignalItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_signal_items_total",
			Help: "Total number of candidate items produced per signal generator",
		},
		[]string{"signal"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"analysis_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"analysis_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache entries removed",
		},
		[]string{"analysis_type", "reason"}, // reason: expired, cap, invalidated
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_store_errors_total",
			Help: "Total number of store errors absorbed by the cache",
		},
		[]string{"operation"},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of persistent store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cost Metrics
	CostInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_invocations_total",
			Help: "Total number of tracked invocations",
		},
		[]string{"operation", "cache"}, // cache: "hit", "miss"
	)

	CostEstimated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_estimated_units_total",
			Help: "Estimated compute cost units spent",
		},
		[]string{"operation"},
	)

	CostSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_saved_units_total",
			Help: "Estimated compute cost units avoided by cache hits",
		},
		[]string{"operation"},
	)

	CostLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cost_invocation_latency_seconds",
			Help:    "Latency of tracked invocations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CostDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cost_records_dropped_total",
			Help: "Total number of cost records dropped because the persistence queue was full",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSignal records the outcome of one signal generator run.
func RecordSignal(signal string, duration time.Duration, items int, failureKind string) {
	SignalDuration.WithLabelValues(signal).Observe(duration.Seconds())
	if failureKind != "" {
		SignalFailures.WithLabelValues(signal, failureKind).Inc()
		return
	}
	SignalItems.WithLabelValues(signal).Add(float64(items))
}

// RecordStoreOperation records the latency of a persistent store call.
func RecordStoreOperation(backend, operation string, duration time.Duration) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
