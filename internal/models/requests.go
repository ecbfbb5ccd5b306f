// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package models

import "time"

// RecommendationRequest is the body of POST /api/v1/recommendations.
type RecommendationRequest struct {
	CustomerID string            `json:"customer_id" validate:"required,identifier"`
	Context    map[string]string `json:"context,omitempty" validate:"omitempty,max=32"`
	Limit      int               `json:"limit" validate:"gte=0,lte=100"`
}

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	CustomerID string `json:"customer_id" validate:"required,identifier"`
	ProductID  string `json:"product_id" validate:"required,identifier"`
	Action     string `json:"action" validate:"required,interaction"`
}

// PathRequest validates identifiers taken from the URL path and query.
type PathRequest struct {
	ID    string `json:"id" validate:"required,identifier"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

// CacheInvalidation is the data of DELETE /customers/{id}/cache.
type CacheInvalidation struct {
	CustomerID string `json:"customer_id"`
	Removed    int    `json:"removed"`
}

// CostSummaryQuery is the validated query of GET /costs/summary.
type CostSummaryQuery struct {
	Since time.Duration `json:"since" validate:"gte=0"`
}

// HealthStatus is the data of GET /health.
type HealthStatus struct {
	Status       string            `json:"status"`
	Store        string            `json:"store"`
	BreakerState string            `json:"breaker_state,omitempty"`
	Cache        CacheHealth       `json:"cache"`
	Cost         *CostHealth       `json:"cost,omitempty"`
	Checks       map[string]string `json:"checks,omitempty"`
	Uptime       string            `json:"uptime"`
}

// CacheHealth summarizes result cache counters.
type CacheHealth struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	StoreErrors int64   `json:"store_errors"`
	HitRate     float64 `json:"hit_rate"`
}

// CostHealth summarizes cost tracker counters.
type CostHealth struct {
	Recorded int64 `json:"recorded"`
	Dropped  int64 `json:"dropped"`
}
