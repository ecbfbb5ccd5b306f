// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shelfsense/internal/models"
	"github.com/tomtom215/shelfsense/internal/store"
)

const (
	healthTable   = "health"
	healthTimeout = 2 * time.Second
)

// Health handles GET /health. It reports "degraded" with 503 when the store
// cannot be read or its breaker is open; recommendations still work in that
// state but without cache or history.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.HealthStatus{
		Status: "healthy",
		Checks: map[string]string{},
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.store != nil {
		status.Store = h.store.Name()
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		_, err := h.store.Get(ctx, healthTable, "probe")
		cancel()
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			status.Status = "degraded"
			status.Checks["store"] = err.Error()
		} else {
			status.Checks["store"] = "ok"
		}
	}

	if h.breaker != nil {
		state := h.breaker.State()
		status.BreakerState = state.String()
		if state == gobreaker.StateOpen {
			status.Status = "degraded"
		}
	}

	if h.cacheStats != nil {
		stats := h.cacheStats.Stats()
		status.Cache = models.CacheHealth{
			Hits:        stats.Hits,
			Misses:      stats.Misses,
			Evictions:   stats.Evictions,
			StoreErrors: stats.StoreErrors,
			HitRate:     stats.HitRate(),
		}
	}

	if h.tracker != nil {
		recorded, dropped := h.tracker.Counts()
		status.Cost = &models.CostHealth{Recorded: recorded, Dropped: dropped}
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondData(w, code, status, start, false)
}
