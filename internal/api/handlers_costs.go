// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfsense/internal/models"
)

// CostSummary handles GET /api/v1/costs/summary?since=24h.
func (h *Handler) CostSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.costs == nil {
		respondError(w, http.StatusServiceUnavailable, models.CodeUpstreamUnavailable, "cost persistence is not configured", nil)
		return
	}

	query := models.CostSummaryQuery{Since: defaultCostWindow}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.ParseDuration(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, models.CodeValidation, "since must be a duration such as 24h", nil)
			return
		}
		query.Since = since
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	summary, err := h.costs.Summary(ctx, start.Add(-query.Since))
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.CodeInternal, "failed to aggregate costs", err)
		return
	}
	respondData(w, http.StatusOK, summary, start, false)
}
