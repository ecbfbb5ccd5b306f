// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfsense/internal/models"
	"github.com/tomtom215/shelfsense/internal/recommend"
)

// Feedback handles POST /api/v1/feedback. The event is appended to the
// customer's interactions; nothing is recomputed.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.FeedbackRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.CodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	if !h.feedback.Allow(req.CustomerID) {
		respondError(w, http.StatusTooManyRequests, models.CodeRateLimited, "feedback rate limit exceeded for customer", nil)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	event, err := h.service.TrackFeedback(ctx, req.CustomerID, req.ProductID, recommend.InteractionType(req.Action))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, event, start, false)
}
