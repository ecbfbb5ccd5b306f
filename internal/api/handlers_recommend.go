// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfsense/internal/logging"
	"github.com/tomtom215/shelfsense/internal/models"
)

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendationRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.CodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	result, err := h.service.GenerateRecommendations(ctx, req.CustomerID, req.Context, req.Limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("customer_id", sanitizeLogValue(req.CustomerID)).Msg("recommendation request failed")
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, result, start, result.CacheHit)
}

// CustomerHistory handles GET /api/v1/customers/{customerID}/recommendations.
func (h *Handler) CustomerHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", 20)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.CodeValidation, err.Error(), nil)
		return
	}
	req := models.PathRequest{ID: chi.URLParam(r, "customerID"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	history, err := h.service.History(ctx, req.ID, req.Limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, history, start, false)
}

// InvalidateCache handles DELETE /api/v1/customers/{customerID}/cache.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := models.PathRequest{ID: chi.URLParam(r, "customerID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	removed, err := h.service.InvalidateCustomerCache(ctx, req.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logging.Ctx(ctx).Info().Str("customer_id", req.ID).Int("removed", removed).Msg("customer cache invalidated")
	respondData(w, http.StatusOK, models.CacheInvalidation{CustomerID: req.ID, Removed: removed}, start, false)
}

// SimilarProducts handles GET /api/v1/products/{productID}/similar.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.CodeValidation, err.Error(), nil)
		return
	}
	req := models.PathRequest{ID: chi.URLParam(r, "productID"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	similar, err := h.service.GetSimilarProducts(ctx, req.ID, req.Limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, similar, start, false)
}

// ComplementaryProducts handles GET /api/v1/products/{productID}/complementary.
func (h *Handler) ComplementaryProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := models.PathRequest{ID: chi.URLParam(r, "productID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	products, err := h.service.GetComplementaryProducts(ctx, req.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, products, start, false)
}
