// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/cost"
	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/store"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxBodyBytes   = 1 << 20
	defaultCostWindow     = 24 * time.Hour
)

// RecommendationService is the subset of recommend.Service used by handlers.
type RecommendationService interface {
	GenerateRecommendations(ctx context.Context, customerID string, reqContext map[string]string, limit int) (*recommend.RecommendationResult, error)
	History(ctx context.Context, customerID string, limit int) ([]recommend.RecommendationResult, error)
	InvalidateCustomerCache(ctx context.Context, customerID string) (int, error)
	GetSimilarProducts(ctx context.Context, productID string, limit int) ([]recommend.SimilarProduct, error)
	GetComplementaryProducts(ctx context.Context, productID string) ([]recommend.Product, error)
	TrackFeedback(ctx context.Context, customerID, productID string, action recommend.InteractionType) (recommend.InteractionEvent, error)
}

// CostReporter aggregates recorded invocations.
type CostReporter interface {
	Summary(ctx context.Context, since time.Time) ([]cost.OperationSummary, error)
}

// CacheStatsSource exposes result cache counters.
type CacheStatsSource interface {
	Stats() cache.Stats
}

// CostCounter exposes cost tracker counters.
type CostCounter interface {
	Counts() (recorded, dropped int64)
}

// BreakerStateSource exposes a circuit breaker state.
type BreakerStateSource interface {
	State() gobreaker.State
}

// HandlerDeps are the collaborators of a Handler. Only Service is required.
type HandlerDeps struct {
	Service  RecommendationService
	Costs    CostReporter
	Cache    CacheStatsSource
	Tracker  CostCounter
	Store    store.Store
	Breaker  BreakerStateSource
	Feedback *CustomerLimiter

	// MaxBodyBytes bounds JSON request bodies. Zero uses 1 MiB.
	MaxBodyBytes int64

	// RequestTimeout bounds each service call. Zero uses 10s.
	RequestTimeout time.Duration
}

// Handler serves the API endpoints.
type Handler struct {
	service        RecommendationService
	costs          CostReporter
	cacheStats     CacheStatsSource
	tracker        CostCounter
	store          store.Store
	breaker        BreakerStateSource
	feedback       *CustomerLimiter
	maxBodyBytes   int64
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Service == nil {
		return nil, errors.New("recommendation service is required")
	}

	h := &Handler{
		service:        deps.Service,
		costs:          deps.Costs,
		cacheStats:     deps.Cache,
		tracker:        deps.Tracker,
		store:          deps.Store,
		breaker:        deps.Breaker,
		feedback:       deps.Feedback,
		maxBodyBytes:   deps.MaxBodyBytes,
		requestTimeout: deps.RequestTimeout,
		startTime:      time.Now(),
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = defaultMaxBodyBytes
	}
	if h.requestTimeout <= 0 {
		h.requestTimeout = defaultRequestTimeout
	}
	if h.feedback == nil {
		h.feedback = NewCustomerLimiter(0, 1)
	}
	return h, nil
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.requestTimeout)
}
