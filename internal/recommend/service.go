// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/cost"
)

// CostRecorder receives one invocation per service operation.
type CostRecorder interface {
	Record(inv cost.Invocation)
}

// ServiceDeps are the collaborators of a Service. Feedback, Results and
// Costs are optional.
type ServiceDeps struct {
	Engine    *Engine
	Cache     *cache.ResultCache
	Catalog   ProductCatalog
	Directory CustomerDirectory
	Feedback  FeedbackSink
	Results   ResultStore
	Costs     CostRecorder
}

// Service exposes the recommendation operations to callers. It puts the
// fingerprinted result cache in front of the Engine and records the cost of
// every operation.
type Service struct {
	engine    *Engine
	cache     *cache.ResultCache
	catalog   ProductCatalog
	directory CustomerDirectory
	feedback  FeedbackSink
	results   ResultStore
	costs     CostRecorder
	scorer    *Scorer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates the service facade.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(deps ServiceDeps, logger zerolog.Logger) (*Service, error) {
	switch {
	case deps.Engine == nil:
		return nil, errors.New("engine is required")
	case deps.Cache == nil:
		return nil, errors.New("result cache is required")
	case deps.Catalog == nil:
		return nil, errors.New("product catalog is required")
	case deps.Directory == nil:
		return nil, errors.New("customer directory is required")
	}

	return &Service{
		engine:    deps.Engine,
		cache:     deps.Cache,
		catalog:   deps.Catalog,
		directory: deps.Directory,
		feedback:  deps.Feedback,
		results:   deps.Results,
		costs:     deps.Costs,
		scorer:    NewScorer(deps.Engine.config.Similarity),
		logger:    logger.With().Str("component", "recommend_service").Logger(),
		now:       time.Now,
	}, nil
}

// GenerateRecommendations returns cached recommendations when the customer's
// history is unchanged within the cache TTL, and generates them otherwise.
// Fallback results are not cached so the next request can recover.
func (s *Service) GenerateRecommendations(ctx context.Context, customerID string, reqContext map[string]string, limit int) (*RecommendationResult, error) {
	start := time.Now()
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	}
	limit = s.engine.NormalizeLimit(limit)

	desc, cacheable := s.descriptor(ctx, customerID, limit)
	if cacheable {
		if cached, ok := s.GetCachedResult(ctx, desc); ok {
			cached.CacheHit = true
			s.recordCost(cost.OpGenerateRecommendations, customerID, true, start)
			return cached, nil
		}
	}

	result, err := s.engine.Generate(ctx, customerID, reqContext, limit)
	if err != nil {
		return nil, err
	}

	if cacheable && !result.Fallback {
		s.SetCachedResult(ctx, desc, result)
	}
	s.recordCost(cost.OpGenerateRecommendations, customerID, false, start)
	return result, nil
}

// GetCachedResult returns the cached result for desc.
func (s *Service) GetCachedResult(ctx context.Context, desc cache.Descriptor) (*RecommendationResult, bool) {
	payload, ok := s.cache.Get(ctx, desc)
	if !ok {
		return nil, false
	}
	var result RecommendationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn().Err(err).Str("customer_id", desc.CustomerID).Msg("discarding undecodable cached result")
		return nil, false
	}
	return &result, true
}

// SetCachedResult caches result under desc. Failures are logged only.
func (s *Service) SetCachedResult(ctx context.Context, desc cache.Descriptor, result *RecommendationResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", desc.CustomerID).Msg("failed to encode result for cache")
		return
	}
	s.cache.Set(ctx, desc, payload)
}

// InvalidateCustomerCache drops every cached analysis for the customer.
func (s *Service) InvalidateCustomerCache(ctx context.Context, customerID string) (int, error) {
	if strings.TrimSpace(customerID) == "" {
		return 0, fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	}
	return s.cache.InvalidateCustomer(ctx, customerID)
}

// GetSimilarProducts returns products similar to productID, highest score
// first. Results are cached in the ad-hoc cache under the default TTL.
func (s *Service) GetSimilarProducts(ctx context.Context, productID string, limit int) ([]SimilarProduct, error) {
	start := time.Now()
	limit = s.engine.NormalizeLimit(limit)
	key := "similar:" + productID + ":" + strconv.Itoa(limit)

	if payload, ok := s.cache.GetKey(ctx, key); ok {
		var cached []SimilarProduct
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.recordCost(cost.OpSimilarProducts, "", true, start)
			return cached, nil
		}
	}

	target, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	corpus, err := s.catalog.ListAll(ctx, ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	similar := s.scorer.FindSimilar(&target, corpus, limit, 0)
	if payload, err := json.Marshal(similar); err == nil {
		s.cache.SetKey(ctx, key, payload, 0)
	}
	s.recordCost(cost.OpSimilarProducts, "", false, start)
	return similar, nil
}

// GetComplementaryProducts returns products from categories commonly bought
// with productID's category.
func (s *Service) GetComplementaryProducts(ctx context.Context, productID string) ([]Product, error) {
	start := time.Now()
	target, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	products, err := Complementary(ctx, s.catalog, &target, s.engine.config.ComplementaryPerCategory)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	s.recordCost(cost.OpComplementaryProducts, "", false, start)
	return products, nil
}

// TrackFeedback appends an interaction for the customer. Nothing is
// recomputed; the new event changes the history fingerprint, so the next
// request misses the cache and regenerates.
func (s *Service) TrackFeedback(ctx context.Context, customerID, productID string, action InteractionType) (InteractionEvent, error) {
	var event InteractionEvent
	if s.feedback == nil {
		return event, errors.New("feedback sink is not configured")
	}
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(productID) == "" {
		return event, fmt.Errorf("%w: customer id and product id are required", ErrInvalidRequest)
	}
	if !action.Valid() {
		return event, fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, action)
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return event, fmt.Errorf("get product %s: %w", productID, err)
	}

	event = InteractionEvent{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ProductID:  productID,
		Type:       action,
		Timestamp:  s.now().UTC(),
	}
	if err := s.feedback.AppendInteraction(ctx, event); err != nil {
		return InteractionEvent{}, fmt.Errorf("append interaction: %w", err)
	}

	s.logger.Debug().
		Str("customer_id", customerID).
		Str("product_id", productID).
		Str("action", string(action)).
		Msg("feedback recorded")
	return event, nil
}

// History returns persisted results for the customer, newest first.
func (s *Service) History(ctx context.Context, customerID string, limit int) ([]RecommendationResult, error) {
	if s.results == nil {
		return []RecommendationResult{}, nil
	}
	return s.results.History(ctx, customerID, limit)
}

// descriptor builds the cache descriptor from purchase and interaction
// history. It reports false when history could not be loaded, in which case
// the cache is bypassed.
func (s *Service) descriptor(ctx context.Context, customerID string, limit int) (cache.Descriptor, bool) {
	cfg := s.engine.config.Limits
	desc := cache.Descriptor{
		CustomerID:         customerID,
		AnalysisType:       cache.AnalysisRecommendation,
		MaxRecommendations: limit,
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.CollaboratorTimeout)
	defer cancel()

	purchases, err := s.directory.GetPurchaseHistory(cctx, customerID, cfg.HistoryLimit)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Str("customer_id", customerID).Msg("history unavailable, bypassing cache")
		return desc, false
	}
	interactions, err := s.directory.GetInteractions(cctx, customerID, cfg.InteractionLimit)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Str("customer_id", customerID).Msg("interactions unavailable, bypassing cache")
		return desc, false
	}

	desc.Records = make([]cache.HistoryRecord, 0, len(purchases)+len(interactions))
	for _, p := range purchases {
		desc.Records = append(desc.Records, cache.HistoryRecord{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Date:      p.PurchaseDate,
		})
	}
	for _, ev := range interactions {
		desc.Records = append(desc.Records, cache.HistoryRecord{
			ProductID: ev.ProductID + "@" + string(ev.Type),
			Date:      ev.Timestamp,
		})
	}
	return desc, true
}

func (s *Service) recordCost(op, customerID string, hit bool, start time.Time) {
	if s.costs == nil {
		return
	}
	analysis := ""
	if op == cost.OpGenerateRecommendations {
		analysis = string(cache.AnalysisRecommendation)
	}
	s.costs.Record(cost.Invocation{
		Operation:    op,
		CustomerID:   customerID,
		AnalysisType: analysis,
		CacheHit:     hit,
		Latency:      time.Since(start),
	})
}
