// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/shelfsense/internal/metrics"
)

// Fixed confidence attached to each algorithm label.
const (
	ConfidenceHybrid           = 0.65
	ConfidenceCollaborative    = 0.85
	ConfidenceContentBased     = 0.70
	ConfidenceInteractionBased = 0.65
	ConfidencePopularity       = 0.60
	ConfidenceFallback         = 0.50
)

// Engine blends signal generators into a single ranked result.
// It is safe for concurrent use.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	directory CustomerDirectory
	results   ResultStore
	now       func() time.Time

	// generators are ordered by SignalKind so merge ties resolve the same
	// way on every request.
	generators []Generator
	popularity Generator
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithResultStore persists every generated result to rs.
func WithResultStore(rs ResultStore) EngineOption {
	return func(e *Engine) {
		e.results = rs
	}
}

// WithEngineClock overrides the time source.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a blender over the given generators. At most one
// generator per SignalKind may be registered.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, directory CustomerDirectory, generators []Generator, logger zerolog.Logger, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}

	ordered := make([]Generator, 0, len(generators))
	seen := make(map[SignalKind]bool, len(generators))
	for _, g := range generators {
		if g == nil {
			continue
		}
		if seen[g.Kind()] {
			return nil, fmt.Errorf("duplicate generator for signal %s", g.Kind())
		}
		seen[g.Kind()] = true
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Kind() < ordered[j].Kind() })

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		directory:  directory,
		now:        time.Now,
		generators: ordered,
	}
	for _, g := range ordered {
		if g.Kind() == SignalPopularity {
			e.popularity = g
		}
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, g := range ordered {
		e.logger.Debug().Str("generator", g.Kind().String()).Msg("registered generator")
	}
	return e, nil
}

// NormalizeLimit applies the default and maximum item limits.
func (e *Engine) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		return e.config.Limits.MaxLimit
	}
	return limit
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Generate produces recommendations for customerID. Signal failures never
// surface as errors: when no personalized signal completes, the result is a
// popularity-only fallback. The only error is ErrInvalidRequest.
func (e *Engine) Generate(ctx context.Context, customerID string, reqContext map[string]string, limit int) (result *RecommendationResult, err error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	}

	req := &SignalRequest{
		CustomerID: customerID,
		Limit:      e.NormalizeLimit(limit),
	}
	logger := e.logger.With().
		Str("customer_id", customerID).
		Int("limit", req.Limit).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Msg("recommendation pipeline panicked, serving popularity fallback")
			result = e.fallback(req, e.runGenerator(ctx, e.popularity, req, nil, logger))
			e.finalize(ctx, result, reqContext, logger)
			err = nil
		}
	}()

	inputErrs := e.loadInputs(ctx, req, logger)
	outcomes := e.runGenerators(ctx, req, inputErrs, logger)
	result = e.blend(req, outcomes, logger)
	e.finalize(ctx, result, reqContext, logger)

	logger.Debug().
		Str("algorithm", string(result.AlgorithmType)).
		Float64("confidence", result.Confidence).
		Int("items", len(result.Items)).
		Msg("recommendation complete")

	return result, nil
}

// signalOutcome is the settled state of one generator for one request.
type signalOutcome struct {
	kind  SignalKind
	items []RecommendationItem
	err   error

	// ran is set when the generator was attempted.
	ran bool
}

func (o *signalOutcome) completed() bool {
	return o != nil && o.ran && o.err == nil
}

func (o *signalOutcome) itemList() []RecommendationItem {
	if o == nil || o.err != nil {
		return nil
	}
	return o.items
}

// loadInputs fetches the profile, purchases and interactions concurrently.
// Missing data leaves the input empty; any other failure is returned keyed
// by the signal that consumes the input.
func (e *Engine) loadInputs(ctx context.Context, req *SignalRequest, logger zerolog.Logger) map[SignalKind]error {
	var (
		mu           sync.Mutex
		errs         = make(map[SignalKind]error)
		profile      *CustomerProfile
		purchases    []PurchaseRecord
		interactions []InteractionEvent
	)

	record := func(kind SignalKind, input string, err error) {
		if err == nil || errors.Is(err, ErrNotFound) {
			return
		}
		logger.Warn().
			Err(err).
			Str("generator", kind.String()).
			Str("input", input).
			Str("error_kind", string(Classify(err))).
			Msg("failed to load signal input")
		mu.Lock()
		errs[kind] = fmt.Errorf("load %s: %w", input, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, e.config.Limits.CollaboratorTimeout)
		defer cancel()
		p, err := e.directory.GetProfile(cctx, req.CustomerID)
		if err == nil {
			profile = &p
		}
		record(SignalContentBased, "profile", err)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, e.config.Limits.CollaboratorTimeout)
		defer cancel()
		var err error
		purchases, err = e.directory.GetPurchaseHistory(cctx, req.CustomerID, e.config.Limits.HistoryLimit)
		record(SignalCollaborative, "purchases", err)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, e.config.Limits.CollaboratorTimeout)
		defer cancel()
		var err error
		interactions, err = e.directory.GetInteractions(cctx, req.CustomerID, e.config.Limits.InteractionLimit)
		record(SignalInteractionBased, "interactions", err)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	req.Profile = profile
	req.Purchases = purchases
	req.Interactions = interactions
	return errs
}

// runGenerators runs every registered generator concurrently and waits for
// all of them to settle. Each goroutine writes only its own slot.
func (e *Engine) runGenerators(ctx context.Context, req *SignalRequest, inputErrs map[SignalKind]error, logger zerolog.Logger) map[SignalKind]*signalOutcome {
	outcomes := make([]signalOutcome, len(e.generators))

	var g errgroup.Group
	for i, gen := range e.generators {
		g.Go(func() error {
			outcomes[i] = e.runGenerator(ctx, gen, req, inputErrs[gen.Kind()], logger)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	byKind := make(map[SignalKind]*signalOutcome, len(outcomes))
	for i := range outcomes {
		byKind[outcomes[i].kind] = &outcomes[i]
	}
	return byKind
}

// runGenerator runs one generator under the generator timeout, converting
// errors and panics into a failed outcome.
func (e *Engine) runGenerator(ctx context.Context, gen Generator, req *SignalRequest, inputErr error, logger zerolog.Logger) signalOutcome {
	if gen == nil {
		return signalOutcome{kind: SignalPopularity}
	}

	kind := gen.Kind()
	out := signalOutcome{kind: kind}

	if inputErr != nil {
		out.ran = true
		out.err = &SignalError{Signal: kind, Err: inputErr}
		metrics.RecordSignal(kind.String(), 0, 0, string(Classify(inputErr)))
		return out
	}
	if !gen.Applicable(req) {
		return out
	}

	out.ran = true
	start := time.Now()
	genCtx, cancel := context.WithTimeout(ctx, e.config.Limits.GeneratorTimeout)
	defer cancel()

	items, err := safeGenerate(genCtx, gen, req)
	duration := time.Since(start)
	if err != nil {
		kindLabel := Classify(err)
		out.err = &SignalError{Signal: kind, Err: err}
		metrics.RecordSignal(kind.String(), duration, 0, string(kindLabel))
		logger.Warn().
			Err(err).
			Str("generator", kind.String()).
			Str("error_kind", string(kindLabel)).
			Dur("duration", duration).
			Msg("signal generator failed")
		return out
	}

	out.items = sanitizeItems(items)
	metrics.RecordSignal(kind.String(), duration, len(out.items), "")
	return out
}

// safeGenerate calls gen.Generate, recovering panics as errors.
func safeGenerate(ctx context.Context, gen Generator, req *SignalRequest) (items []RecommendationItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return gen.Generate(ctx, req)
}

// blend applies the labeling precedence and merges generator outputs.
func (e *Engine) blend(req *SignalRequest, outcomes map[SignalKind]*signalOutcome, logger zerolog.Logger) *RecommendationResult {
	if !anyPersonalCompleted(outcomes) {
		logger.Error().
			Err(ErrTotalComputeFailure).
			Msg("no personalized signal completed, serving popularity fallback")
		return e.fallback(req, derefOutcome(outcomes[SignalPopularity]))
	}

	collaborative := outcomes[SignalCollaborative]
	content := outcomes[SignalContentBased]
	interaction := outcomes[SignalInteractionBased]

	algorithm, confidence := AlgorithmHybrid, ConfidenceHybrid
	if len(req.Purchases) > 0 {
		algorithm, confidence = AlgorithmCollaborative, ConfidenceCollaborative
	}
	if req.Profile.HasPreferences() && len(collaborative.itemList()) == 0 {
		algorithm, confidence = AlgorithmContentBased, ConfidenceContentBased
	}
	if len(interaction.itemList()) > 0 && algorithm == AlgorithmHybrid {
		algorithm, confidence = AlgorithmInteractionBased, ConfidenceInteractionBased
	}

	personal := mergeItems(req.Limit,
		collaborative.itemList(),
		content.itemList(),
		interaction.itemList(),
	)
	items, filled := fillFromPopularity(personal, outcomes[SignalPopularity].itemList(), req.Limit)
	if len(personal) == 0 && filled > 0 {
		algorithm, confidence = AlgorithmPopularity, ConfidencePopularity
	}

	return &RecommendationResult{
		CustomerID:    req.CustomerID,
		Items:         items,
		AlgorithmType: algorithm,
		Confidence:    confidence,
	}
}

// fallback builds the popularity-only result used on total failure.
//
//nolint:gocritic // hugeParam: outcome passed by value, it is settled
func (e *Engine) fallback(req *SignalRequest, popularity signalOutcome) *RecommendationResult {
	metrics.RecommendationFallbacks.Inc()
	items, _ := fillFromPopularity(nil, popularity.itemList(), req.Limit)
	return &RecommendationResult{
		CustomerID:    req.CustomerID,
		Items:         items,
		AlgorithmType: AlgorithmPopularity,
		Confidence:    ConfidenceFallback,
		Fallback:      true,
	}
}

// finalize stamps identity and lifetimes onto result and persists it.
func (e *Engine) finalize(ctx context.Context, result *RecommendationResult, reqContext map[string]string, logger zerolog.Logger) {
	now := e.now()
	result.ID = uuid.NewString()
	result.GeneratedAt = now
	result.ExpiresAt = now.Add(e.config.ResultExpiry)
	result.Status = StatusActive
	if result.Items == nil {
		result.Items = []RecommendationItem{}
	}
	if len(reqContext) > 0 {
		result.Context = make(map[string]string, len(reqContext))
		for k, v := range reqContext {
			result.Context[k] = v
		}
	}

	metrics.RecommendationsGenerated.WithLabelValues(string(result.AlgorithmType)).Inc()

	if e.results == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, e.config.Limits.CollaboratorTimeout)
	defer cancel()
	if err := e.results.Save(saveCtx, result); err != nil {
		logger.Warn().
			Err(err).
			Str("result_id", result.ID).
			Msg("failed to persist recommendation result")
	}
}

func anyPersonalCompleted(outcomes map[SignalKind]*signalOutcome) bool {
	for kind, o := range outcomes {
		if kind.Personal() && o.completed() {
			return true
		}
	}
	return false
}

func derefOutcome(o *signalOutcome) signalOutcome {
	if o == nil {
		return signalOutcome{kind: SignalPopularity}
	}
	return *o
}

// sanitizeItems drops items without a product id and clamps scores to [0, 1].
func sanitizeItems(items []RecommendationItem) []RecommendationItem {
	out := items[:0:0]
	for i := range items {
		item := items[i]
		if item.Product.ID == "" {
			continue
		}
		switch {
		case math.IsNaN(item.Score) || item.Score < 0:
			item.Score = 0
		case item.Score > 1:
			item.Score = 1
		}
		out = append(out, item)
	}
	return out
}

// mergeItems deduplicates by product id keeping the highest score, unions
// tags, sorts by score descending then product id, and truncates to limit.
// Lists are consumed in order, so on equal scores the earlier list wins.
func mergeItems(limit int, lists ...[]RecommendationItem) []RecommendationItem {
	index := make(map[string]int)
	merged := make([]RecommendationItem, 0)

	for _, list := range lists {
		for i := range list {
			item := list[i]
			pos, ok := index[item.Product.ID]
			if !ok {
				item.Tags = unionTags(nil, item.Tags)
				index[item.Product.ID] = len(merged)
				merged = append(merged, item)
				continue
			}

			existing := &merged[pos]
			tags := unionTags(existing.Tags, item.Tags)
			if item.Score > existing.Score {
				*existing = item
			}
			existing.Tags = tags
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Product.ID < merged[j].Product.ID
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// fillFromPopularity appends popularity items whose product ids are not
// already present until len(items) reaches limit, then re-ranks the whole
// list by score descending. The re-rank is stable: items with equal scores
// keep their relative order, so personalized items stay ahead of popularity
// items at the same score and popularity items stay in stock order. It
// returns the new slice and how many items were appended.
func fillFromPopularity(items, popular []RecommendationItem, limit int) ([]RecommendationItem, int) {
	present := make(map[string]struct{}, len(items))
	for i := range items {
		present[items[i].Product.ID] = struct{}{}
	}

	filled := 0
	for i := range popular {
		if len(items) >= limit {
			break
		}
		id := popular[i].Product.ID
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		items = append(items, popular[i])
		filled++
	}

	if filled > 0 {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Score > items[j].Score
		})
	}
	return items, filled
}

func unionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a)+len(b))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
