// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"math"
	"sort"
	"strings"
)

// Reasons attached to similarity matches.
const (
	ReasonSameCategory = "same category"
	ReasonSimilarPrice = "similar price"
	ReasonSameSupplier = "same supplier"
	ReasonSameLocation = "same location"
	ReasonSharedTags   = "shared tags"
)

// Scorer computes pairwise product similarity with an additive weighted
// model:
//
//	score(a, b) = min(1, category + price + supplier + location + tags)
//
// Each term is credited independently. Price credit applies only when the
// closeness ratio 1 - |pa-pb| / avg(pa, pb) exceeds the threshold. Tag
// credit is the Jaccard overlap of tag sets scaled by TagWeight.
//
// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	cfg SimilarityConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg SimilarityConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the similarity of a and b in [0, 1]. A product is never
// similar to itself.
func (s *Scorer) Score(a, b *Product) float64 {
	score, _ := s.score(a, b, false)
	return score
}

// Explain returns the score together with the features that contributed.
func (s *Scorer) Explain(a, b *Product) (float64, []string) {
	return s.score(a, b, true)
}

func (s *Scorer) score(a, b *Product, explain bool) (float64, []string) {
	if a.ID == b.ID {
		return 0, nil
	}

	var (
		sum     float64
		reasons []string
	)
	credit := func(w float64, reason string) {
		if w <= 0 {
			return
		}
		sum += w
		if explain {
			reasons = append(reasons, reason)
		}
	}

	if sameField(a.Category, b.Category) {
		credit(s.cfg.CategoryWeight, ReasonSameCategory)
	}
	if ratio, ok := priceCloseness(a.Price, b.Price); ok && ratio > s.cfg.PriceThreshold {
		credit(s.cfg.PriceWeight*ratio, ReasonSimilarPrice)
	}
	if sameField(a.Supplier, b.Supplier) {
		credit(s.cfg.SupplierWeight, ReasonSameSupplier)
	}
	if sameField(a.Location, b.Location) {
		credit(s.cfg.LocationWeight, ReasonSameLocation)
	}
	if overlap := jaccard(a.Tags, b.Tags); overlap > 0 {
		credit(s.cfg.TagWeight*overlap, ReasonSharedTags)
	}

	return math.Min(1, sum), reasons
}

// FindSimilar scores target against corpus and returns candidates with a
// score of at least minSimilarity, highest first. Equal scores are ordered
// by product id ascending instead of corpus position, so the ranking does
// not depend on how the catalog happened to list its products.
// A non-positive limit returns every match.
func (s *Scorer) FindSimilar(target *Product, corpus []Product, limit int, minSimilarity float64) []SimilarProduct {
	matches := make([]SimilarProduct, 0)
	for i := range corpus {
		candidate := &corpus[i]
		score, reasons := s.Explain(target, candidate)
		if score <= 0 || score < minSimilarity {
			continue
		}
		matches = append(matches, SimilarProduct{
			Product: *candidate,
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Product.ID < matches[j].Product.ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// priceCloseness returns 1 - |a-b| / avg(a, b). Unknown or non-finite
// prices yield no credit.
func priceCloseness(a, b float64) (float64, bool) {
	if !validPrice(a) || !validPrice(b) {
		return 0, false
	}
	avg := (a + b) / 2
	return 1 - math.Abs(a-b)/avg, true
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// sameField compares two attribute values case-insensitively. Empty values
// never match.
func sameField(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// jaccard computes |A ∩ B| / |A ∪ B| over case-folded tags.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := tagSet(a)
	setB := tagSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
