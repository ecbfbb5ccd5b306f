// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// HistoryRecord is one purchase or interaction contributing to a fingerprint.
type HistoryRecord struct {
	ProductID string
	Quantity  int
	Date      time.Time
}

// Descriptor describes a cacheable analysis request.
type Descriptor struct {
	CustomerID         string
	AnalysisType       AnalysisType
	Records            []HistoryRecord
	MaxRecommendations int
}

// fingerprintBytes is the number of hash bytes kept (32 hex chars).
const fingerprintBytes = 16

// Fingerprint derives the request fingerprint. Records are sorted by date
// (then product id, then quantity) on a copy, so caller order never changes
// the result.
func Fingerprint(d Descriptor) string {
	records := make([]HistoryRecord, len(d.Records))
	copy(records, d.Records)
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Quantity < b.Quantity
	})

	var sb strings.Builder
	for i, r := range records {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(r.ProductID)
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(r.Quantity))
		sb.WriteByte('-')
		sb.WriteString(r.Date.UTC().Format(time.RFC3339Nano))
	}
	sb.WriteByte('#')
	sb.WriteString(string(d.AnalysisType))
	sb.WriteByte('#')
	sb.WriteString(strconv.Itoa(d.MaxRecommendations))

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:fingerprintBytes])
}

// Key returns the store key for a descriptor.
func Key(d Descriptor) string {
	return Fingerprint(d) + ":" + d.CustomerID + ":" + string(d.AnalysisType)
}

// scopeValue is the index value grouping entries per (customer, analysis type).
// The analysis type never contains '/', so the pair stays unambiguous.
func scopeValue(customerID string, t AnalysisType) string {
	return customerID + "/" + string(t)
}
