// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordSignal(t *testing.T) {
	tests := []struct {
		name        string
		signal      string
		items       int
		failureKind string
		wantItems   float64
		wantFailed  float64
	}{
		{name: "success adds items", signal: "test-collaborative", items: 4, wantItems: 4},
		{name: "failure counts kind", signal: "test-content", items: 0, failureKind: "upstream_unavailable", wantFailed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordSignal(tt.signal, 5*time.Millisecond, tt.items, tt.failureKind)

			if got := testutil.ToFloat64(SignalItems.WithLabelValues(tt.signal)); got != tt.wantItems {
				t.Errorf("SignalItems(%s) = %v, want %v", tt.signal, got, tt.wantItems)
			}
			if tt.failureKind != "" {
				if got := testutil.ToFloat64(SignalFailures.WithLabelValues(tt.signal, tt.failureKind)); got != tt.wantFailed {
					t.Errorf("SignalFailures(%s) = %v, want %v", tt.signal, got, tt.wantFailed)
				}
			}
		})
	}
}

func TestRecordAPIRequestObservesHistogram(t *testing.T) {
	RecordAPIRequest("GET", "/test/histogram", "200", 20*time.Millisecond)
	RecordAPIRequest("GET", "/test/histogram", "200", 40*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test/histogram", "200")); got != 2 {
		t.Errorf("APIRequestsTotal = %v, want 2", got)
	}

	observer, err := APIRequestDuration.GetMetricWithLabelValues("GET", "/test/histogram")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues() error = %v", err)
	}
	m := &dto.Metric{}
	if err := observer.(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}
