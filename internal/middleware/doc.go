// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package middleware provides HTTP middleware shared by the API router.
//
// All middleware has the chi signature func(http.Handler) http.Handler:
//
//   - RequestID: propagates or generates X-Request-ID and stores it in the
//     logging context
//   - PrometheusMetrics: records request count and latency by route pattern
//   - AccessLog: one structured log line per request
//
// Recommended order:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog(logger))
//	r.Use(middleware.PrometheusMetrics)
package middleware
