// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

/*
Package api exposes the recommendation service over HTTP using the chi router.

Routes:

	POST   /api/v1/recommendations                          generate (cached)
	GET    /api/v1/customers/{customerID}/recommendations   result history
	DELETE /api/v1/customers/{customerID}/cache             invalidate cache
	GET    /api/v1/products/{productID}/similar?limit=      similar products
	GET    /api/v1/products/{productID}/complementary       complementary products
	POST   /api/v1/feedback                                 track interaction
	GET    /api/v1/costs/summary?since=24h                  cost aggregation
	GET    /health                                          component health
	GET    /metrics                                         Prometheus

Middleware stack (outermost first): request id, real ip, panic recovery,
access log, CORS, Prometheus, then per-group IP rate limiting via httprate.
Feedback is additionally limited per customer with a token bucket.

All responses use the models.APIResponse envelope. Errors map onto stable
codes: VALIDATION_ERROR (400), NOT_FOUND (404), RATE_LIMITED (429),
UPSTREAM_UNAVAILABLE (503) and INTERNAL_ERROR (500).
*/
package api
