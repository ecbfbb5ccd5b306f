// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package main is the entry point for the Shelfsense server.
//
// Shelfsense generates ranked product recommendations for retail customers
// by blending collaborative, content-based, interaction-based and popularity
// signals, and caches results keyed by a fingerprint of the customer's
// history.
//
// # Startup Order
//
//  1. Configuration: defaults, optional config.yaml, environment (koanf v2)
//  2. Logging: global zerolog logger
//  3. Store: memory, Badger or Redis behind a circuit breaker
//  4. Catalog and customer directory, optional YAML seed
//  5. Result cache, result log, signal generators, engine and service
//  6. Cost tracker with DuckDB invocation log
//  7. Supervisor tree: cost writer, janitor, limiter pruning, HTTP server
//
// # Configuration
//
// Common environment variables:
//
//	HTTP_PORT=8080
//	LOG_LEVEL=info
//	STORE_BACKEND=badger       # memory | badger | redis
//	BADGER_PATH=/data/shelfsense
//	REDIS_ADDR=127.0.0.1:6379
//	SEED_PATH=/etc/shelfsense/seed.yaml
//	COST_DUCKDB_PATH=/data/shelfsense-costs.duckdb
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server gracefully, the cost writer flushes its queue, and the store is
// closed last.
package main
