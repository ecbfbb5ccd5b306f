// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package recommend implements the retail recommendation engine.
//
// # Architecture
//
// A request flows through three layers:
//
//   - Service: the caller-facing facade. It checks the fingerprinted
//     result cache, delegates to the Engine on a miss, stores the result
//     and records cost.
//   - Engine: the blender. It loads customer inputs, runs every registered
//     signal generator concurrently, merges their items and labels the
//     result with an algorithm type and a fixed confidence.
//   - Generators: independent producers of candidate items, one per
//     SignalKind. Implementations live in the signals subpackage.
//
// # Signals
//
//   - Collaborative: products similar to recent purchases, plus
//     complementary products from adjacent categories
//   - Content-based: favorite categories and preferred brands within budget
//   - Interaction-based: products similar to recent views, plus items left
//     in the cart
//   - Popularity: catalog items by stock on hand, used to fill remaining slots
//
// A failing generator contributes nothing and never fails the request. When
// no personalized generator completes, the Engine returns a popularity-only
// fallback result.
//
// # Determinism
//
// Every ranking in this package breaks score ties by product id ascending,
// so results never depend on goroutine scheduling or catalog iteration order.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, directory, generators, logger)
//	result, err := engine.Generate(ctx, "cust-1", nil, 10)
package recommend
