// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

/*
Package supervisor runs the long-lived parts of the process under a suture
supervisor tree.

The tree has three layers, each its own supervisor so a crash loop in one
layer backs off without taking the others down:

	shelfsense
	├── data-layer         cost tracker batch writer
	├── maintenance-layer  cache/result janitor, feedback limiter pruning
	└── api-layer          HTTP server

Supervisor events are logged through sutureslog using the zerolog-backed
slog.Logger from the logging package.
*/
package supervisor
