// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/store/...
//
// Tests call SkipIfNoDocker first so they skip cleanly on machines without
// a Docker daemon.
//
//	func TestRedis(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis.Container)
//	    // connect to redis.Addr
//	}
package testinfra
