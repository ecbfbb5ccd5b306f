// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

/*
Package cache provides the analysis result cache that sits in front of the
recommendation engine, plus a small in-process memo for hot read paths.

# Result Cache

ResultCache stores computed payloads in the persistent store, keyed by a
deterministic fingerprint of the request:

	records sorted by date -> "productId-quantity-date" tuples
	+ analysis type + max recommendations
	-> SHA-256, truncated to 32 hex chars

The full key is fingerprint:customerID:analysisType. Each analysis type has its
own policy:

	consumption     60m TTL, 10 entries per customer
	profiling      720m TTL,  5 entries per customer
	recommendation  30m TTL, 15 entries per customer

An expired entry is deleted on read and reported as a miss. After every write
the oldest entries beyond the per-customer cap are deleted.

Caching is best effort. Store failures are logged and counted, then treated
as a miss (Get) or a dropped write (Set); they never surface to callers.

# Ad-hoc Cache

GetKey/SetKey cache arbitrary payloads outside the fingerprint scheme with a
default one hour TTL.

# Memo

Memo is a mutex-guarded in-process TTL map used to hold short-lived snapshots
such as the catalog listing.
*/
package cache
