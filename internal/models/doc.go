// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

/*
Package models defines the wire types of the HTTP API.

Every response uses the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 4, "cached": true}
	}

Errors set status to "error" and carry an APIError with a stable code.
Request DTOs carry validate tags checked by the validation package before a
handler touches the recommendation service.
*/
package models
