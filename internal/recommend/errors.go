// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package recommend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown customers or products.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable is returned when a collaborator times out or is down.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformed marks input data that could not be interpreted.
	ErrMalformed = errors.New("malformed data")

	// ErrTotalComputeFailure means no personalized signal completed.
	ErrTotalComputeFailure = errors.New("every recommendation signal failed")

	// ErrInvalidRequest is returned for caller errors such as a missing customer id.
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorKind is the coarse error taxonomy used in logs and metrics.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindNotFound            ErrorKind = "not_found"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindMalformed           ErrorKind = "malformed"
	KindInternal            ErrorKind = "internal"
)

// Classify maps err onto the taxonomy.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	default:
		return KindInternal
	}
}

// SignalError wraps the failure of one generator.
type SignalError struct {
	Signal SignalKind
	Err    error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal %s: %v", e.Signal, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}
