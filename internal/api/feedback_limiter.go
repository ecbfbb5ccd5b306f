// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultLimiterIdle is how long an unused customer bucket is kept.
const defaultLimiterIdle = time.Hour

// CustomerLimiter is a token bucket per customer id. It bounds how fast one
// customer can append feedback, independent of which IP it arrives from.
type CustomerLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewCustomerLimiter allows perSecond events per customer with the given
// burst. A non-positive perSecond disables limiting.
func NewCustomerLimiter(perSecond float64, burst int) *CustomerLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &CustomerLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     limit,
		burst:    burst,
		idle:     defaultLimiterIdle,
		now:      time.Now,
	}
}

// Allow reports whether the customer may record another event now.
func (l *CustomerLimiter) Allow(customerID string) bool {
	if l.rate == rate.Inf {
		return true
	}

	now := l.now()
	l.mu.Lock()
	entry, ok := l.limiters[customerID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[customerID] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Prune drops buckets idle for longer than the idle window and returns how
// many were removed.
func (l *CustomerLimiter) Prune() int {
	threshold := l.now().Add(-l.idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked customers.
func (l *CustomerLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Serve prunes idle buckets until ctx is canceled. It implements
// suture.Service.
func (l *CustomerLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.idle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Prune()
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (l *CustomerLimiter) String() string {
	return "feedback-limiter"
}
