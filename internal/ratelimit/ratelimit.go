// Package ratelimit throttles outbound requests to a backend so a caller
// making many concurrent calls through the same Client doesn't trip a
// provider's own rate limiting.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Stats reports how a Limiter's calls were disposed.
type Stats struct {
	Allowed    int
	Throttled  int
	TotalCalls int
}

// Limiter is a token-bucket rate limiter: requestsPerSecond tokens refill
// per second, up to burst tokens may be spent without waiting.
type Limiter struct {
	limiter *rate.Limiter

	mu    sync.Mutex
	stats Stats
}

// New returns a Limiter admitting requestsPerSecond requests per second on
// average, with bursts of up to burst requests.
func New(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow reports whether a request may proceed immediately, without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.TotalCalls++
	if l.limiter.Allow() {
		l.stats.Allowed++
		return true
	}
	l.stats.Throttled++
	return false
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	l.stats.TotalCalls++
	l.mu.Unlock()

	err := l.limiter.Wait(ctx)

	l.mu.Lock()
	if err == nil {
		l.stats.Allowed++
	} else {
		l.stats.Throttled++
	}
	l.mu.Unlock()

	return err
}

// Stats returns a snapshot of the limiter's counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
