// Package cache implements the response cache described in spec §4.6: an
// in-process LRU+TTL store keyed by a content fingerprint of the request,
// plus a Redis-backed variant behind the same interface for callers that
// want the cache shared across processes.
package cache

import (
	"context"
	"time"

	"github.com/sibylline/llmbridge/llmtypes"
)

// Cache is the interface the façade's CachingClient wraps around. Get
// reports (response, true, nil) on a hit, (nil, false, nil) on a clean miss,
// and a non-nil error only for a genuine backend failure (e.g. Redis
// unreachable) — a miss is never itself an error.
type Cache interface {
	Get(ctx context.Context, key string) (*llmtypes.ChatResponse, bool, error)
	Set(ctx context.Context, key string, resp *llmtypes.ChatResponse, ttl time.Duration) error
	Close() error
}

// Stats reports cumulative cache counters, as returned by the LRU and Redis
// caches' Stats methods and asserted by tests of property P7/P8 behavior.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int // 0 means unbounded (e.g. Redis, which has no fixed entry cap here)
}

// HitRate returns hits/(hits+misses), recomputed from the current counters
// on every call (spec §4.6, property P8). It is defined as 0 when no
// lookups have been recorded yet, rather than dividing by zero.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
