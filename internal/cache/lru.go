package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/sibylline/llmbridge/llmtypes"
)

// LRU is an in-process, size-bounded, per-entry-TTL response cache (spec
// §4.6, properties P7 and P8). A single mutex guards the whole structure —
// response caching is not a hot enough path to need finer-grained locking,
// and it keeps the eviction bookkeeping trivially correct.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration // default TTL used when Set is called with ttl == 0
	ll       *list.List    // front = most recently used
	items    map[string]*list.Element
	stats    Stats
}

type lruEntry struct {
	key      string
	resp     *llmtypes.ChatResponse
	expireAt time.Time
}

// NewLRU returns an LRU cache holding at most capacity entries, each with a
// default TTL of defaultTTL (ignored when Set supplies its own ttl).
func NewLRU(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		ttl:      defaultTTL,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get looks up key. An entry past its expiry is treated as a miss and
// evicted on the spot (spec P8: expired entries never surface as hits).
func (c *LRU) Get(_ context.Context, key string) (*llmtypes.ChatResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false, nil
	}
	e := el.Value.(*lruEntry)
	if time.Now().After(e.expireAt) {
		c.removeElement(el)
		c.stats.Misses++
		return nil, false, nil
	}

	c.ll.MoveToFront(el)
	c.stats.Hits++
	return e.resp, true, nil
}

// Set inserts or refreshes key, evicting the least-recently-used entry if
// the cache is at capacity. ttl == 0 uses the cache's default TTL.
func (c *LRU) Set(_ context.Context, key string, resp *llmtypes.ChatResponse, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*lruEntry)
		e.resp = resp
		e.expireAt = time.Now().Add(ttl)
		c.ll.MoveToFront(el)
		return nil
	}

	el := c.ll.PushFront(&lruEntry{key: key, resp: resp, expireAt: time.Now().Add(ttl)})
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.removeElement(oldest)
			c.stats.Evictions++
		}
	}
	return nil
}

// removeElement drops el from both the list and the index. Callers must
// hold c.mu.
func (c *LRU) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry).key)
}

// Stats returns a snapshot of cumulative hit/miss/eviction counters, plus
// the cache's current size and fixed capacity.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.ll.Len()
	s.Capacity = c.capacity
	return s
}

// Close is a no-op for the in-process cache; it exists to satisfy Cache.
func (c *LRU) Close() error { return nil }
