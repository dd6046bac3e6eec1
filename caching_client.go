package llmbridge

import (
	"context"
	"time"

	"github.com/sibylline/llmbridge/internal/cache"
	"github.com/sibylline/llmbridge/llmtypes"
)

// CachingClient wraps a Client with a content-addressed response cache
// (spec §4.6): identical (params, messages, tools) triples hit the cache
// instead of making a new request. Streaming calls are never cached —
// only Chat/ChatWithTools go through the cache, matching the contract's
// "mutating an in-flight response cache when called via the cached
// wrapper" side effect in spec §4.1.
type CachingClient struct {
	*Client
	cache cache.Cache
	ttl   time.Duration
}

// NewCachingClient wraps client with an in-process LRU+TTL cache of the
// given capacity and per-entry ttl.
func NewCachingClient(client *Client, capacity int, ttl time.Duration) *CachingClient {
	return &CachingClient{Client: client, cache: cache.NewLRU(capacity, ttl), ttl: ttl}
}

// NewCachingClientWithBackend wraps client with a caller-supplied Cache
// implementation, e.g. a Redis-backed cache shared across processes.
func NewCachingClientWithBackend(client *Client, backend cache.Cache, ttl time.Duration) *CachingClient {
	return &CachingClient{Client: client, cache: backend, ttl: ttl}
}

// Chat overrides Client.Chat with a cache lookup keyed on the request's
// content fingerprint.
func (c *CachingClient) Chat(ctx context.Context, messages []llmtypes.ChatMessage) (*llmtypes.ChatResponse, error) {
	return c.chatCached(ctx, messages, nil)
}

// ChatWithTools overrides Client.ChatWithTools with a cache lookup keyed on
// the request's content fingerprint, including the tool declarations.
func (c *CachingClient) ChatWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (*llmtypes.ChatResponse, error) {
	return c.chatCached(ctx, messages, tools)
}

func (c *CachingClient) chatCached(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (*llmtypes.ChatResponse, error) {
	key, err := cache.Fingerprint(c.Client.params, messages, tools)
	if err != nil {
		return nil, err
	}

	if resp, hit, err := c.cache.Get(ctx, key); err != nil {
		return nil, err
	} else if hit {
		if c.Client.metrics != nil {
			c.Client.metrics.ObserveCache(true)
		}
		return resp, nil
	}
	if c.Client.metrics != nil {
		c.Client.metrics.ObserveCache(false)
	}

	resp, err := c.Client.adapter.Chat(ctx, messages, tools, c.Client.params)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, resp, c.ttl); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close releases the underlying cache backend (a no-op for the in-process
// LRU, a connection close for the Redis-backed variant).
func (c *CachingClient) Close() error { return c.cache.Close() }
