package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sibylline/llmbridge/llmtypes"
)

// RedisOptions configures a Redis-backed Cache so the response cache can be
// shared across multiple llmbridge processes instead of living in one.
type RedisOptions struct {
	Addrs      []string      // single-node: one address; multiple enables cluster mode
	Password   string
	DB         int           // ignored in cluster mode
	KeyPrefix  string        // default "llmbridge"
	DefaultTTL time.Duration // default 10m
}

// Redis is a Cache backed by a Redis (or Redis Cluster) deployment.
// Responses are stored JSON-encoded; TTL is enforced by Redis itself via
// SET...EX, so expired entries simply disappear rather than needing
// explicit sweeping.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	statsLock  sync.Mutex
	stats      Stats
}

// NewRedis connects to Redis per opts and verifies connectivity with a
// Ping before returning, so configuration mistakes surface immediately
// instead of on the first cache lookup.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if len(opts.Addrs) == 0 {
		opts.Addrs = []string{"localhost:6379"}
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "llmbridge"
	}
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = 10 * time.Minute
	}

	var client redis.UniversalClient
	if len(opts.Addrs) == 1 {
		client = redis.NewClient(&redis.Options{
			Addr:     opts.Addrs[0],
			Password: opts.Password,
			DB:       opts.DB,
		})
	} else {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    opts.Addrs,
			Password: opts.Password,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis at %v: %w", opts.Addrs, err)
	}

	return &Redis{
		client:     client,
		prefix:     opts.KeyPrefix,
		defaultTTL: opts.DefaultTTL,
	}, nil
}

func (c *Redis) redisKey(key string) string {
	return c.prefix + ":response:" + key
}

// Get returns the cached response, decoding it from its JSON encoding. A
// redis.Nil miss is reported as (nil, false, nil), never as an error.
func (c *Redis) Get(ctx context.Context, key string) (*llmtypes.ChatResponse, bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Result()
	if err == redis.Nil {
		c.statsLock.Lock()
		c.stats.Misses++
		c.statsLock.Unlock()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, llmtypes.WrapError(llmtypes.ErrTransport, "cache: redis get failed", err)
	}

	var resp llmtypes.ChatResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false, llmtypes.WrapError(llmtypes.ErrParse, "cache: decode cached response", err)
	}

	c.statsLock.Lock()
	c.stats.Hits++
	c.statsLock.Unlock()
	return &resp, true, nil
}

// Set JSON-encodes resp and stores it with the given TTL (or the cache's
// default when ttl is 0).
func (c *Redis) Set(ctx context.Context, key string, resp *llmtypes.ChatResponse, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	encoded, err := json.Marshal(resp)
	if err != nil {
		return llmtypes.WrapError(llmtypes.ErrInvalidInput, "cache: encode response for caching", err)
	}
	if err := c.client.Set(ctx, c.redisKey(key), encoded, ttl).Err(); err != nil {
		return llmtypes.WrapError(llmtypes.ErrTransport, "cache: redis set failed", err)
	}
	return nil
}

// Stats returns the process-local hit/miss counters observed by this
// client. Size and Evictions are not tracked here — Redis owns eviction
// under its own maxmemory policy, and computing Size would require an
// O(n) SCAN on every call.
func (c *Redis) Stats() Stats {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()
	return c.stats
}

// Close releases the underlying Redis connection pool.
func (c *Redis) Close() error { return c.client.Close() }
