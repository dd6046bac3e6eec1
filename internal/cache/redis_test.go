package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisOptions{
		Addrs:      []string{mr.Addr()},
		KeyPrefix:  "test",
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_MissThenHit(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", resp("hello"), 0))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", got.ContentText())

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.Zero(t, stats.Capacity, "Redis cache reports no fixed capacity")
	assert.InDelta(t, 0.5, stats.HitRate(), 0.0001)
}

func TestRedis_NamespacesKeysByPrefix(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "shared-key", resp("a"), 0))
	got, ok, err := c.Get(ctx, "shared-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.ContentText())
	assert.Equal(t, "test:response:shared-key", c.redisKey("shared-key"))
}

func TestRedis_ExpiredEntryIsTreatedAsMiss(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", resp("hello"), 50*time.Millisecond))
	mr.FastForward(100 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}
