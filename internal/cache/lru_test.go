package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func resp(text string) *llmtypes.ChatResponse {
	return &llmtypes.ChatResponse{Content: llmtypes.TextContent(text)}
}

func TestLRU_MissThenHit(t *testing.T) {
	c := NewLRU(10, time.Minute)
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
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", resp("a"), 0))
	require.NoError(t, c.Set(ctx, "b", resp("b"), 0))

	// touch "a" so "b" becomes the least-recently-used entry
	_, _, _ = c.Get(ctx, "a")

	require.NoError(t, c.Set(ctx, "c", resp("c"), 0))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")

	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)

	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestLRU_ExpiredEntryIsTreatedAsMiss(t *testing.T) {
	c := NewLRU(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", resp("hello"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLRU_StatsReportsCapacityAndHitRate(t *testing.T) {
	c := NewLRU(5, time.Minute)
	ctx := context.Background()

	assert.Zero(t, c.Stats().HitRate(), "hit rate is 0 before any lookups")

	require.NoError(t, c.Set(ctx, "k1", resp("hello"), 0))
	_, _, _ = c.Get(ctx, "k1")  // hit
	_, _, _ = c.Get(ctx, "k1")  // hit
	_, _, _ = c.Get(ctx, "k2")  // miss

	stats := c.Stats()
	assert.Equal(t, 5, stats.Capacity)
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 0.0001)
}

func TestLRU_SetOverwritesExistingKeyWithoutGrowingSize(t *testing.T) {
	c := NewLRU(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", resp("first"), 0))
	require.NoError(t, c.Set(ctx, "k1", resp("second"), 0))

	got, ok, _ := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "second", got.ContentText())
	assert.Equal(t, 1, c.Stats().Size)
}
