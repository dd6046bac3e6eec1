package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler_LineBoundary(t *testing.T) {
	a := NewAssembler()
	lines, err := a.Feed("data: one\ndata: two\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"data: one", "data: two"}, lines)
}

func TestAssembler_ArbitraryChunkBoundaries(t *testing.T) {
	full := "data: a\ndata: b\ndata: c\n"
	for split := 0; split <= len(full); split++ {
		a := NewAssembler()
		var got []string
		l1, err := a.Feed(full[:split])
		require.NoError(t, err)
		got = append(got, l1...)
		l2, err := a.Feed(full[split:])
		require.NoError(t, err)
		got = append(got, l2...)
		require.Equal(t, []string{"data: a", "data: b", "data: c"}, got, "split at %d", split)
	}
}

func TestAssembler_CRLF(t *testing.T) {
	a := NewAssembler()
	lines, err := a.Feed("data: one\r\ndata: two\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"data: one", "data: two"}, lines)
}

func TestAssembler_FlushPartialDataLine(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed("data: trailing-no-newline")
	require.NoError(t, err)
	flushed, ok := a.Flush()
	assert.True(t, ok)
	assert.Equal(t, "data: trailing-no-newline", flushed)
}

func TestAssembler_FlushDropsNonEventRemainder(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed("garbage without newline")
	require.NoError(t, err)
	_, ok := a.Flush()
	assert.False(t, ok)
}

func TestAssembler_BackpressureCap(t *testing.T) {
	a := NewAssembler()
	a.maxBytes = 8
	_, err := a.Feed(strings.Repeat("x", 100))
	assert.Error(t, err)
}

func TestDataPayloadAndDone(t *testing.T) {
	p, ok := DataPayload("data: {\"a\":1}")
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, p)

	_, ok = DataPayload("event: message_start")
	assert.False(t, ok)

	assert.True(t, IsDone("[DONE]"))
	assert.False(t, IsDone("{}"))
}

func TestIsIgnorable(t *testing.T) {
	assert.True(t, IsIgnorable(""))
	assert.True(t, IsIgnorable(": comment"))
	assert.False(t, IsIgnorable("data: x"))
}
