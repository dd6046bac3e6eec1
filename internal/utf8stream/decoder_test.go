package utf8stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_WholeChunk(t *testing.T) {
	d := New()
	got := d.Decode([]byte("hello world"))
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "", d.Flush())
}

func TestDecoder_SplitAcrossEveryByteBoundary(t *testing.T) {
	want := "你好世界" // multi-byte CJK text, 3 bytes per rune in UTF-8
	full := []byte(want)

	for split := 0; split <= len(full); split++ {
		d := New()
		var got string
		got += d.Decode(full[:split])
		got += d.Decode(full[split:])
		got += d.Flush()
		require.Equal(t, want, got, "split at byte %d", split)
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	want := "a你b好c世d界e"
	full := []byte(want)

	d := New()
	var got string
	for _, b := range full {
		got += d.Decode([]byte{b})
	}
	got += d.Flush()
	assert.Equal(t, want, got)
}

func TestDecoder_InvalidByteResynchronizes(t *testing.T) {
	d := New()
	// 0xFF is never a valid UTF-8 lead byte.
	got := d.Decode([]byte{'a', 0xFF, 'b'})
	assert.Equal(t, "a�b", got)
}

func TestDecoder_FlushIncompleteSequence(t *testing.T) {
	d := New()
	full := []byte("世") // 3-byte sequence
	got := d.Decode(full[:2])
	assert.Equal(t, "", got)
	flushed := d.Flush()
	assert.Equal(t, "��", flushed)
}

func TestDecoder_EmptyInput(t *testing.T) {
	d := New()
	assert.Equal(t, "", d.Decode(nil))
	assert.Equal(t, "", d.Flush())
}
