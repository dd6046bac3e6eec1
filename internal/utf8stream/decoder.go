// Package utf8stream implements the stateful byte→string decoder that sits
// at the head of the streaming pipeline (spec §4.3.2): it buffers
// incomplete multi-byte UTF-8 sequences across chunk boundaries so the SSE
// assembler downstream only ever sees valid text.
package utf8stream

import "unicode/utf8"

// Decoder holds the tail of a previous Decode call that didn't yet form a
// complete UTF-8 sequence. It is scoped to exactly one stream — not safe
// for concurrent use, and not reusable across streams.
type Decoder struct {
	pending []byte
}

// New returns a Decoder ready to consume the first chunk of a new stream.
func New() *Decoder { return &Decoder{} }

// Decode returns the longest prefix of pending+p that is complete valid
// UTF-8. Any trailing 1-3 bytes that start a multi-byte sequence are
// retained internally for the next call. Bytes that cannot begin or
// continue any valid sequence at their position are replaced with U+FFFD
// and decoding resynchronizes at the next byte.
func (d *Decoder) Decode(p []byte) string {
	buf := append(d.pending, p...)
	d.pending = nil

	out := make([]rune, 0, len(buf))
	i := 0
	for i < len(buf) {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size <= 1 {
			// Either an invalid byte, or a genuinely incomplete sequence
			// that might still complete once more bytes arrive. Decide
			// which by checking whether a longer read of the same prefix
			// could still become valid if given more bytes.
			if couldBeIncomplete(buf[i:]) {
				d.pending = append(d.pending, buf[i:]...)
				break
			}
			out = append(out, utf8.RuneError)
			i++
			continue
		}
		out = append(out, r)
		i += size
	}
	return string(out)
}

// couldBeIncomplete reports whether b is a prefix of some valid multi-byte
// UTF-8 sequence that simply hasn't arrived in full yet (as opposed to a
// byte that can never be valid, like a stray continuation byte at the
// start of a sequence). Decode passes the rest of its buffer from the failing
// position; an incomplete sequence can only be its final 1-3 bytes, so b of
// 4 or more bytes is never reported as incomplete.
func couldBeIncomplete(b []byte) bool {
	if len(b) == 0 || len(b) >= 4 {
		return false
	}
	lead := b[0]
	var want int
	switch {
	case lead&0b1110_0000 == 0b1100_0000:
		want = 2
	case lead&0b1111_0000 == 0b1110_0000:
		want = 3
	case lead&0b1111_1000 == 0b1111_0000:
		want = 4
	default:
		return false // not a valid lead byte at all
	}
	if len(b) >= want {
		return false // we already have enough bytes; DecodeRune would have succeeded if valid
	}
	// Verify every byte after the lead is a well-formed continuation byte.
	for _, c := range b[1:] {
		if c&0b1100_0000 != 0b1000_0000 {
			return false
		}
	}
	return true
}

// Flush returns any buffered bytes as a best-effort decode: a genuinely
// incomplete trailing sequence is rendered as replacement characters (one
// per leftover byte) since no more bytes are coming.
func (d *Decoder) Flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	out := make([]rune, len(d.pending))
	for i := range out {
		out[i] = utf8.RuneError
	}
	d.pending = nil
	return string(out)
}
