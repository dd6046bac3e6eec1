// Package sse implements the SSE line assembler and the FIFO event queue
// that sit downstream of the UTF-8 decoder in the streaming pipeline (spec
// §4.3.3, §4.3.4). The assembler only knows about line framing; parsing
// "data:"/"event:" payloads into ChatStreamEvents is the adapter's job.
package sse

import (
	"strings"

	"github.com/sibylline/llmbridge/llmtypes"
)

// DefaultMaxBuffer is the backpressure cap from spec §5: the assembler's
// buffer is bounded so a runaway stream can't OOM the process.
const DefaultMaxBuffer = 4 << 20 // 4 MiB

// Assembler buffers arriving decoded text and emits complete lines, one per
// '\n'. It is stateful and scoped to exactly one stream.
type Assembler struct {
	buf      strings.Builder
	maxBytes int
}

// NewAssembler returns an Assembler with the default 4 MiB backpressure cap.
func NewAssembler() *Assembler { return &Assembler{maxBytes: DefaultMaxBuffer} }

// Feed appends text to the internal buffer and returns every complete line
// found so far (trimmed of a trailing '\r', to support CRLF). Anything
// after the last '\n' remains buffered for the next Feed or Flush call.
//
// Returns a *llmtypes.Error{Kind: ErrStream} if the unterminated buffer
// would exceed the backpressure cap.
func (a *Assembler) Feed(text string) ([]string, error) {
	a.buf.WriteString(text)
	combined := a.buf.String()

	var lines []string
	start := 0
	for {
		idx := strings.IndexByte(combined[start:], '\n')
		if idx < 0 {
			break
		}
		line := combined[start : start+idx]
		line = strings.TrimSuffix(line, "\r")
		lines = append(lines, line)
		start += idx + 1
	}

	remainder := combined[start:]
	if len(remainder) > a.maxBytes {
		return lines, llmtypes.NewError(llmtypes.ErrStream, "SSE buffer exceeded backpressure cap")
	}

	a.buf.Reset()
	a.buf.WriteString(remainder)
	return lines, nil
}

// Flush emits whatever remains buffered if it looks like the start of an
// SSE field ("data: " or "event: ") even without a trailing newline — this
// lets the last event of a stream that ends without a final blank line
// still be observed. Anything else is dropped, per spec §4.3.3.
func (a *Assembler) Flush() (string, bool) {
	remainder := a.buf.String()
	a.buf.Reset()
	if strings.HasPrefix(remainder, "data: ") || strings.HasPrefix(remainder, "event: ") {
		return strings.TrimSuffix(remainder, "\r"), true
	}
	return "", false
}

// IsIgnorable reports whether a line should be skipped by the adapter
// parser: blank lines and SSE comment lines (starting with ':').
func IsIgnorable(line string) bool {
	return line == "" || strings.HasPrefix(line, ":")
}

// DataPayload extracts the JSON payload from a "data: ..." line. ok is
// false if the line doesn't carry the "data: " prefix.
func DataPayload(line string) (string, bool) {
	const prefix = "data: "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimPrefix(line, prefix), true
}

// EventName extracts the event name from an "event: ..." line (Anthropic's
// named-event dialect). ok is false if the line doesn't carry the prefix.
func EventName(line string) (string, bool) {
	const prefix = "event: "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimPrefix(line, prefix), true
}

// IsDone reports whether a data payload is the OpenAI-style [DONE] sentinel
// (spec §4.3.5).
func IsDone(payload string) bool { return payload == "[DONE]" }
