// Package thinking extracts "<think>...</think>" inline reasoning segments
// from model output, both from a complete string (non-streaming) and
// incrementally from a sequence of content deltas (streaming), per spec
// §4.5. A native reasoning field reported separately by a provider bypasses
// this package entirely — the adapter uses it as-is.
package thinking

import (
	"regexp"
	"strings"
)

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

var inlinePattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// HasTags reports whether content contains either half of a think tag —
// the cheap presence test spec §4.5 calls for before doing any extraction
// work.
func HasTags(content string) bool {
	return strings.Contains(content, openTag) || strings.Contains(content, closeTag)
}

// ExtractInline finds the first non-empty <think>...</think> segment in
// content (non-greedy, dot-matches-newline) and returns its trimmed inner
// text plus the main content with every such segment removed and the
// result trimmed. If content has no tags, thinking is "" and main equals
// content unchanged.
func ExtractInline(content string) (thinking string, main string) {
	if !HasTags(content) {
		return "", content
	}

	matches := inlinePattern.FindAllStringSubmatchIndex(content, -1)
	for _, m := range matches {
		inner := strings.TrimSpace(content[m[2]:m[3]])
		if inner != "" && thinking == "" {
			thinking = inner
		}
	}

	main = inlinePattern.ReplaceAllString(content, "")
	main = strings.TrimSpace(main)
	return thinking, main
}

// StreamFilter splits a sequence of content deltas into content and
// thinking portions as <think> tags arrive, possibly split across delta
// boundaries. It is stateful and scoped to a single stream.
type StreamFilter struct {
	pending    string
	inThinking bool
}

// NewStreamFilter returns a StreamFilter ready to process the first delta
// of a new stream.
func NewStreamFilter() *StreamFilter { return &StreamFilter{} }

// Feed processes one incoming content delta and returns the portions that
// belong to the main content and to thinking, respectively. Either may be
// empty. A delta that straddles a tag boundary is split accordingly.
func (f *StreamFilter) Feed(delta string) (content string, thinkingOut string) {
	f.pending += delta

	var contentBuf, thinkingBuf strings.Builder

	for {
		tag := openTag
		if f.inThinking {
			tag = closeTag
		}

		idx := strings.Index(f.pending, tag)
		if idx >= 0 {
			before := f.pending[:idx]
			if f.inThinking {
				thinkingBuf.WriteString(before)
			} else {
				contentBuf.WriteString(before)
			}
			f.pending = f.pending[idx+len(tag):]
			f.inThinking = !f.inThinking
			continue
		}

		// No full tag in the buffer. Hold back any suffix that could still
		// become a tag once more bytes arrive; emit the rest now.
		safe := len(f.pending) - partialSuffixMatch(f.pending, tag)
		emit := f.pending[:safe]
		if f.inThinking {
			thinkingBuf.WriteString(emit)
		} else {
			contentBuf.WriteString(emit)
		}
		f.pending = f.pending[safe:]
		break
	}

	return contentBuf.String(), thinkingBuf.String()
}

// Flush emits whatever remains buffered — a tag that never completed turns
// out to have just been ordinary text, so it is emitted to whichever
// stream (content or thinking) was active when the stream ended.
func (f *StreamFilter) Flush() (content string, thinkingOut string) {
	if f.pending == "" {
		return "", ""
	}
	rest := f.pending
	f.pending = ""
	if f.inThinking {
		return "", rest
	}
	return rest, ""
}

// partialSuffixMatch returns the length of the longest suffix of s that is
// a proper, non-empty prefix of tag — i.e. how many trailing bytes of s
// might be the start of tag arriving split across two deltas.
func partialSuffixMatch(s, tag string) int {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for l := max; l > 0; l-- {
		if strings.HasSuffix(s, tag[:l]) {
			return l
		}
	}
	return 0
}
