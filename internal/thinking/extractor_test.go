package thinking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractInline_Basic(t *testing.T) {
	thinking, main := ExtractInline("before <think> the reasoning </think> after")
	assert.Equal(t, "the reasoning", thinking)
	assert.Equal(t, "before  after", main)
}

func TestExtractInline_NoTags(t *testing.T) {
	thinking, main := ExtractInline("just a plain answer")
	assert.Equal(t, "", thinking)
	assert.Equal(t, "just a plain answer", main)
}

func TestExtractInline_EmptyInnerNormalizesToAbsent(t *testing.T) {
	thinking, main := ExtractInline("before <think>   </think> after")
	assert.Equal(t, "", thinking)
	assert.Equal(t, "before  after", main)
}

func TestExtractInline_MultilineReasoning(t *testing.T) {
	thinking, main := ExtractInline("x <think>line one\nline two</think> y")
	assert.Equal(t, "line one\nline two", thinking)
	assert.Equal(t, "x  y", main)
}

func TestExtractInline_OnlyFirstNonEmptySegmentKept(t *testing.T) {
	thinking, main := ExtractInline("<think>first</think> mid <think>second</think> end")
	assert.Equal(t, "first", thinking)
	assert.Equal(t, "mid  end", main)
}

func TestStreamFilter_TagWithinSingleDelta(t *testing.T) {
	f := NewStreamFilter()
	content, think := f.Feed("hello <think>reasoning</think> world")
	assert.Equal(t, "hello  world", content)
	assert.Equal(t, "reasoning", think)
}

func TestStreamFilter_TagSplitAcrossDeltas(t *testing.T) {
	f := NewStreamFilter()
	deltas := []string{"hello <th", "ink>rea", "soning</th", "ink> world"}

	var content, think string
	for _, d := range deltas {
		c, th := f.Feed(d)
		content += c
		think += th
	}
	c, th := f.Flush()
	content += c
	think += th

	assert.Equal(t, "hello  world", content)
	assert.Equal(t, "reasoning", think)
}

func TestStreamFilter_NoTagsPassesThroughAsContent(t *testing.T) {
	f := NewStreamFilter()
	c1, th1 := f.Feed("just ")
	c2, th2 := f.Feed("plain text")
	assert.Equal(t, "", th1)
	assert.Equal(t, "", th2)
	assert.Equal(t, "just plain text", c1+c2)
}

func TestStreamFilter_UnterminatedThinkFlushedAsContent(t *testing.T) {
	f := NewStreamFilter()
	content, think := f.Feed("before <thi")
	assert.Equal(t, "before ", content)
	assert.Equal(t, "", think)

	c, th := f.Flush()
	assert.Equal(t, "<thi", c)
	assert.Equal(t, "", th)
}
