package llmtypes

// FinishReason explains why a model stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishOther         FinishReason = "other"
)

// OtherFinishReason wraps a provider-specific finish-reason tag that
// doesn't map to one of the standard FinishReason values, preserving it in
// ChatResponse.FinishReasonTag.
func OtherFinishReason(tag string) (FinishReason, string) { return FinishOther, tag }

// Usage holds token accounting. Values are non-negative; ReasoningTokens and
// CachedTokens are pointers because most providers don't report them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ReasoningTokens  *int
	CachedTokens     *int
}

// Add returns the field-wise sum of u and other; u itself is unchanged.
// Summing is not always right for incrementally reported usage — callers
// that need "last wins" semantics
// (spec §4.2) should assign wholesale instead of calling Add. Add exists for
// adapters that must sum partial counts from multiple response segments
// (e.g. a chained Responses API continuation).
func (u Usage) Add(other Usage) Usage {
	sum := Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
	if u.ReasoningTokens != nil || other.ReasoningTokens != nil {
		v := derefInt(u.ReasoningTokens) + derefInt(other.ReasoningTokens)
		sum.ReasoningTokens = &v
	}
	if u.CachedTokens != nil || other.CachedTokens != nil {
		v := derefInt(u.CachedTokens) + derefInt(other.CachedTokens)
		sum.CachedTokens = &v
	}
	return sum
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// MessageContentKind discriminates ChatResponse.Content's shape.
type MessageContentKind string

const (
	MessageContentText       MessageContentKind = "text"
	MessageContentMultiModal MessageContentKind = "multimodal"
)

// MessageContent is the Text-or-MultiModal content carried by a ChatResponse.
type MessageContent struct {
	Kind  MessageContentKind
	Text  string
	Parts []ContentPart
}

// TextContent builds a plain-text MessageContent.
func TextContent(text string) MessageContent {
	return MessageContent{Kind: MessageContentText, Text: text}
}

// MultiModalContent builds a multi-part MessageContent.
func MultiModalContent(parts []ContentPart) MessageContent {
	return MessageContent{Kind: MessageContentMultiModal, Parts: parts}
}

// ChatResponse is the unified result of a non-streaming chat call.
//
// Invariant: if FinishReason == FinishToolCalls then ToolCalls is non-empty.
type ChatResponse struct {
	ID              string
	Content         MessageContent
	Model           string
	Usage           *Usage
	FinishReason    FinishReason
	FinishReasonTag string // populated only when FinishReason == FinishOther
	ToolCalls       []ToolCall
	Thinking        string
	Metadata        map[string]any // provider-labeled passthrough metadata
}

// ContentText returns the response's text content: the plain text, or for a
// multimodal response the text of its first text part (later text parts are
// not included). Returns "" if there is no text.
func (r *ChatResponse) ContentText() string {
	if r == nil {
		return ""
	}
	switch r.Content.Kind {
	case MessageContentText:
		return r.Content.Text
	case MessageContentMultiModal:
		for _, p := range r.Content.Parts {
			if p.Kind == ContentPartText {
				return p.Text
			}
		}
	}
	return ""
}
