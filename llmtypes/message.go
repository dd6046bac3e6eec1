// Package llmtypes holds the provider-agnostic data model shared by the
// façade, the streaming engine, and every provider adapter: messages,
// content parts, tools, responses, usage, and the error taxonomy. It has no
// dependency on the façade or on any adapter, so adapters can depend on it
// without creating an import cycle back to the façade package.
package llmtypes

// Role identifies who authored a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleDeveloper Role = "developer"
	RoleTool      Role = "tool"
)

// ChatMessage is one turn in a conversation. Content is either a plain
// string (Text) or an ordered list of ContentPart (Parts) for multimodal
// messages; exactly one of the two should be set.
//
// Invariant: a Tool-role message must carry ToolCallID. An Assistant
// message that invoked tools carries ToolCalls, Content, or both.
type ChatMessage struct {
	Role       Role
	Text       string
	Parts      []ContentPart
	ToolCallID string     // set only when Role == RoleTool
	ToolCalls  []ToolCall // set on Assistant messages that invoked tools
}

// HasParts reports whether the message carries structured multimodal
// content instead of (or in addition to) plain text.
func (m ChatMessage) HasParts() bool { return len(m.Parts) > 0 }

// NewSystemMessage builds a system-role text message.
func NewSystemMessage(text string) ChatMessage { return ChatMessage{Role: RoleSystem, Text: text} }

// NewUserMessage builds a user-role text message.
func NewUserMessage(text string) ChatMessage { return ChatMessage{Role: RoleUser, Text: text} }

// NewAssistantMessage builds an assistant-role text message.
func NewAssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: text}
}

// NewToolResultMessage builds a tool-role message carrying the result of a
// tool call, keyed by the id the model originally issued.
func NewToolResultMessage(toolCallID, result string) ChatMessage {
	return ChatMessage{Role: RoleTool, Text: result, ToolCallID: toolCallID}
}

// ImageDetail controls how much visual detail a provider should extract
// from an Image content part, where supported.
type ImageDetail string

const (
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
	ImageDetailAuto ImageDetail = "auto"
)

// ContentPartKind discriminates ContentPart's tagged-union variants.
type ContentPartKind string

const (
	ContentPartText  ContentPartKind = "text"
	ContentPartImage ContentPartKind = "image"
	ContentPartAudio ContentPartKind = "audio"
)

// ContentPart is one element of a multimodal message. Order within a
// message's Parts slice is semantically significant — images interleave
// with text in arrival order.
type ContentPart struct {
	Kind ContentPartKind

	// Text is populated when Kind == ContentPartText.
	Text string

	// URL is populated when Kind == ContentPartImage or ContentPartAudio.
	// It may be an http(s) URL or a data: URI.
	URL string

	// Detail is populated only for ContentPartImage, when specified.
	Detail ImageDetail

	// Format is populated only for ContentPartAudio (e.g. "mp3", "wav").
	Format string
}

// TextPart builds a text ContentPart.
func TextPart(text string) ContentPart { return ContentPart{Kind: ContentPartText, Text: text} }

// ImagePart builds an image ContentPart.
func ImagePart(url string, detail ImageDetail) ContentPart {
	return ContentPart{Kind: ContentPartImage, URL: url, Detail: detail}
}

// AudioPart builds an audio ContentPart.
func AudioPart(url, format string) ContentPart {
	return ContentPart{Kind: ContentPartAudio, URL: url, Format: format}
}

// Tool describes a function the model may call. Once constructed a Tool is
// treated as immutable by the rest of the library.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON-schema object
}

// ToolCall is a model-requested function invocation. Within one response,
// ids are unique.
type ToolCall struct {
	ID       string
	Type     string // always "function" today, kept for forward compatibility
	Function ToolCallFunction
}

// ToolCallFunction names the function and carries its (possibly partial,
// during streaming) stringified JSON arguments.
type ToolCallFunction struct {
	Name      string
	Arguments string
}
