package llmbridge

import (
	"context"

	"github.com/sibylline/llmbridge/llmtypes"
)

// Custom providers satisfy Chat (and, optionally, any of the capability
// interfaces in capability.go) to be installed via Builder.WithCustomProvider
// or NewClient directly (spec §4.9). The façade never type-switches on a
// concrete adapter type — only on which optional interfaces the value
// happens to implement — so an external package can supply any type here
// without this module importing it.

// BaseAdapter is an embeddable helper that gives a custom adapter a Name
// and a fixed Capabilities value, so the adapter author only needs to write
// Chat and ChatStream (and whichever optional traits it wants to support)
// instead of boilerplating the two Adapter methods by hand.
type BaseAdapter struct {
	AdapterName string
	Caps        llmtypes.ProviderCapabilities
}

func (b BaseAdapter) Name() string                               { return b.AdapterName }
func (b BaseAdapter) Capabilities() llmtypes.ProviderCapabilities { return b.Caps }

// EchoAdapter is a minimal deterministic Chat implementation useful for
// tests and for demonstrating the custom-provider seam without a real HTTP
// backend: it echoes the last user message back as the assistant's reply.
// Mirrors the Rust original's custom_provider.rs example, which wires a
// hand-written adapter into the same façade real HTTP-backed adapters use.
type EchoAdapter struct {
	BaseAdapter
}

// NewEchoAdapter returns an EchoAdapter named name, advertising chat and
// streaming only.
func NewEchoAdapter(name string) *EchoAdapter {
	return &EchoAdapter{BaseAdapter{AdapterName: name, Caps: llmtypes.ProviderCapabilities{Chat: true, Streaming: true}}}
}

func lastUserText(messages []llmtypes.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llmtypes.RoleUser {
			return messages[i].Text
		}
	}
	return ""
}

// Chat returns a response whose content is the last user message, verbatim.
func (e *EchoAdapter) Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, params llmtypes.CommonParams) (*llmtypes.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrInvalidInput, "messages must not be empty")
	}
	return &llmtypes.ChatResponse{
		Model:        params.Model,
		Content:      llmtypes.TextContent(lastUserText(messages)),
		FinishReason: llmtypes.FinishStop,
	}, nil
}

// ChatStream emits the echoed reply as a single content delta followed by
// StreamEnd, exercising the same event sequence a real streaming adapter
// would produce.
func (e *EchoAdapter) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, params llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error) {
	if len(messages) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrInvalidInput, "messages must not be empty")
	}
	text := lastUserText(messages)
	out := make(chan llmtypes.ChatStreamEvent, 3)
	out <- llmtypes.StartEvent(map[string]any{"model": params.Model})
	out <- llmtypes.ContentDeltaEvent(text, nil)
	out <- llmtypes.EndEvent(&llmtypes.ChatResponse{Model: params.Model, Content: llmtypes.TextContent(text), FinishReason: llmtypes.FinishStop})
	close(out)
	return out, nil
}
