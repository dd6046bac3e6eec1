// Package llmbridge is the public façade over heterogeneous LLM HTTP APIs
// (OpenAI, Anthropic, Gemini, xAI, Groq, DeepSeek, OpenRouter, Ollama, and
// any external custom provider). The capability surface is intentionally
// small and orthogonal: Chat is the only trait every adapter must satisfy;
// every other capability is optional, and the façade forwards a call to the
// adapter only when the adapter itself implements that trait, returning
// Unsupported otherwise.
package llmbridge

import (
	"context"

	"github.com/sibylline/llmbridge/llmtypes"
)

// Adapter is the base a provider must satisfy to be installed behind a
// Client: a name for diagnostics and a capability flag set for supports().
type Adapter interface {
	Name() string
	Capabilities() llmtypes.ProviderCapabilities
}

// Chat is the one capability every adapter implements: non-streaming chat
// with optional tools, and streaming chat with optional tools.
type Chat interface {
	Adapter
	Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, params llmtypes.CommonParams) (*llmtypes.ChatResponse, error)
	ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, params llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error)
}

// Embedder is the optional embedding capability.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) (*llmtypes.EmbeddingResponse, error)
}

// AudioCapability is the optional text-to-speech / speech-to-text trait.
type AudioCapability interface {
	TextToSpeech(ctx context.Context, req llmtypes.TtsRequest) (*llmtypes.TtsResponse, error)
	SpeechToText(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error)
	TranslateAudio(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error)
}

// ImageCapability is the optional image generation/edit/variation trait.
type ImageCapability interface {
	GenerateImages(ctx context.Context, req llmtypes.ImageGenerationRequest) ([]llmtypes.GeneratedImage, error)
	EditImage(ctx context.Context, req llmtypes.ImageEditRequest) ([]llmtypes.GeneratedImage, error)
	CreateVariation(ctx context.Context, req llmtypes.ImageVariationRequest) ([]llmtypes.GeneratedImage, error)
}

// FileManagement is the optional file storage trait.
type FileManagement interface {
	UploadFile(ctx context.Context, req llmtypes.FileUploadRequest) (*llmtypes.FileObject, error)
	ListFiles(ctx context.Context, query llmtypes.FileListQuery) ([]llmtypes.FileObject, error)
	DeleteFile(ctx context.Context, id string) error
}

// Moderation is the optional content-moderation trait.
type Moderation interface {
	Moderate(ctx context.Context, text string) (*llmtypes.ModerationResult, error)
}

// ModelListing is the optional model-catalog trait.
type ModelListing interface {
	ListModels(ctx context.Context) ([]llmtypes.ModelInfo, error)
	GetModel(ctx context.Context, id string) (*llmtypes.ModelInfo, error)
}

// ResponsesAPI is the optional background-response lifecycle trait (spec
// §4.4): long-running jobs identified by a stateful id, independent of the
// synchronous Chat/ChatStream path.
type ResponsesAPI interface {
	CreateResponseBackground(ctx context.Context, req llmtypes.BackgroundResponseRequest) (llmtypes.ResponseMetadata, error)
	// GetResponse fetches the content produced so far by a completed or
	// partially completed background response (spec §4.4) — the actual
	// generated text/tool calls/usage, not just its lifecycle status.
	GetResponse(ctx context.Context, id string) (*llmtypes.ChatResponse, error)
	// GetResponseMetadata reports id's lifecycle status without fetching
	// its content.
	GetResponseMetadata(ctx context.Context, id string) (llmtypes.ResponseMetadata, error)
	CancelResponse(ctx context.Context, id string) (llmtypes.ResponseMetadata, error)
	ListResponses(ctx context.Context, query llmtypes.ResponseListQuery) ([]llmtypes.ResponseMetadata, error)
	ContinueConversation(ctx context.Context, previousResponseID string, messages []llmtypes.ChatMessage) (llmtypes.ResponseMetadata, error)
	IsResponseReady(id string) bool
}
