package llmbridge

import (
	"context"
	"strings"
	"time"

	"github.com/sibylline/llmbridge/internal/metrics"
	"github.com/sibylline/llmbridge/internal/ratelimit"
	"github.com/sibylline/llmbridge/llmtypes"
)

// Client is the composite façade: it holds exactly one backend adapter and
// forwards each operation to it, returning Unsupported when the adapter
// doesn't implement the corresponding optional trait. Client is safe for
// concurrent use — the adapter itself owns any shared state (HTTP client,
// in-process trackers) and is required to be concurrency-safe.
type Client struct {
	adapter Chat
	params  llmtypes.CommonParams
	metrics *metrics.Registry
	limiter *ratelimit.Limiter
}

// NewClient wraps an already-constructed adapter. Most callers should use
// Builder instead; NewClient is the seam external code uses to install a
// custom provider built outside this module (spec §4.9).
func NewClient(adapter Chat, params llmtypes.CommonParams) *Client {
	return &Client{adapter: adapter, params: params}
}

// WithMetrics returns a copy of the client that records request latency and
// outcome counts against r for every Chat/ChatWithTools call.
func (c *Client) WithMetrics(r *metrics.Registry) *Client {
	nc := *c
	nc.metrics = r
	return &nc
}

// WithRateLimit returns a copy of the client that waits on limiter before
// issuing every Chat/ChatWithTools call, throttling this Client's own
// request rate rather than relying on the backend to reject overflow.
func (c *Client) WithRateLimit(limiter *ratelimit.Limiter) *Client {
	nc := *c
	nc.limiter = limiter
	return &nc
}

// Name returns the backend adapter's name, for diagnostics.
func (c *Client) Name() string { return c.adapter.Name() }

// Capabilities returns the backend adapter's declared capability flags.
func (c *Client) Capabilities() llmtypes.ProviderCapabilities { return c.adapter.Capabilities() }

// Supports reports whether the backend advertises feature, by name.
func (c *Client) Supports(feature string) bool { return c.adapter.Capabilities().Supports(feature) }

// Chat sends a non-streaming chat request with no tools.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.ChatMessage) (*llmtypes.ChatResponse, error) {
	return c.ChatWithTools(ctx, messages, nil)
}

// ChatWithTools sends a non-streaming chat request with a tool list,
// applying the configured rate limit and recording metrics, if set.
func (c *Client) ChatWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (*llmtypes.ChatResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.metrics == nil {
		return c.adapter.Chat(ctx, messages, tools, c.params)
	}

	start := time.Now()
	resp, err := c.adapter.Chat(ctx, messages, tools, c.params)
	c.metrics.ObserveRequest(c.adapter.Name(), time.Since(start), err)
	return resp, err
}

// ChatStream streams a chat request with no tools.
func (c *Client) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage) (<-chan llmtypes.ChatStreamEvent, error) {
	return c.adapter.ChatStream(ctx, messages, nil, c.params)
}

// ChatStreamWithTools streams a chat request with a tool list.
func (c *Client) ChatStreamWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (<-chan llmtypes.ChatStreamEvent, error) {
	return c.adapter.ChatStream(ctx, messages, tools, c.params)
}

// WithParams returns a copy of the client configured with a different
// common-parameter set. Configuration is read-only after Build per spec
// §5 — this returns a new value rather than mutating the receiver.
func (c *Client) WithParams(params llmtypes.CommonParams) *Client {
	nc := *c
	nc.params = params
	return &nc
}

// Embed dispatches to the adapter's Embedder trait, or Unsupported.
func (c *Client) Embed(ctx context.Context, texts []string) (*llmtypes.EmbeddingResponse, error) {
	e, ok := c.adapter.(Embedder)
	if !ok {
		return nil, llmtypes.Unsupported("embed")
	}
	return e.Embed(ctx, c.params.Model, texts)
}

// TextToSpeech dispatches to the adapter's AudioCapability trait, or Unsupported.
func (c *Client) TextToSpeech(ctx context.Context, req llmtypes.TtsRequest) (*llmtypes.TtsResponse, error) {
	a, ok := c.adapter.(AudioCapability)
	if !ok {
		return nil, llmtypes.Unsupported("text_to_speech")
	}
	return a.TextToSpeech(ctx, req)
}

// SpeechToText dispatches to the adapter's AudioCapability trait, or Unsupported.
func (c *Client) SpeechToText(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error) {
	a, ok := c.adapter.(AudioCapability)
	if !ok {
		return nil, llmtypes.Unsupported("speech_to_text")
	}
	return a.SpeechToText(ctx, req)
}

// TranslateAudio dispatches to the adapter's AudioCapability trait, or Unsupported.
func (c *Client) TranslateAudio(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error) {
	a, ok := c.adapter.(AudioCapability)
	if !ok {
		return nil, llmtypes.Unsupported("translate_audio")
	}
	return a.TranslateAudio(ctx, req)
}

// GenerateImages dispatches to the adapter's ImageCapability trait, or Unsupported.
func (c *Client) GenerateImages(ctx context.Context, req llmtypes.ImageGenerationRequest) ([]llmtypes.GeneratedImage, error) {
	i, ok := c.adapter.(ImageCapability)
	if !ok {
		return nil, llmtypes.Unsupported("generate_images")
	}
	return i.GenerateImages(ctx, req)
}

// EditImage dispatches to the adapter's ImageCapability trait, or Unsupported.
func (c *Client) EditImage(ctx context.Context, req llmtypes.ImageEditRequest) ([]llmtypes.GeneratedImage, error) {
	i, ok := c.adapter.(ImageCapability)
	if !ok {
		return nil, llmtypes.Unsupported("edit_image")
	}
	return i.EditImage(ctx, req)
}

// CreateVariation dispatches to the adapter's ImageCapability trait, or Unsupported.
func (c *Client) CreateVariation(ctx context.Context, req llmtypes.ImageVariationRequest) ([]llmtypes.GeneratedImage, error) {
	i, ok := c.adapter.(ImageCapability)
	if !ok {
		return nil, llmtypes.Unsupported("create_variation")
	}
	return i.CreateVariation(ctx, req)
}

// UploadFile dispatches to the adapter's FileManagement trait, or Unsupported.
func (c *Client) UploadFile(ctx context.Context, req llmtypes.FileUploadRequest) (*llmtypes.FileObject, error) {
	f, ok := c.adapter.(FileManagement)
	if !ok {
		return nil, llmtypes.Unsupported("upload_file")
	}
	return f.UploadFile(ctx, req)
}

// ListFiles dispatches to the adapter's FileManagement trait, or Unsupported.
func (c *Client) ListFiles(ctx context.Context, query llmtypes.FileListQuery) ([]llmtypes.FileObject, error) {
	f, ok := c.adapter.(FileManagement)
	if !ok {
		return nil, llmtypes.Unsupported("list_files")
	}
	return f.ListFiles(ctx, query)
}

// DeleteFile dispatches to the adapter's FileManagement trait, or Unsupported.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	f, ok := c.adapter.(FileManagement)
	if !ok {
		return llmtypes.Unsupported("delete_file")
	}
	return f.DeleteFile(ctx, id)
}

// Moderate dispatches to the adapter's Moderation trait, or Unsupported.
func (c *Client) Moderate(ctx context.Context, text string) (*llmtypes.ModerationResult, error) {
	m, ok := c.adapter.(Moderation)
	if !ok {
		return nil, llmtypes.Unsupported("moderate")
	}
	return m.Moderate(ctx, text)
}

// ListModels dispatches to the adapter's ModelListing trait, or Unsupported.
func (c *Client) ListModels(ctx context.Context) ([]llmtypes.ModelInfo, error) {
	m, ok := c.adapter.(ModelListing)
	if !ok {
		return nil, llmtypes.Unsupported("list_models")
	}
	return m.ListModels(ctx)
}

// GetModel dispatches to the adapter's ModelListing trait, or Unsupported.
func (c *Client) GetModel(ctx context.Context, id string) (*llmtypes.ModelInfo, error) {
	m, ok := c.adapter.(ModelListing)
	if !ok {
		return nil, llmtypes.Unsupported("get_model")
	}
	return m.GetModel(ctx, id)
}

// CreateResponseBackground dispatches to the adapter's ResponsesAPI trait, or Unsupported.
func (c *Client) CreateResponseBackground(ctx context.Context, req llmtypes.BackgroundResponseRequest) (llmtypes.ResponseMetadata, error) {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return llmtypes.ResponseMetadata{}, llmtypes.Unsupported("responses_api")
	}
	req.Model = c.params.Model
	return r.CreateResponseBackground(ctx, req)
}

// GetResponse dispatches to the adapter's ResponsesAPI trait, or
// Unsupported, returning the content produced so far by a completed or
// partially completed background response.
func (c *Client) GetResponse(ctx context.Context, id string) (*llmtypes.ChatResponse, error) {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return nil, llmtypes.Unsupported("responses_api")
	}
	return r.GetResponse(ctx, id)
}

// GetResponseMetadata dispatches to the adapter's ResponsesAPI trait, or
// Unsupported, reporting id's lifecycle status without fetching content.
func (c *Client) GetResponseMetadata(ctx context.Context, id string) (llmtypes.ResponseMetadata, error) {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return llmtypes.ResponseMetadata{}, llmtypes.Unsupported("responses_api")
	}
	return r.GetResponseMetadata(ctx, id)
}

// CancelResponse dispatches to the adapter's ResponsesAPI trait, or Unsupported.
func (c *Client) CancelResponse(ctx context.Context, id string) (llmtypes.ResponseMetadata, error) {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return llmtypes.ResponseMetadata{}, llmtypes.Unsupported("responses_api")
	}
	return r.CancelResponse(ctx, id)
}

// ListResponses dispatches to the adapter's ResponsesAPI trait, or Unsupported.
func (c *Client) ListResponses(ctx context.Context, query llmtypes.ResponseListQuery) ([]llmtypes.ResponseMetadata, error) {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return nil, llmtypes.Unsupported("responses_api")
	}
	return r.ListResponses(ctx, query)
}

// IsResponseReady dispatches to the adapter's ResponsesAPI trait. An
// adapter without the trait is reported as never ready rather than erroring,
// since this method has no error return.
func (c *Client) IsResponseReady(id string) bool {
	r, ok := c.adapter.(ResponsesAPI)
	if !ok {
		return false
	}
	return r.IsResponseReady(id)
}

// --- ChatExtensions convenience helpers (supplemented from the Rust
// original's traits.rs, §4 of SPEC_FULL.md) ---

// Ask sends a single user message and returns the response text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Chat(ctx, []llmtypes.ChatMessage{llmtypes.NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return resp.ContentText(), nil
}

// AskWithSystem sends a system message followed by a user message.
func (c *Client) AskWithSystem(ctx context.Context, system, prompt string) (string, error) {
	messages := []llmtypes.ChatMessage{llmtypes.NewSystemMessage(system), llmtypes.NewUserMessage(prompt)}
	resp, err := c.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.ContentText(), nil
}

// ContinueConversationSync appends a new user message to an existing
// history and returns the extended history plus the model's reply. Unlike
// ResponsesAPI.ContinueConversation, this works against the synchronous
// Chat path and needs no provider-hosted response id.
func (c *Client) ContinueConversationSync(ctx context.Context, history []llmtypes.ChatMessage, prompt string) ([]llmtypes.ChatMessage, *llmtypes.ChatResponse, error) {
	messages := append(append([]llmtypes.ChatMessage{}, history...), llmtypes.NewUserMessage(prompt))
	resp, err := c.Chat(ctx, messages)
	if err != nil {
		return history, nil, err
	}
	messages = append(messages, llmtypes.NewAssistantMessage(resp.ContentText()))
	return messages, resp, nil
}

// SummarizeHistory asks the model to summarize a conversation in place, as
// a single-shot instruction prepended to the transcript.
func (c *Client) SummarizeHistory(ctx context.Context, history []llmtypes.ChatMessage) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the following conversation concisely:\n\n")
	for _, m := range history {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return c.Ask(ctx, sb.String())
}
