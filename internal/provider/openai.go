package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sibylline/llmbridge/internal/httpx"
	"github.com/sibylline/llmbridge/internal/params"
	"github.com/sibylline/llmbridge/internal/responses"
	"github.com/sibylline/llmbridge/internal/sse"
	"github.com/sibylline/llmbridge/internal/thinking"
	"github.com/sibylline/llmbridge/internal/toolcall"
	"github.com/sibylline/llmbridge/internal/utf8stream"
	"github.com/sibylline/llmbridge/llmtypes"
)

// OpenAI adapts OpenAI's REST API (chat completions, embeddings, images,
// audio, files, moderation, models, and the Responses API) to the
// capability interfaces. xai.go, groq.go, deepseek.go, and openrouter.go
// embed this same adapter against a different BaseURL/Name, since those
// providers all speak OpenAI's wire format.
type OpenAI struct {
	cfg       Config
	http      *httpx.Substrate
	name      string
	responses *responses.Tracker
}

// NewOpenAI builds an OpenAI adapter. BaseURL defaults to OpenAI's public
// API root.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAI{cfg: cfg, http: cfg.substrate(httpx.AuthBearer), name: "openai", responses: responses.NewTracker()}
}

func (o *OpenAI) Name() string { return o.name }

// Capabilities reports what OpenAI supports through this adapter.
func (o *OpenAI) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat:           true,
		Audio:          true,
		Vision:         true,
		Tools:          true,
		Embedding:      true,
		Streaming:      true,
		FileManagement: true,
		Custom: map[string]bool{
			"images":          true,
			"moderation":      true,
			"responses_api":   true,
			"model_listing":   true,
		},
	}
}

// --- chat wire types ---

type openaiChatRequest struct {
	Model            string              `json:"model"`
	Messages         []openaiMessage     `json:"messages"`
	Tools            []openaiToolDecl    `json:"tools,omitempty"`
	Stream           bool                `json:"stream,omitempty"`
	StreamOptions    *openaiStreamOpts   `json:"stream_options,omitempty"`
	Temperature      *float64            `json:"temperature,omitempty"`
	TopP             *float64            `json:"top_p,omitempty"`
	MaxTokens        int                 `json:"max_completion_tokens,omitempty"`
	Seed             *uint64             `json:"seed,omitempty"`
	Stop             []string            `json:"stop,omitempty"`
	FrequencyPenalty *float64            `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64            `json:"presence_penalty,omitempty"`
}

type openaiStreamOpts struct {
	IncludeUsage bool `json:"include_usage"`
}

type openaiMessage struct {
	Role       string              `json:"role"`
	Content    json.RawMessage     `json:"content,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
	ToolCalls  []openaiToolCallOut `json:"tool_calls,omitempty"`
}

type openaiToolCallOut struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Function openaiFunctionCall  `json:"function"`
}

type openaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiToolDecl struct {
	Type     string             `json:"type"`
	Function openaiFunctionDecl `json:"function"`
}

type openaiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openaiChatResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   *openaiUsage   `json:"usage"`
}

type openaiChoice struct {
	Index        int            `json:"index"`
	Message      openaiRespMsg  `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type openaiRespMsg struct {
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	ToolCalls []openaiToolCallOut `json:"tool_calls,omitempty"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	CompletionTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"completion_tokens_details,omitempty"`
}

type openaiStreamChunk struct {
	ID      string              `json:"id"`
	Model   string              `json:"model"`
	Choices []openaiStreamChoice `json:"choices"`
	Usage   *openaiUsage        `json:"usage"`
}

type openaiStreamChoice struct {
	Index        int              `json:"index"`
	Delta        openaiStreamDelta `json:"delta"`
	FinishReason *string          `json:"finish_reason"`
}

type openaiStreamDelta struct {
	Content   string                   `json:"content,omitempty"`
	ToolCalls []openaiStreamToolCall   `json:"tool_calls,omitempty"`
}

type openaiStreamToolCall struct {
	Index    int                `json:"index"`
	ID       string             `json:"id,omitempty"`
	Function openaiFunctionCall `json:"function"`
}

// --- request translation ---

func toOpenAIMessage(m llmtypes.ChatMessage) openaiMessage {
	if m.Role == llmtypes.RoleTool {
		return openaiMessage{Role: "tool", Content: jsonString(m.Text), ToolCallID: m.ToolCallID}
	}

	out := openaiMessage{Role: string(m.Role)}
	if len(m.Parts) > 0 {
		var parts []openaiContentPart
		if m.Text != "" {
			parts = append(parts, openaiContentPart{Type: "text", Text: m.Text})
		}
		for _, p := range m.Parts {
			switch p.Kind {
			case llmtypes.ContentPartText:
				parts = append(parts, openaiContentPart{Type: "text", Text: p.Text})
			case llmtypes.ContentPartImage:
				parts = append(parts, openaiContentPart{Type: "image_url", ImageURL: &openaiImageURL{URL: p.URL, Detail: string(p.Detail)}})
			}
		}
		encoded, _ := json.Marshal(parts)
		out.Content = encoded
	} else {
		out.Content = jsonString(m.Text)
	}

	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openaiToolCallOut{
			ID: tc.ID, Type: "function",
			Function: openaiFunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		})
	}
	return out
}

func jsonString(s string) json.RawMessage {
	encoded, _ := json.Marshal(s)
	return encoded
}

func toOpenAIChatRequest(messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams, stream bool) openaiChatRequest {
	req := openaiChatRequest{
		Model: p.Model, Stream: stream,
		Temperature: p.Temperature, TopP: p.TopP, Seed: p.Seed, Stop: p.StopSequences,
		FrequencyPenalty: p.FrequencyPenalty, PresencePenalty: p.PresencePenalty,
	}
	if p.MaxTokens > 0 {
		req.MaxTokens = p.MaxTokens
	}
	if stream {
		req.StreamOptions = &openaiStreamOpts{IncludeUsage: true}
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, toOpenAIMessage(m))
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, openaiToolDecl{Type: "function", Function: openaiFunctionDecl{Name: t.Name, Description: t.Description, Parameters: t.Parameters}})
	}
	return req
}

func openaiFinishReason(reason string) (llmtypes.FinishReason, string) {
	switch reason {
	case "stop":
		return llmtypes.FinishStop, ""
	case "length":
		return llmtypes.FinishLength, ""
	case "tool_calls", "function_call":
		return llmtypes.FinishToolCalls, ""
	case "content_filter":
		return llmtypes.FinishContentFilter, ""
	default:
		return llmtypes.OtherFinishReason(reason)
	}
}

func fromOpenAIUsage(u *openaiUsage) *llmtypes.Usage {
	if u == nil {
		return nil
	}
	out := &llmtypes.Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: u.TotalTokens}
	if u.CompletionTokensDetails != nil {
		v := u.CompletionTokensDetails.ReasoningTokens
		out.ReasoningTokens = &v
	}
	return out
}

// --- Chat ---

func (o *OpenAI) Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (*llmtypes.ChatResponse, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toOpenAIChatRequest(messages, tools, p, false)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling openai request", err)
	}

	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/chat/completions", body, false)
	if err != nil {
		return nil, err
	}

	var wireResp openaiChatResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	if len(wireResp.Choices) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrAPI, "openai returned no choices")
	}

	choice := wireResp.Choices[0]
	finish, tag := openaiFinishReason(choice.FinishReason)

	var toolCalls []llmtypes.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, llmtypes.ToolCall{ID: tc.ID, Type: tc.Type, Function: llmtypes.ToolCallFunction{Name: tc.Function.Name, Arguments: tc.Function.Arguments}})
	}

	// Some models served over this OpenAI-compatible endpoint interleave
	// <think>...</think> reasoning inline in the content rather than
	// reporting it as a separate field (spec §4.5).
	thinkingText, mainContent := thinking.ExtractInline(choice.Message.Content)

	return &llmtypes.ChatResponse{
		ID: wireResp.ID, Model: wireResp.Model,
		Content:         llmtypes.TextContent(mainContent),
		Thinking:        thinkingText,
		FinishReason:    finish,
		FinishReasonTag: tag,
		ToolCalls:       toolCalls,
		Usage:           fromOpenAIUsage(wireResp.Usage),
	}, nil
}

// --- ChatStream ---

func (o *OpenAI) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toOpenAIChatRequest(messages, tools, p, true)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling openai request", err)
	}

	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/chat/completions", body, true)
	if err != nil {
		return nil, err
	}

	out := make(chan llmtypes.ChatStreamEvent)
	go openaiStreamLoop(ctx, httpResp.Body, out)
	return out, nil
}

func openaiStreamLoop(ctx context.Context, body io.ReadCloser, out chan<- llmtypes.ChatStreamEvent) {
	defer close(out)
	defer body.Close()

	decoder := utf8stream.New()
	assembler := sse.NewAssembler()
	agg := toolcall.New()
	filter := thinking.NewStreamFilter()
	started := false
	var respID, model string
	var usage *llmtypes.Usage
	var finish llmtypes.FinishReason
	var finishTag string
	var thinkingText strings.Builder

	send := func(ev llmtypes.ChatStreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	handle := func(payload string) bool {
		if sse.IsDone(payload) {
			if flushContent, flushThinking := filter.Flush(); flushContent != "" || flushThinking != "" {
				if flushThinking != "" {
					thinkingText.WriteString(flushThinking)
					if !send(llmtypes.ThinkingDeltaEvent(flushThinking)) {
						return false
					}
				}
				if flushContent != "" {
					if !send(llmtypes.ContentDeltaEvent(flushContent, nil)) {
						return false
					}
				}
			}
			resp := &llmtypes.ChatResponse{ID: respID, Model: model, Thinking: thinkingText.String(), FinishReason: finish, FinishReasonTag: finishTag, ToolCalls: agg.Finalize(), Usage: usage}
			if len(resp.ToolCalls) > 0 {
				resp.FinishReason = llmtypes.FinishToolCalls
			}
			return send(llmtypes.EndEvent(resp))
		}

		var chunk openaiStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrParse, "decoding openai stream chunk", err)))
			return false
		}
		if !started {
			started = true
			respID, model = chunk.ID, chunk.Model
			if !send(llmtypes.StartEvent(map[string]any{"id": respID, "model": model})) {
				return false
			}
		}
		if chunk.Usage != nil {
			usage = fromOpenAIUsage(chunk.Usage)
		}
		if len(chunk.Choices) == 0 {
			return true
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			idx := choice.Index
			content, thinkingDelta := filter.Feed(choice.Delta.Content)
			if thinkingDelta != "" {
				thinkingText.WriteString(thinkingDelta)
				if !send(llmtypes.ThinkingDeltaEvent(thinkingDelta)) {
					return false
				}
			}
			if content != "" {
				if !send(llmtypes.ContentDeltaEvent(content, &idx)) {
					return false
				}
			}
		}
		for _, tc := range choice.Delta.ToolCalls {
			idx := tc.Index
			delta := llmtypes.ToolCallDelta{ID: tc.ID, FunctionName: tc.Function.Name, ArgumentsDelta: tc.Function.Arguments, Index: &idx}
			agg.Add(delta)
			if !send(llmtypes.ToolCallDeltaEvent(delta)) {
				return false
			}
		}
		if choice.FinishReason != nil {
			finish, finishTag = openaiFinishReason(*choice.FinishReason)
		}
		return true
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			text := decoder.Decode(buf[:n])
			lines, feedErr := assembler.Feed(text)
			if feedErr != nil {
				send(llmtypes.ErrorEvent(feedErr))
				return
			}
			for _, line := range lines {
				if sse.IsIgnorable(line) {
					continue
				}
				payload, ok := sse.DataPayload(line)
				if !ok {
					continue
				}
				if !handle(payload) {
					return
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrTransport, "reading openai stream", readErr)))
			return
		}
	}
}

// --- Embed ---

type openaiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string      `json:"model"`
	Usage openaiUsage `json:"usage"`
}

// Embed sends texts to /embeddings, sorting the result by the provider's
// reported index so Vectors[i] always corresponds to texts[i] regardless
// of what order the provider returned them in (property P9).
func (o *OpenAI) Embed(ctx context.Context, model string, texts []string) (*llmtypes.EmbeddingResponse, error) {
	if len(texts) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrInvalidInput, "embed: texts must not be empty")
	}
	body, err := json.Marshal(openaiEmbeddingRequest{Model: model, Input: texts})
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling embedding request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/embeddings", body, false)
	if err != nil {
		return nil, err
	}
	var wireResp openaiEmbeddingResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, d := range wireResp.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}
	return &llmtypes.EmbeddingResponse{
		Vectors: vectors, Model: wireResp.Model,
		Usage: &llmtypes.Usage{PromptTokens: wireResp.Usage.PromptTokens, TotalTokens: wireResp.Usage.TotalTokens},
	}, nil
}

// --- Images ---

type openaiImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n,omitempty"`
	Size   string `json:"size,omitempty"`
}

type openaiImageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImages calls /images/generations.
func (o *OpenAI) GenerateImages(ctx context.Context, req llmtypes.ImageGenerationRequest) ([]llmtypes.GeneratedImage, error) {
	body, err := json.Marshal(openaiImageRequest{Model: req.Model, Prompt: req.Prompt, N: req.N, Size: req.Size})
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling image request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/images/generations", body, false)
	if err != nil {
		return nil, err
	}
	var wireResp openaiImageResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := make([]llmtypes.GeneratedImage, len(wireResp.Data))
	for i, d := range wireResp.Data {
		out[i] = llmtypes.GeneratedImage{URL: d.URL, B64JSON: d.B64JSON}
	}
	return out, nil
}

// EditImage calls /images/edits with the source image and mask as
// multipart fields.
func (o *OpenAI) EditImage(ctx context.Context, req llmtypes.ImageEditRequest) ([]llmtypes.GeneratedImage, error) {
	fields := []httpx.MultipartField{
		{Name: "model", Value: req.Model},
		{Name: "prompt", Value: req.Prompt},
		{Name: "image", File: req.Image, Filename: "image.png"},
	}
	if req.Mask != nil {
		fields = append(fields, httpx.MultipartField{Name: "mask", File: req.Mask, Filename: "mask.png"})
	}
	if req.N > 0 {
		fields = append(fields, httpx.MultipartField{Name: "n", Value: fmt.Sprintf("%d", req.N)})
	}
	if req.Size != "" {
		fields = append(fields, httpx.MultipartField{Name: "size", Value: req.Size})
	}
	httpResp, err := o.http.PostMultipart(ctx, o.cfg.BaseURL+"/images/edits", fields)
	if err != nil {
		return nil, err
	}
	var wireResp openaiImageResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := make([]llmtypes.GeneratedImage, len(wireResp.Data))
	for i, d := range wireResp.Data {
		out[i] = llmtypes.GeneratedImage{URL: d.URL, B64JSON: d.B64JSON}
	}
	return out, nil
}

// CreateVariation calls /images/variations.
func (o *OpenAI) CreateVariation(ctx context.Context, req llmtypes.ImageVariationRequest) ([]llmtypes.GeneratedImage, error) {
	fields := []httpx.MultipartField{
		{Name: "model", Value: req.Model},
		{Name: "image", File: req.Image, Filename: "image.png"},
	}
	if req.N > 0 {
		fields = append(fields, httpx.MultipartField{Name: "n", Value: fmt.Sprintf("%d", req.N)})
	}
	if req.Size != "" {
		fields = append(fields, httpx.MultipartField{Name: "size", Value: req.Size})
	}
	httpResp, err := o.http.PostMultipart(ctx, o.cfg.BaseURL+"/images/variations", fields)
	if err != nil {
		return nil, err
	}
	var wireResp openaiImageResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := make([]llmtypes.GeneratedImage, len(wireResp.Data))
	for i, d := range wireResp.Data {
		out[i] = llmtypes.GeneratedImage{URL: d.URL, B64JSON: d.B64JSON}
	}
	return out, nil
}

// --- Audio ---

type openaiTTSRequest struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed,omitempty"`
}

// TextToSpeech calls /audio/speech and returns the raw audio bytes.
func (o *OpenAI) TextToSpeech(ctx context.Context, req llmtypes.TtsRequest) (*llmtypes.TtsResponse, error) {
	body, err := json.Marshal(openaiTTSRequest{Model: req.Model, Input: req.Text, Voice: req.Voice, Speed: req.Speed})
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling tts request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/audio/speech", body, false)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	audio, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "reading tts audio", err)
	}
	return &llmtypes.TtsResponse{Audio: audio, Format: req.Format}, nil
}

type openaiTranscriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// SpeechToText calls /audio/transcriptions.
func (o *OpenAI) SpeechToText(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error) {
	return o.transcribe(ctx, "/audio/transcriptions", req)
}

// TranslateAudio calls /audio/translations, always producing English text.
func (o *OpenAI) TranslateAudio(ctx context.Context, req llmtypes.SttRequest) (*llmtypes.SttResponse, error) {
	return o.transcribe(ctx, "/audio/translations", req)
}

func (o *OpenAI) transcribe(ctx context.Context, path string, req llmtypes.SttRequest) (*llmtypes.SttResponse, error) {
	fields := []httpx.MultipartField{
		{Name: "model", Value: req.Model},
		{Name: "file", File: req.Audio, Filename: req.Filename},
	}
	if req.Language != "" {
		fields = append(fields, httpx.MultipartField{Name: "language", Value: req.Language})
	}
	httpResp, err := o.http.PostMultipart(ctx, o.cfg.BaseURL+path, fields)
	if err != nil {
		return nil, err
	}
	var wireResp openaiTranscriptionResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	return &llmtypes.SttResponse{Text: wireResp.Text, Language: wireResp.Language}, nil
}

// --- Files ---

type openaiFileObject struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
}

func fromOpenAIFile(f openaiFileObject) llmtypes.FileObject {
	return llmtypes.FileObject{ID: f.ID, Name: f.Filename, Purpose: f.Purpose, Bytes: f.Bytes, CreatedAt: time.Unix(f.CreatedAt, 0).UTC()}
}

// UploadFile calls POST /files.
func (o *OpenAI) UploadFile(ctx context.Context, req llmtypes.FileUploadRequest) (*llmtypes.FileObject, error) {
	if err := httpx.ValidatePurpose(req.Purpose); err != nil {
		return nil, err
	}
	fields := []httpx.MultipartField{
		{Name: "purpose", Value: req.Purpose},
		{Name: "file", File: req.Content, Filename: req.Name},
	}
	httpResp, err := o.http.PostMultipart(ctx, o.cfg.BaseURL+"/files", fields)
	if err != nil {
		return nil, err
	}
	var wireResp openaiFileObject
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := fromOpenAIFile(wireResp)
	return &out, nil
}

// ListFiles calls GET /files.
func (o *OpenAI) ListFiles(ctx context.Context, query llmtypes.FileListQuery) ([]llmtypes.FileObject, error) {
	url := o.cfg.BaseURL + "/files"
	if query.Purpose != "" {
		url += "?purpose=" + query.Purpose
	}
	httpResp, err := o.http.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	var wireResp struct {
		Data []openaiFileObject `json:"data"`
	}
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := make([]llmtypes.FileObject, 0, len(wireResp.Data))
	for _, f := range wireResp.Data {
		out = append(out, fromOpenAIFile(f))
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// DeleteFile calls DELETE /files/{id}.
func (o *OpenAI) DeleteFile(ctx context.Context, id string) error {
	httpResp, err := o.http.Delete(ctx, o.cfg.BaseURL+"/files/"+id)
	if err != nil {
		return err
	}
	httpResp.Body.Close()
	return nil
}

// --- Moderation ---

type openaiModerationRequest struct {
	Input string `json:"input"`
}

type openaiModerationResponse struct {
	Results []struct {
		Flagged    bool               `json:"flagged"`
		Categories map[string]bool    `json:"categories"`
		Scores     map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// Moderate calls /moderations.
func (o *OpenAI) Moderate(ctx context.Context, text string) (*llmtypes.ModerationResult, error) {
	body, err := json.Marshal(openaiModerationRequest{Input: text})
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling moderation request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/moderations", body, false)
	if err != nil {
		return nil, err
	}
	var wireResp openaiModerationResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	if len(wireResp.Results) == 0 {
		return &llmtypes.ModerationResult{}, nil
	}
	r := wireResp.Results[0]
	return &llmtypes.ModerationResult{Flagged: r.Flagged, Categories: r.Categories, Scores: r.Scores}, nil
}

// --- Models ---

type openaiModelObject struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
}

// ListModels calls GET /models.
func (o *OpenAI) ListModels(ctx context.Context) ([]llmtypes.ModelInfo, error) {
	httpResp, err := o.http.Get(ctx, o.cfg.BaseURL+"/models")
	if err != nil {
		return nil, err
	}
	var wireResp struct {
		Data []openaiModelObject `json:"data"`
	}
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	out := make([]llmtypes.ModelInfo, 0, len(wireResp.Data))
	for _, m := range wireResp.Data {
		out = append(out, llmtypes.ModelInfo{ID: m.ID, OwnedBy: m.OwnedBy, Created: time.Unix(m.Created, 0).UTC()})
	}
	return out, nil
}

// GetModel calls GET /models/{id}.
func (o *OpenAI) GetModel(ctx context.Context, id string) (*llmtypes.ModelInfo, error) {
	httpResp, err := o.http.Get(ctx, o.cfg.BaseURL+"/models/"+id)
	if err != nil {
		return nil, err
	}
	var wireResp openaiModelObject
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	return &llmtypes.ModelInfo{ID: wireResp.ID, OwnedBy: wireResp.OwnedBy, Created: time.Unix(wireResp.Created, 0).UTC()}, nil
}

// --- Responses API ---

type openaiResponseObject struct {
	ID     string                     `json:"id"`
	Model  string                     `json:"model"`
	Status string                     `json:"status"`
	Output []openaiResponseOutputItem `json:"output,omitempty"`
	Usage  *openaiUsage               `json:"usage,omitempty"`
	Error  *openaiResponseError       `json:"error,omitempty"`
}

// openaiResponseOutputItem covers the two output item shapes this adapter
// reads: assistant messages ("message", with nested content parts) and
// function calls ("function_call").
type openaiResponseOutputItem struct {
	Type      string                      `json:"type"`
	Role      string                      `json:"role,omitempty"`
	Content   []openaiResponseContentPart `json:"content,omitempty"`
	ID        string                      `json:"id,omitempty"`
	CallID    string                      `json:"call_id,omitempty"`
	Name      string                      `json:"name,omitempty"`
	Arguments string                      `json:"arguments,omitempty"`
}

type openaiResponseContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type openaiResponseError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func openaiResponseStatus(status string) llmtypes.ResponseStatus {
	switch status {
	case "completed":
		return llmtypes.ResponseCompleted
	case "failed":
		return llmtypes.ResponseFailed
	case "cancelled":
		return llmtypes.ResponseCancelled
	default:
		return llmtypes.ResponseInProgress
	}
}

// fromOpenAIResponseObject maps a Responses API object to both its content
// (for GetResponse) and its lifecycle metadata (for GetResponseMetadata),
// applying the error/Completed tie-break from spec §4.4: a response that
// reports "completed" alongside a populated error field is treated as
// Failed, since a terminal error always outranks a stale or
// inconsistent status string.
func fromOpenAIResponseObject(wireResp openaiResponseObject) (*llmtypes.ChatResponse, llmtypes.ResponseMetadata) {
	status := openaiResponseStatus(wireResp.Status)
	errMsg := ""
	if wireResp.Error != nil {
		errMsg = wireResp.Error.Message
		if status == llmtypes.ResponseCompleted {
			status = llmtypes.ResponseFailed
		}
	}

	var textParts []string
	var toolCalls []llmtypes.ToolCall
	for _, item := range wireResp.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" && part.Text != "" {
					textParts = append(textParts, part.Text)
				}
			}
		case "function_call":
			toolCalls = append(toolCalls, llmtypes.ToolCall{
				ID:   item.CallID,
				Type: "function",
				Function: llmtypes.ToolCallFunction{
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})
		}
	}

	finish := llmtypes.FinishStop
	finishTag := ""
	switch {
	case len(toolCalls) > 0:
		finish = llmtypes.FinishToolCalls
	case status != llmtypes.ResponseCompleted:
		finish, finishTag = llmtypes.OtherFinishReason(string(status))
	}

	resp := &llmtypes.ChatResponse{
		ID:              wireResp.ID,
		Model:           wireResp.Model,
		Content:         llmtypes.TextContent(strings.Join(textParts, "")),
		ToolCalls:       toolCalls,
		Usage:           fromOpenAIUsage(wireResp.Usage),
		FinishReason:    finish,
		FinishReasonTag: finishTag,
	}
	meta := llmtypes.ResponseMetadata{
		ID:     wireResp.ID,
		Status: status,
		Model:  wireResp.Model,
		Err:    errMsg,
	}
	return resp, meta
}

// CreateResponseBackground starts a background response via POST
// /responses and registers it with the local lifecycle tracker so
// IsResponseReady can answer without polling once the response goes
// terminal (property P10).
func (o *OpenAI) CreateResponseBackground(ctx context.Context, req llmtypes.BackgroundResponseRequest) (llmtypes.ResponseMetadata, error) {
	payload := map[string]any{
		"model":      req.Model,
		"background": true,
	}
	if req.PreviousResponseID != "" {
		payload["previous_response_id"] = req.PreviousResponseID
	}
	var wireMessages []openaiMessage
	for _, m := range req.Messages {
		wireMessages = append(wireMessages, toOpenAIMessage(m))
	}
	payload["input"] = wireMessages

	body, err := json.Marshal(payload)
	if err != nil {
		return llmtypes.ResponseMetadata{}, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling responses request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/responses", body, false)
	if err != nil {
		return llmtypes.ResponseMetadata{}, err
	}
	var wireResp openaiResponseObject
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return llmtypes.ResponseMetadata{}, err
	}

	_, meta := fromOpenAIResponseObject(wireResp)
	meta.CreatedAt = time.Now()
	meta.Background = true
	meta.PreviousResponseID = req.PreviousResponseID
	o.responses.Adopt(meta)
	return meta, nil
}

// fetchResponseObject polls GET /responses/{id} and folds the result into
// the tracker, returning both the content and the refreshed metadata.
func (o *OpenAI) fetchResponseObject(ctx context.Context, id string) (*llmtypes.ChatResponse, llmtypes.ResponseMetadata, error) {
	httpResp, err := o.http.Get(ctx, o.cfg.BaseURL+"/responses/"+id)
	if err != nil {
		return nil, llmtypes.ResponseMetadata{}, err
	}
	var wireResp openaiResponseObject
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, llmtypes.ResponseMetadata{}, err
	}

	content, meta := fromOpenAIResponseObject(wireResp)
	tracked := o.responses.Observe(id, meta.Model, meta.Status, meta.Err)
	if tracked.Status.Terminal() {
		o.responses.SetContent(id, content)
	}
	return content, tracked, nil
}

// GetResponse fetches the content produced so far by id, using the locally
// cached content once the response has reached a terminal status (spec
// §4.4, property P10) instead of re-polling a result that can no longer
// change.
func (o *OpenAI) GetResponse(ctx context.Context, id string) (*llmtypes.ChatResponse, error) {
	if _, found, needsPoll := o.responses.Get(id); found && !needsPoll {
		if content, ok := o.responses.Content(id); ok {
			return content, nil
		}
	}
	content, meta, err := o.fetchResponseObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta.Status == llmtypes.ResponseFailed {
		return content, llmtypes.NewError(llmtypes.ErrAPI, "response "+id+" failed: "+meta.Err)
	}
	return content, nil
}

// GetResponseMetadata returns the locally cached metadata if the response
// has already reached a terminal status; otherwise it polls GET
// /responses/{id} and updates the tracker.
func (o *OpenAI) GetResponseMetadata(ctx context.Context, id string) (llmtypes.ResponseMetadata, error) {
	if meta, found, needsPoll := o.responses.Get(id); found && !needsPoll {
		return meta, nil
	}
	_, meta, err := o.fetchResponseObject(ctx, id)
	return meta, err
}

// CancelResponse calls POST /responses/{id}/cancel.
func (o *OpenAI) CancelResponse(ctx context.Context, id string) (llmtypes.ResponseMetadata, error) {
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/responses/"+id+"/cancel", nil, false)
	if err != nil {
		return llmtypes.ResponseMetadata{}, err
	}
	httpResp.Body.Close()
	return o.responses.Cancel(id)
}

// ListResponses returns whatever this process has observed locally; the
// OpenAI Responses API has no list endpoint, so cross-process visibility
// is intentionally out of scope.
func (o *OpenAI) ListResponses(ctx context.Context, query llmtypes.ResponseListQuery) ([]llmtypes.ResponseMetadata, error) {
	return o.responses.List(query), nil
}

// ContinueConversation builds and submits a follow-up background response
// chained from a previous one via PreviousResponseID.
func (o *OpenAI) ContinueConversation(ctx context.Context, previousResponseID string, messages []llmtypes.ChatMessage) (llmtypes.ResponseMetadata, error) {
	req := responses.Chain(previousResponseID, messages, nil, true)
	return o.CreateResponseBackground(ctx, req)
}

// IsResponseReady reports whether id has reached a terminal status without
// making a network call, consulting only the local tracker.
func (o *OpenAI) IsResponseReady(id string) bool {
	return o.responses.IsReady(id)
}
