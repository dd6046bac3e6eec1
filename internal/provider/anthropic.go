package provider

import (
	"context"
	"encoding/json"
	"io"

	"github.com/sibylline/llmbridge/internal/httpx"
	"github.com/sibylline/llmbridge/internal/params"
	"github.com/sibylline/llmbridge/internal/sse"
	"github.com/sibylline/llmbridge/internal/toolcall"
	"github.com/sibylline/llmbridge/internal/utf8stream"
	"github.com/sibylline/llmbridge/llmtypes"
)

// anthropicAPIVersion pins the Messages API's date-based version header,
// which Anthropic requires on every request instead of versioning the URL.
const anthropicAPIVersion = "2023-06-01"

// anthropicDefaultMaxTokens is sent when the caller doesn't set MaxTokens —
// Anthropic rejects requests that omit max_tokens entirely.
const anthropicDefaultMaxTokens = 4096

// Anthropic adapts Anthropic's Messages API to the capability interfaces.
// It satisfies them structurally: this package never imports the package
// that declares those interfaces.
type Anthropic struct {
	cfg  Config
	http *httpx.Substrate
}

// NewAnthropic builds an Anthropic adapter. BaseURL defaults to Anthropic's
// public API root when cfg.BaseURL is empty.
func NewAnthropic(cfg Config) *Anthropic {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	a := &Anthropic{cfg: cfg}
	a.http = cfg.substrate(httpx.AuthXAPIKey)
	a.http.Headers = mergeHeaders(cfg.HTTPHeaders, map[string]string{"anthropic-version": anthropicAPIVersion})
	return a
}

func mergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// Name returns the provider identifier used in logs and metrics labels.
func (a *Anthropic) Name() string { return "anthropic" }

// Capabilities reports what Anthropic supports through this adapter.
func (a *Anthropic) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat:      true,
		Vision:    true,
		Tools:     true,
		Streaming: true,
		Custom: map[string]bool{
			"prompt_caching": true,
			"thinking":       true,
		},
	}
}

// --- wire types ---

type anthropicRequest struct {
	Model         string                 `json:"model"`
	MaxTokens     int                    `json:"max_tokens"`
	System        string                 `json:"system,omitempty"`
	Messages      []anthropicMessage     `json:"messages"`
	Tools         []anthropicTool        `json:"tools,omitempty"`
	Temperature   *float64               `json:"temperature,omitempty"`
	TopP          *float64               `json:"top_p,omitempty"`
	StopSequences []string               `json:"stop_sequences,omitempty"`
	Thinking      *anthropicThinkingSpec `json:"thinking,omitempty"`
	Stream        bool                   `json:"stream,omitempty"`
}

type anthropicThinkingSpec struct {
	Type        string `json:"type"` // "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicContentBlock struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text,omitempty"`
	Source       *anthropicImageSource  `json:"source,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Name         string                 `json:"name,omitempty"`
	Input        json.RawMessage        `json:"input,omitempty"`
	ToolUseID    string                 `json:"tool_use_id,omitempty"`
	Content      string                 `json:"content,omitempty"`
	CacheControl *anthropicCacheControl `json:"cache_control,omitempty"`
}

type anthropicCacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

type anthropicImageSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

type anthropicStreamEvent struct {
	Type         string                 `json:"type"`
	Index        *int                   `json:"index,omitempty"`
	Message      *anthropicEventMessage `json:"message,omitempty"`
	ContentBlock *anthropicContentBlock `json:"content_block,omitempty"`
	Delta        *anthropicEventDelta   `json:"delta,omitempty"`
	Usage        *anthropicUsage        `json:"usage,omitempty"`
}

type anthropicEventMessage struct {
	ID    string         `json:"id"`
	Model string         `json:"model"`
	Usage anthropicUsage `json:"usage"`
}

type anthropicEventDelta struct {
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

// --- request translation ---

func toAnthropicRequest(messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) anthropicRequest {
	req := anthropicRequest{Model: p.Model, Temperature: p.Temperature, TopP: p.TopP, StopSequences: p.StopSequences}

	var systemParts []string
	for _, m := range messages {
		if m.Role == llmtypes.RoleSystem {
			systemParts = append(systemParts, m.Text)
			continue
		}
		req.Messages = append(req.Messages, toAnthropicMessage(m))
	}
	if len(systemParts) > 0 {
		req.System = joinLines(systemParts)
	}

	for _, t := range tools {
		req.Tools = append(req.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	if p.MaxTokens > 0 {
		req.MaxTokens = p.MaxTokens
	} else {
		req.MaxTokens = anthropicDefaultMaxTokens
	}

	if p.ReasoningEnabled {
		req.Thinking = &anthropicThinkingSpec{Type: "enabled", BudgetTokens: p.ReasoningBudget}
	}

	applyPassthrough(&req, p.Passthrough)
	return req
}

func toAnthropicMessage(m llmtypes.ChatMessage) anthropicMessage {
	role := string(m.Role)
	if m.Role == llmtypes.RoleTool {
		role = "user"
		return anthropicMessage{Role: role, Content: []anthropicContentBlock{{
			Type:      "tool_result",
			ToolUseID: m.ToolCallID,
			Content:   m.Text,
		}}}
	}

	var blocks []anthropicContentBlock
	if m.Text != "" {
		blocks = append(blocks, anthropicContentBlock{Type: "text", Text: m.Text})
	}
	for _, part := range m.Parts {
		switch part.Kind {
		case llmtypes.ContentPartText:
			blocks = append(blocks, anthropicContentBlock{Type: "text", Text: part.Text})
		case llmtypes.ContentPartImage:
			blocks = append(blocks, anthropicContentBlock{Type: "image", Source: &anthropicImageSource{Type: "url", URL: part.URL}})
		}
	}
	for _, tc := range m.ToolCalls {
		blocks = append(blocks, anthropicContentBlock{
			Type:  "tool_use",
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(orEmptyObject(tc.Function.Arguments)),
		})
	}
	return anthropicMessage{Role: role, Content: blocks}
}

func orEmptyObject(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}

func joinLines(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n" + p
	}
	return out
}

// applyPassthrough merges provider-native fields over the mapped request,
// so passthrough always wins (spec §9).
func applyPassthrough(req *anthropicRequest, passthrough map[string]any) {
	if len(passthrough) == 0 {
		return
	}
	base, _ := json.Marshal(req)
	var merged map[string]any
	_ = json.Unmarshal(base, &merged)
	for k, v := range passthrough {
		merged[k] = v
	}
	reencoded, _ := json.Marshal(merged)
	_ = json.Unmarshal(reencoded, req)
}

func fromAnthropicResponse(resp anthropicResponse) *llmtypes.ChatResponse {
	var text string
	var toolCalls []llmtypes.ToolCall
	var thinkingText string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "thinking":
			thinkingText += block.Text
		case "tool_use":
			toolCalls = append(toolCalls, llmtypes.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: llmtypes.ToolCallFunction{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
		}
	}

	finish, tag := finishReasonFromStopReason(resp.StopReason)
	if len(toolCalls) > 0 {
		finish, tag = llmtypes.FinishToolCalls, ""
	}

	var reasoningTokens *int
	var cachedTokens *int
	if resp.Usage.CacheReadInputTokens > 0 {
		v := resp.Usage.CacheReadInputTokens
		cachedTokens = &v
	}

	return &llmtypes.ChatResponse{
		ID:              resp.ID,
		Model:           resp.Model,
		Content:         llmtypes.TextContent(text),
		FinishReason:    finish,
		FinishReasonTag: tag,
		ToolCalls:       toolCalls,
		Thinking:        thinkingText,
		Usage: &llmtypes.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
			ReasoningTokens:  reasoningTokens,
			CachedTokens:     cachedTokens,
		},
	}
}

// --- Chat (non-streaming) ---

// Chat sends a single request to /messages and returns the complete
// response.
func (a *Anthropic) Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (*llmtypes.ChatResponse, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toAnthropicRequest(messages, tools, p)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling anthropic request", err)
	}

	httpResp, err := a.http.PostJSON(ctx, a.cfg.BaseURL+"/messages", body, false)
	if err != nil {
		return nil, err
	}

	var wireResp anthropicResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	return fromAnthropicResponse(wireResp), nil
}

// --- ChatStream ---

// ChatStream sends a streaming request and returns a channel of unified
// events, following the goroutine-owns-the-body pattern: the caller reads
// the channel until it closes, never touching the HTTP response directly.
func (a *Anthropic) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toAnthropicRequest(messages, tools, p)
	wireReq.Stream = true
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling anthropic request", err)
	}

	httpResp, err := a.http.PostJSON(ctx, a.cfg.BaseURL+"/messages", body, true)
	if err != nil {
		return nil, err
	}

	out := make(chan llmtypes.ChatStreamEvent)
	go a.streamLoop(ctx, httpResp.Body, out)
	return out, nil
}

func (a *Anthropic) streamLoop(ctx context.Context, body io.ReadCloser, out chan<- llmtypes.ChatStreamEvent) {
	defer close(out)
	defer body.Close()

	decoder := utf8stream.New()
	assembler := sse.NewAssembler()
	agg := toolcall.New()

	var respID, model string
	var inputTokens, outputTokens int

	send := func(ev llmtypes.ChatStreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
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
				var event anthropicStreamEvent
				if err := json.Unmarshal([]byte(payload), &event); err != nil {
					send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrParse, "decoding anthropic stream event", err)))
					return
				}
				if !a.handleEvent(event, &respID, &model, &inputTokens, &outputTokens, agg, send) {
					return
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrTransport, "reading anthropic stream", readErr)))
			return
		}
	}

	if trailer, ok := assembler.Flush(); ok {
		if payload, ok := sse.DataPayload(trailer); ok {
			var event anthropicStreamEvent
			if json.Unmarshal([]byte(payload), &event) == nil {
				a.handleEvent(event, &respID, &model, &inputTokens, &outputTokens, agg, send)
			}
		}
	}
}

func (a *Anthropic) handleEvent(event anthropicStreamEvent, respID, model *string, inputTokens, outputTokens *int, agg *toolcall.Aggregator, send func(llmtypes.ChatStreamEvent) bool) bool {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			*respID = event.Message.ID
			*model = event.Message.Model
			*inputTokens = event.Message.Usage.InputTokens
		}
		return send(llmtypes.StartEvent(map[string]any{"id": *respID, "model": *model}))

	case "content_block_start":
		if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
			idx := derefIndex(event.Index)
			agg.Add(llmtypes.ToolCallDelta{ID: event.ContentBlock.ID, FunctionName: event.ContentBlock.Name, Index: &idx})
		}
		return true

	case "content_block_delta":
		if event.Delta == nil {
			return true
		}
		switch event.Delta.Type {
		case "text_delta":
			return send(llmtypes.ContentDeltaEvent(event.Delta.Text, nil))
		case "thinking_delta":
			return send(llmtypes.ThinkingDeltaEvent(event.Delta.Thinking))
		case "input_json_delta":
			idx := derefIndex(event.Index)
			agg.Add(llmtypes.ToolCallDelta{ArgumentsDelta: event.Delta.PartialJSON, Index: &idx})
			return send(llmtypes.ToolCallDeltaEvent(llmtypes.ToolCallDelta{ArgumentsDelta: event.Delta.PartialJSON, Index: &idx}))
		}
		return true

	case "message_delta":
		if event.Usage != nil {
			*outputTokens = event.Usage.OutputTokens
		}
		return true

	case "message_stop":
		usage := llmtypes.Usage{PromptTokens: *inputTokens, CompletionTokens: *outputTokens, TotalTokens: *inputTokens + *outputTokens}
		resp := &llmtypes.ChatResponse{
			ID:        *respID,
			Model:     *model,
			Usage:     &usage,
			ToolCalls: agg.Finalize(),
		}
		if !agg.Empty() {
			resp.FinishReason = llmtypes.FinishToolCalls
		} else {
			resp.FinishReason = llmtypes.FinishStop
		}
		if !send(llmtypes.UsageUpdateEvent(usage)) {
			return false
		}
		return send(llmtypes.EndEvent(resp))

	default:
		return true
	}
}

func derefIndex(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
