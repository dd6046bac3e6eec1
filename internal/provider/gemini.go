package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/sibylline/llmbridge/internal/httpx"
	"github.com/sibylline/llmbridge/internal/params"
	"github.com/sibylline/llmbridge/internal/sse"
	"github.com/sibylline/llmbridge/internal/toolcall"
	"github.com/sibylline/llmbridge/internal/utf8stream"
	"github.com/sibylline/llmbridge/llmtypes"
)

// Gemini adapts Google's Generative Language API (generateContent /
// streamGenerateContent) to the capability interfaces. Unlike every other
// adapter here, Gemini authenticates via a "key" query parameter rather
// than a header, so it builds its own Substrate with AuthNone and appends
// the key itself.
type Gemini struct {
	cfg  Config
	http *httpx.Substrate
}

// NewGemini builds a Gemini adapter. BaseURL defaults to Google's public
// Generative Language API root.
func NewGemini(cfg Config) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Gemini{cfg: cfg, http: cfg.substrate(httpx.AuthNone)}
}

func (g *Gemini) Name() string { return "gemini" }

// Capabilities reports what Gemini supports through this adapter.
func (g *Gemini) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat:      true,
		Vision:    true,
		Tools:     true,
		Streaming: true,
		Custom: map[string]bool{
			"search_grounding": true,
			"code_execution":   true,
		},
	}
}

func (g *Gemini) withKey(path string) string {
	return fmt.Sprintf("%s/%s?key=%s", g.cfg.BaseURL, path, url.QueryEscape(g.cfg.APIKey))
}

func (g *Gemini) withKeyAndSSE(path string) string {
	return fmt.Sprintf("%s/%s?alt=sse&key=%s", g.cfg.BaseURL, path, url.QueryEscape(g.cfg.APIKey))
}

// --- wire types ---

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiToolDecl        `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                `json:"text,omitempty"`
	InlineData       *geminiBlob           `json:"inlineData,omitempty"`
	FunctionCall     *geminiFunctionCall   `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResult `json:"functionResponse,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResult struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiToolDecl struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// --- request translation ---

func toGeminiRequest(messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) geminiRequest {
	var req geminiRequest

	for _, m := range messages {
		if m.Role == llmtypes.RoleSystem {
			if req.SystemInstruction == nil {
				req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Text}}}
			} else {
				req.SystemInstruction.Parts = append(req.SystemInstruction.Parts, geminiPart{Text: m.Text})
			}
			continue
		}
		req.Contents = append(req.Contents, toGeminiContent(m))
	}

	if len(tools) > 0 {
		decl := geminiToolDecl{}
		for _, t := range tools {
			decl.FunctionDeclarations = append(decl.FunctionDeclarations, geminiFunctionDecl{
				Name: t.Name, Description: t.Description, Parameters: t.Parameters,
			})
		}
		req.Tools = []geminiToolDecl{decl}
	}

	cfg := &geminiGenerationConfig{Temperature: p.Temperature, TopP: p.TopP, StopSequences: p.StopSequences}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = p.MaxTokens
	}
	req.GenerationConfig = cfg

	return req
}

func toGeminiContent(m llmtypes.ChatMessage) geminiContent {
	role := string(m.Role)
	if role == "assistant" {
		role = "model"
	}
	if m.Role == llmtypes.RoleTool {
		role = "user"
		return geminiContent{Role: role, Parts: []geminiPart{{
			FunctionResponse: &geminiFunctionResult{Name: m.ToolCallID, Response: map[string]any{"result": m.Text}},
		}}}
	}

	var parts []geminiPart
	if m.Text != "" {
		parts = append(parts, geminiPart{Text: m.Text})
	}
	for _, part := range m.Parts {
		switch part.Kind {
		case llmtypes.ContentPartText:
			parts = append(parts, geminiPart{Text: part.Text})
		case llmtypes.ContentPartImage:
			parts = append(parts, geminiPart{InlineData: &geminiBlob{MimeType: "image/jpeg", Data: part.URL}})
		}
	}
	for _, tc := range m.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: tc.Function.Name, Args: args}})
	}
	return geminiContent{Role: role, Parts: parts}
}

func fromGeminiResponse(model string, resp geminiResponse) (*llmtypes.ChatResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrAPI, "gemini returned no candidates")
	}
	candidate := resp.Candidates[0]

	var text string
	var toolCalls []llmtypes.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
		if part.FunctionCall != nil {
			argsJSON, _ := json.Marshal(part.FunctionCall.Args)
			toolCalls = append(toolCalls, llmtypes.ToolCall{
				Type: "function",
				Function: llmtypes.ToolCallFunction{Name: part.FunctionCall.Name, Arguments: string(argsJSON)},
			})
		}
	}

	finish, tag := finishReasonFromStopReason(candidate.FinishReason)
	if len(toolCalls) > 0 {
		finish, tag = llmtypes.FinishToolCalls, ""
	}

	out := &llmtypes.ChatResponse{
		Model:           model,
		Content:         llmtypes.TextContent(text),
		FinishReason:    finish,
		FinishReasonTag: tag,
		ToolCalls:       toolCalls,
	}
	if resp.UsageMetadata != nil {
		out.Usage = &llmtypes.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return out, nil
}

// --- Chat ---

func (g *Gemini) Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (*llmtypes.ChatResponse, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toGeminiRequest(messages, tools, p)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling gemini request", err)
	}

	path := fmt.Sprintf("models/%s:generateContent", p.Model)
	httpResp, err := g.http.PostJSON(ctx, g.withKey(path), body, false)
	if err != nil {
		return nil, err
	}

	var wireResp geminiResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	return fromGeminiResponse(p.Model, wireResp)
}

// --- ChatStream ---

func (g *Gemini) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toGeminiRequest(messages, tools, p)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling gemini request", err)
	}

	path := fmt.Sprintf("models/%s:streamGenerateContent", p.Model)
	httpResp, err := g.http.PostJSON(ctx, g.withKeyAndSSE(path), body, true)
	if err != nil {
		return nil, err
	}

	out := make(chan llmtypes.ChatStreamEvent)
	go geminiStreamLoop(ctx, p.Model, httpResp.Body, out)
	return out, nil
}

func geminiStreamLoop(ctx context.Context, model string, body io.ReadCloser, out chan<- llmtypes.ChatStreamEvent) {
	defer close(out)
	defer body.Close()

	decoder := utf8stream.New()
	assembler := sse.NewAssembler()
	agg := toolcall.New()
	started := false
	callIndex := 0

	send := func(ev llmtypes.ChatStreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	handle := func(payload string) bool {
		var wireResp geminiResponse
		if err := json.Unmarshal([]byte(payload), &wireResp); err != nil {
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrParse, "decoding gemini stream event", err)))
			return false
		}
		if !started {
			started = true
			if !send(llmtypes.StartEvent(map[string]any{"model": model})) {
				return false
			}
		}
		if len(wireResp.Candidates) == 0 {
			return true
		}
		candidate := wireResp.Candidates[0]
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				if !send(llmtypes.ContentDeltaEvent(part.Text, nil)) {
					return false
				}
			}
			if part.FunctionCall != nil {
				argsJSON, _ := json.Marshal(part.FunctionCall.Args)
				idx := callIndex
				callIndex++
				delta := llmtypes.ToolCallDelta{FunctionName: part.FunctionCall.Name, ArgumentsDelta: string(argsJSON), Index: &idx}
				agg.Add(delta)
				if !send(llmtypes.ToolCallDeltaEvent(delta)) {
					return false
				}
			}
		}
		if candidate.FinishReason == "" {
			return true
		}

		finish, tag := finishReasonFromStopReason(candidate.FinishReason)
		resp := &llmtypes.ChatResponse{Model: model, FinishReason: finish, FinishReasonTag: tag, ToolCalls: agg.Finalize()}
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = llmtypes.FinishToolCalls
		}
		if wireResp.UsageMetadata != nil {
			usage := llmtypes.Usage{
				PromptTokens:     wireResp.UsageMetadata.PromptTokenCount,
				CompletionTokens: wireResp.UsageMetadata.CandidatesTokenCount,
				TotalTokens:      wireResp.UsageMetadata.TotalTokenCount,
			}
			resp.Usage = &usage
			if !send(llmtypes.UsageUpdateEvent(usage)) {
				return false
			}
		}
		return send(llmtypes.EndEvent(resp))
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
				if !ok || sse.IsDone(payload) {
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
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrTransport, "reading gemini stream", readErr)))
			return
		}
	}

	if trailer, ok := assembler.Flush(); ok {
		if payload, ok := sse.DataPayload(trailer); ok {
			handle(payload)
		}
	}
}
