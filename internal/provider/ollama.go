package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/sibylline/llmbridge/internal/httpx"
	"github.com/sibylline/llmbridge/internal/params"
	"github.com/sibylline/llmbridge/internal/toolcall"
	"github.com/sibylline/llmbridge/llmtypes"
)

// Ollama adapts a local Ollama server. Ollama frames its streaming
// responses as newline-delimited JSON objects rather than SSE "data: "
// lines, so this adapter reads line-by-line directly instead of going
// through the sse package, which is scoped to the "data: "/"event: "
// framing the hosted providers use.
type Ollama struct {
	cfg  Config
	http *httpx.Substrate
}

// NewOllama builds an Ollama adapter. BaseURL defaults to the conventional
// local Ollama port; Ollama has no API key concept, so auth is always
// AuthNone.
func NewOllama(cfg Config) *Ollama {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &Ollama{cfg: cfg, http: cfg.substrate(httpx.AuthNone)}
}

func (o *Ollama) Name() string { return "ollama" }

// Capabilities reports Ollama's feature set: chat and tools for models that
// support it, embeddings, no hosted extras (no audio/images/moderation).
func (o *Ollama) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat: true, Tools: true, Streaming: true, Embedding: true,
		Custom: map[string]bool{"local": true},
	}
}

type ollamaMessage struct {
	Role      string              `json:"role"`
	Content   string              `json:"content,omitempty"`
	ToolCalls []ollamaToolCallOut `json:"tool_calls,omitempty"`
}

type ollamaToolCallOut struct {
	Function ollamaFunctionCall `json:"function"`
}

type ollamaFunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type ollamaToolDecl struct {
	Type     string             `json:"type"`
	Function ollamaFunctionDecl `json:"function"`
}

type ollamaFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []ollamaMessage  `json:"messages"`
	Tools    []ollamaToolDecl `json:"tools,omitempty"`
	Stream   bool             `json:"stream"`
	Options  ollamaOptions    `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type ollamaChatLine struct {
	Model     string         `json:"model"`
	Message   ollamaMessage  `json:"message"`
	Done      bool           `json:"done"`
	DoneReason string        `json:"done_reason"`
	PromptEvalCount int      `json:"prompt_eval_count"`
	EvalCount       int      `json:"eval_count"`
}

func toOllamaMessage(m llmtypes.ChatMessage) ollamaMessage {
	out := ollamaMessage{Role: string(m.Role), Content: m.Text}
	for _, tc := range m.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		out.ToolCalls = append(out.ToolCalls, ollamaToolCallOut{Function: ollamaFunctionCall{Name: tc.Function.Name, Arguments: args}})
	}
	return out
}

func toOllamaRequest(messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams, stream bool) ollamaChatRequest {
	req := ollamaChatRequest{Model: p.Model, Stream: stream}
	req.Options.Stop = p.StopSequences
	if p.Temperature != nil {
		req.Options.Temperature = *p.Temperature
	}
	if p.TopP != nil {
		req.Options.TopP = *p.TopP
	}
	if p.MaxTokens > 0 {
		req.Options.NumPredict = p.MaxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, toOllamaMessage(m))
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, ollamaToolDecl{Type: "function", Function: ollamaFunctionDecl{Name: t.Name, Description: t.Description, Parameters: t.Parameters}})
	}
	return req
}

func ollamaFinishReason(line ollamaChatLine) (llmtypes.FinishReason, string) {
	if len(line.Message.ToolCalls) > 0 {
		return llmtypes.FinishToolCalls, ""
	}
	switch line.DoneReason {
	case "stop", "":
		return llmtypes.FinishStop, ""
	case "length":
		return llmtypes.FinishLength, ""
	default:
		return llmtypes.OtherFinishReason(line.DoneReason)
	}
}

// Chat sends a single non-streaming request with stream:false.
func (o *Ollama) Chat(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (*llmtypes.ChatResponse, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toOllamaRequest(messages, tools, p, false)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling ollama request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/api/chat", body, false)
	if err != nil {
		return nil, err
	}

	var line ollamaChatLine
	if err := httpx.DecodeJSON(httpResp, &line); err != nil {
		return nil, err
	}

	finish, tag := ollamaFinishReason(line)
	var toolCalls []llmtypes.ToolCall
	for _, tc := range line.Message.ToolCalls {
		argBytes, _ := json.Marshal(tc.Function.Arguments)
		toolCalls = append(toolCalls, llmtypes.ToolCall{Type: "function", Function: llmtypes.ToolCallFunction{Name: tc.Function.Name, Arguments: string(argBytes)}})
	}

	return &llmtypes.ChatResponse{
		Model: line.Model, Content: llmtypes.TextContent(line.Message.Content),
		FinishReason: finish, FinishReasonTag: tag, ToolCalls: toolCalls,
		Usage: &llmtypes.Usage{PromptTokens: line.PromptEvalCount, CompletionTokens: line.EvalCount, TotalTokens: line.PromptEvalCount + line.EvalCount},
	}, nil
}

// ChatStream sends stream:true and reads back newline-delimited JSON
// objects, one per partial message, terminated by a line with done:true.
// Unlike the SSE-framed providers, Ollama has no separate tool-call delta
// shape: a tool call arrives whole in a single line's Message.ToolCalls, so
// each one is emitted as one complete ToolCallDelta rather than assembled
// from fragments.
func (o *Ollama) ChatStream(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, p llmtypes.CommonParams) (<-chan llmtypes.ChatStreamEvent, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	if err := params.ValidateMessages(messages); err != nil {
		return nil, err
	}

	wireReq := toOllamaRequest(messages, tools, p, true)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling ollama request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/api/chat", body, true)
	if err != nil {
		return nil, err
	}

	out := make(chan llmtypes.ChatStreamEvent)
	go ollamaStreamLoop(ctx, httpResp.Body, out)
	return out, nil
}

func ollamaStreamLoop(ctx context.Context, body io.ReadCloser, out chan<- llmtypes.ChatStreamEvent) {
	defer close(out)
	defer body.Close()

	send := func(ev llmtypes.ChatStreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	agg := toolcall.New()
	started := false
	var model string
	callIndex := 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var line ollamaChatLine
		if err := json.Unmarshal(raw, &line); err != nil {
			send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrParse, "decoding ollama stream line", err)))
			return
		}
		if !started {
			started = true
			model = line.Model
			if !send(llmtypes.StartEvent(map[string]any{"model": model})) {
				return
			}
		}

		if line.Message.Content != "" {
			if !send(llmtypes.ContentDeltaEvent(line.Message.Content, nil)) {
				return
			}
		}
		for _, tc := range line.Message.ToolCalls {
			idx := callIndex
			callIndex++
			argBytes, _ := json.Marshal(tc.Function.Arguments)
			delta := llmtypes.ToolCallDelta{FunctionName: tc.Function.Name, ArgumentsDelta: string(argBytes), Index: &idx}
			agg.Add(delta)
			if !send(llmtypes.ToolCallDeltaEvent(delta)) {
				return
			}
		}

		if line.Done {
			finish, tag := ollamaFinishReason(line)
			toolCalls := agg.Finalize()
			if len(toolCalls) > 0 {
				finish = llmtypes.FinishToolCalls
			}
			resp := &llmtypes.ChatResponse{
				Model: model, FinishReason: finish, FinishReasonTag: tag, ToolCalls: toolCalls,
				Usage: &llmtypes.Usage{PromptTokens: line.PromptEvalCount, CompletionTokens: line.EvalCount, TotalTokens: line.PromptEvalCount + line.EvalCount},
			}
			send(llmtypes.EndEvent(resp))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		send(llmtypes.ErrorEvent(llmtypes.WrapError(llmtypes.ErrTransport, "reading ollama stream", err)))
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed calls Ollama's batch /api/embed endpoint, which (unlike the
// original single-text /api/embeddings endpoint the pack's teacher used)
// accepts and returns an ordered list in one round trip.
func (o *Ollama) Embed(ctx context.Context, model string, texts []string) (*llmtypes.EmbeddingResponse, error) {
	if len(texts) == 0 {
		return nil, llmtypes.NewError(llmtypes.ErrInvalidInput, "embed: texts must not be empty")
	}
	body, err := json.Marshal(ollamaEmbedRequest{Model: model, Input: texts})
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrInvalidInput, "marshaling embed request", err)
	}
	httpResp, err := o.http.PostJSON(ctx, o.cfg.BaseURL+"/api/embed", body, false)
	if err != nil {
		return nil, err
	}
	var wireResp ollamaEmbedResponse
	if err := httpx.DecodeJSON(httpResp, &wireResp); err != nil {
		return nil, err
	}
	return &llmtypes.EmbeddingResponse{Vectors: wireResp.Embeddings, Model: model}, nil
}
