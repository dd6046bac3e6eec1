package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

// stubClient is a minimal Client for exercising the handler without a real
// backend adapter.
type stubClient struct {
	reply string
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) ChatWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (*llmtypes.ChatResponse, error) {
	return &llmtypes.ChatResponse{Model: "stub-model", Content: llmtypes.TextContent(s.reply), FinishReason: llmtypes.FinishStop}, nil
}

func (s *stubClient) ChatStreamWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (<-chan llmtypes.ChatStreamEvent, error) {
	out := make(chan llmtypes.ChatStreamEvent, 2)
	out <- llmtypes.ContentDeltaEvent(s.reply, nil)
	out <- llmtypes.EndEvent(&llmtypes.ChatResponse{FinishReason: llmtypes.FinishStop})
	close(out)
	return out, nil
}

func TestHandler_HandleHealth(t *testing.T) {
	h := NewHandler(&stubClient{})
	w := httptest.NewRecorder()
	h.handleHealth(w, httptest.NewRequest("GET", "/healthz", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "stub", body["backend"])
}

func TestHandler_HandleChatCompletions_NonStreaming(t *testing.T) {
	h := NewHandler(&stubClient{reply: "hello there"})
	body := `{"model":"stub-model","messages":[{"role":"user","content":"hi"}]}`
	w := httptest.NewRecorder()
	h.handleChatCompletions(w, httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(body)))

	assert.Equal(t, "stub", w.Header().Get("X-LLMBridge-Backend"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	choices := resp["choices"].([]any)
	message := choices[0].(map[string]any)["message"].(map[string]any)
	assert.Equal(t, "hello there", message["content"])
}

func TestHandler_HandleChatCompletions_Streaming(t *testing.T) {
	h := NewHandler(&stubClient{reply: "streamed"})
	body := `{"model":"stub-model","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	w := httptest.NewRecorder()
	h.handleChatCompletions(w, httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(body)))

	assert.Contains(t, w.Body.String(), "streamed")
	assert.Contains(t, w.Body.String(), "data: [DONE]")
}

func TestHandler_HandleChatCompletions_InvalidBody(t *testing.T) {
	h := NewHandler(&stubClient{})
	w := httptest.NewRecorder()
	h.handleChatCompletions(w, httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader("not json")))
	assert.Equal(t, 400, w.Code)
}
