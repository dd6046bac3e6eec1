package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/sibylline/llmbridge/internal/stream"
	"github.com/sibylline/llmbridge/llmtypes"
)

// chatCompletionRequest is the OpenAI-compatible request body this probe
// server accepts: a flattened subset of llmtypes.ChatMessage plus Stream.
type chatCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Stream bool `json:"stream"`
}

func (r chatCompletionRequest) toMessages() []llmtypes.ChatMessage {
	messages := make([]llmtypes.ChatMessage, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, llmtypes.ChatMessage{Role: llmtypes.Role(m.Role), Text: m.Content})
	}
	return messages
}

// Handler dispatches decoded HTTP requests to a Client.
type Handler struct {
	client Client
}

// NewHandler returns a Handler that serves requests through client.
func NewHandler(client Client) *Handler {
	return &Handler{client: client}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "backend": h.client.Name()})
}

// handleChatCompletions handles POST /v1/chat/completions, dispatching to
// either the streaming or non-streaming Client path depending on the
// request body's "stream" field.
func (h *Handler) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	w.Header().Set("X-LLMBridge-Backend", h.client.Name())

	if req.Stream {
		events, err := h.client.ChatStreamWithTools(r.Context(), req.toMessages(), nil)
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, "backend error: "+err.Error())
			return
		}
		if err := stream.Write(w, req.Model, events); err != nil {
			log.Printf("stream write error: %v", err)
		}
		return
	}

	resp, err := h.client.ChatWithTools(r.Context(), req.toMessages(), nil)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "backend error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "chat.completion",
		"model":  resp.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": resp.ContentText()},
			"finish_reason": resp.FinishReason,
		}},
	})
}
