// Package stream writes a unified ChatStreamEvent sequence to an HTTP
// client as OpenAI-compatible Server-Sent Events, for the demo probe
// server in cmd/llmbridge-probe.
package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/sibylline/llmbridge/llmtypes"
)

// sseChunk is the top-level JSON object in each SSE event, matching the
// shape OpenAI-compatible clients expect from a chat-completion stream.
type sseChunk struct {
	Object  string      `json:"object"`
	Model   string      `json:"model"`
	Choices []sseChoice `json:"choices"`
	Usage   *sseUsage   `json:"usage,omitempty"`
}

type sseChoice struct {
	Index        int      `json:"index"`
	Delta        sseDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type sseDelta struct {
	Content string `json:"content,omitempty"`
}

type sseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Write reads events from the channel and writes them to w as
// OpenAI-compatible Server-Sent Events, flushing after every event so the
// client sees tokens arrive as the backend produces them. Only
// StreamContentDelta, StreamUsageUpdate, and StreamEnd translate into
// wire events; StreamStart/StreamThinkingDelta/StreamToolCallDelta carry no
// OpenAI-compatible representation and are skipped. A StreamError event
// ends the write early with its wrapped error.
func Write(w http.ResponseWriter, model string, events <-chan llmtypes.ChatStreamEvent) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("response writer does not support flushing (http.Flusher)")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var pendingUsage *sseUsage

	for ev := range events {
		switch ev.Kind {
		case llmtypes.StreamError:
			log.Printf("stream error: %v", ev.Err)
			return ev.Err

		case llmtypes.StreamContentDelta:
			if err := writeEvent(w, flusher, sseChunk{
				Object: "chat.completion.chunk",
				Model:  model,
				Choices: []sseChoice{{
					Index: choiceIndex(ev.ChoiceIndex),
					Delta: sseDelta{Content: ev.Delta},
				}},
			}); err != nil {
				return err
			}

		case llmtypes.StreamUsageUpdate:
			pendingUsage = &sseUsage{
				PromptTokens:     ev.Usage.PromptTokens,
				CompletionTokens: ev.Usage.CompletionTokens,
				TotalTokens:      ev.Usage.TotalTokens,
			}

		case llmtypes.StreamEnd:
			reason := string(ev.Response.FinishReason)
			if pendingUsage == nil && ev.Response.Usage != nil {
				pendingUsage = &sseUsage{
					PromptTokens:     ev.Response.Usage.PromptTokens,
					CompletionTokens: ev.Response.Usage.CompletionTokens,
					TotalTokens:      ev.Response.Usage.TotalTokens,
				}
			}
			if err := writeEvent(w, flusher, sseChunk{
				Object:  "chat.completion.chunk",
				Model:   model,
				Choices: []sseChoice{{Delta: sseDelta{}, FinishReason: &reason}},
				Usage:   pendingUsage,
			}); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("writing SSE done marker: %w", err)
	}
	flusher.Flush()
	return nil
}

func choiceIndex(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event sseChunk) error {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling SSE chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonBytes); err != nil {
		return fmt.Errorf("writing SSE event: %w", err)
	}
	flusher.Flush()
	return nil
}
