package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/sibylline/llmbridge/llmtypes"
)

// canonicalRequest is the stable, JSON-encodable projection of a chat call
// that the cache key is derived from (spec §6). Field order in the struct
// and sorted map keys make the JSON encoding deterministic across runs for
// identical logical input.
type canonicalRequest struct {
	Model         string             `json:"model"`
	Messages      []canonicalMessage `json:"messages"`
	Tools         []canonicalTool    `json:"tools,omitempty"`
	Temperature   *float64           `json:"temperature,omitempty"`
	TopP          *float64           `json:"top_p,omitempty"`
	MaxTokens     int                `json:"max_tokens,omitempty"`
	Seed          *uint64            `json:"seed,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
	Passthrough   map[string]any     `json:"passthrough,omitempty"`
}

type canonicalMessage struct {
	Role       string                  `json:"role"`
	Text       string                  `json:"text,omitempty"`
	Parts      []llmtypes.ContentPart  `json:"parts,omitempty"`
	ToolCallID string                  `json:"tool_call_id,omitempty"`
	ToolCalls  []llmtypes.ToolCall     `json:"tool_calls,omitempty"`
}

type canonicalTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"` // re-marshaled to stabilize key order
}

// Fingerprint computes a content-addressed cache key over a canonicalized
// view of the request: model, every message in order, declared tools, and
// the common parameters that affect output (spec §4.6, §6). Two logically
// identical calls always hash to the same key regardless of map-iteration
// order in Passthrough or Tool.Parameters.
func Fingerprint(params llmtypes.CommonParams, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (string, error) {
	cr := canonicalRequest{
		Model:         params.Model,
		Temperature:   params.Temperature,
		TopP:          params.TopP,
		MaxTokens:     params.MaxTokens,
		Seed:          params.Seed,
		StopSequences: params.StopSequences,
		Passthrough:   params.Passthrough,
	}

	for _, m := range messages {
		cr.Messages = append(cr.Messages, canonicalMessage{
			Role:       string(m.Role),
			Text:       m.Text,
			Parts:      m.Parts,
			ToolCallID: m.ToolCallID,
			ToolCalls:  m.ToolCalls,
		})
	}

	names := make([]string, 0, len(tools))
	byName := make(map[string]llmtypes.Tool, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
		byName[t.Name] = t
	}
	sort.Strings(names)
	for _, n := range names {
		t := byName[n]
		paramsJSON, err := json.Marshal(t.Parameters)
		if err != nil {
			return "", llmtypes.NewError(llmtypes.ErrInvalidInput, "cache: marshal tool parameters: "+err.Error())
		}
		cr.Tools = append(cr.Tools, canonicalTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  string(paramsJSON),
		})
	}

	encoded, err := json.Marshal(cr)
	if err != nil {
		return "", llmtypes.NewError(llmtypes.ErrInvalidInput, "cache: marshal canonical request: "+err.Error())
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
