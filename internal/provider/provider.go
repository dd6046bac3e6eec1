// Package provider holds one adapter per backend (OpenAI, Anthropic,
// Gemini, the OpenAI-compatible family, Ollama). Each adapter is a plain
// struct whose methods happen to match the capability interfaces declared
// in the root llmbridge package — Go's structural interface satisfaction
// means this package never imports llmbridge, avoiding an import cycle
// between the façade and its own adapters.
package provider

import (
	"time"

	"github.com/sibylline/llmbridge/internal/httpx"
	"github.com/sibylline/llmbridge/llmtypes"
)

// DefaultTimeout is the per-request deadline used when a Config doesn't
// override it. Callers needing a longer deadline for one specific call
// should set a deadline on the context instead of reconstructing the
// adapter.
const DefaultTimeout = 60 * time.Second

// Config is the shared construction parameter set every adapter accepts.
// Not every field is meaningful to every provider (Ollama ignores APIKey);
// unused fields are simply left zero by the builder.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	HTTPHeaders map[string]string
}

func (c Config) substrate(auth httpx.AuthStyle) *httpx.Substrate {
	s := httpx.New(c.APIKey, auth, orDefault(c.Timeout))
	s.Headers = c.HTTPHeaders
	return s
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// finishReasonFromStopReason maps Anthropic/Gemini-style stop-reason tags
// onto the unified FinishReason enum. Providers with their own taxonomy
// (OpenAI) use their own mapping function instead of reusing this one.
func finishReasonFromStopReason(reason string) (llmtypes.FinishReason, string) {
	switch reason {
	case "end_turn", "stop", "STOP", "":
		return llmtypes.FinishStop, ""
	case "max_tokens", "length", "MAX_TOKENS":
		return llmtypes.FinishLength, ""
	case "tool_use", "tool_calls", "function_call":
		return llmtypes.FinishToolCalls, ""
	case "content_filter", "SAFETY", "RECITATION":
		return llmtypes.FinishContentFilter, ""
	default:
		return llmtypes.OtherFinishReason(reason)
	}
}
