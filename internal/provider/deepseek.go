package provider

import "github.com/sibylline/llmbridge/llmtypes"

// DeepSeek adapts DeepSeek's chat API, which speaks OpenAI's
// chat-completions wire format under a different base URL. DeepSeek's
// reasoner models return a native "reasoning_content" field rather than
// inline <think> tags. Responses go through the OpenAI adapter unchanged:
// "reasoning_content" is not decoded, so ChatResponse.Thinking and the
// ThinkingDelta events carry only text found inside inline <think> tags.
type DeepSeek struct {
	*OpenAI
}

// NewDeepSeek builds a DeepSeek adapter.
func NewDeepSeek(cfg Config) *DeepSeek {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	oa := NewOpenAI(cfg)
	oa.name = "deepseek"
	return &DeepSeek{OpenAI: oa}
}

// Capabilities reports DeepSeek's feature set.
func (d *DeepSeek) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat: true, Tools: true, Streaming: true,
		Custom: map[string]bool{"reasoning": true},
	}
}
