package provider

import "github.com/sibylline/llmbridge/llmtypes"

// XAI adapts xAI's Grok models, which speak OpenAI's chat-completions wire
// format under a different base URL and model namespace.
type XAI struct {
	*OpenAI
}

// NewXAI builds an xAI adapter.
func NewXAI(cfg Config) *XAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai/v1"
	}
	oa := NewOpenAI(cfg)
	oa.name = "xai"
	return &XAI{OpenAI: oa}
}

// Capabilities reports xAI's feature set: chat and tools, but no audio,
// image generation, or moderation endpoints.
func (x *XAI) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat: true, Tools: true, Streaming: true, Vision: true,
		Custom: map[string]bool{"live_search": true},
	}
}
