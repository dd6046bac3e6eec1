package provider

import "github.com/sibylline/llmbridge/llmtypes"

// OpenRouter adapts OpenRouter's unified routing API, which speaks
// OpenAI's chat-completions wire format and fans requests out to whichever
// upstream model the caller names (e.g. "anthropic/claude-3.5-sonnet").
type OpenRouter struct {
	*OpenAI
}

// NewOpenRouter builds an OpenRouter adapter. HTTPHeaders should usually
// carry "HTTP-Referer" and "X-Title", which OpenRouter uses for attribution
// on its leaderboard.
func NewOpenRouter(cfg Config) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	oa := NewOpenAI(cfg)
	oa.name = "openrouter"
	return &OpenRouter{OpenAI: oa}
}

// Capabilities reports OpenRouter's feature set. Whether a specific routed
// model actually supports vision or tools is a property of that model, not
// of OpenRouter itself; the flags here describe what the API surface
// allows a caller to ask for.
func (r *OpenRouter) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat: true, Tools: true, Streaming: true, Vision: true,
		Custom: map[string]bool{"model_routing": true},
	}
}
