package provider

import "github.com/sibylline/llmbridge/llmtypes"

// Groq adapts Groq's low-latency inference API, which speaks OpenAI's
// chat-completions wire format under a different base URL.
type Groq struct {
	*OpenAI
}

// NewGroq builds a Groq adapter.
func NewGroq(cfg Config) *Groq {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	oa := NewOpenAI(cfg)
	oa.name = "groq"
	return &Groq{OpenAI: oa}
}

// Capabilities reports Groq's feature set: chat, tools, and audio
// transcription (Whisper-family models), but no image generation.
func (g *Groq) Capabilities() llmtypes.ProviderCapabilities {
	return llmtypes.ProviderCapabilities{
		Chat: true, Tools: true, Streaming: true, Audio: true,
		Custom: map[string]bool{"low_latency": true},
	}
}
