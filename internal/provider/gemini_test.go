package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestGemini_Chat(t *testing.T) {
	g := NewGemini(Config{APIKey: "test-key"})
	g.http.Client = newReplayClient(t, "gemini_chat")

	resp, err := g.Chat(context.Background(), []llmtypes.ChatMessage{
		llmtypes.NewUserMessage("Say hi in one word."),
	}, nil, llmtypes.CommonParams{Model: "gemini-1.5-flash"})
	require.NoError(t, err)

	assert.Equal(t, "Hi!", resp.ContentText())
	assert.Equal(t, llmtypes.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestGemini_DefaultsBaseURL(t *testing.T) {
	g := NewGemini(Config{APIKey: "test-key"})
	assert.Equal(t, "gemini", g.Name())
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", g.cfg.BaseURL)
}

func TestGemini_Capabilities(t *testing.T) {
	g := NewGemini(Config{APIKey: "test-key"})
	caps := g.Capabilities()
	assert.True(t, caps.Supports("search_grounding"))
	assert.False(t, caps.Embedding)
}
