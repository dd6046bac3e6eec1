package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestOllama_Chat(t *testing.T) {
	o := NewOllama(Config{})
	o.http.Client = newReplayClient(t, "ollama_chat")

	resp, err := o.Chat(context.Background(), []llmtypes.ChatMessage{
		llmtypes.NewUserMessage("Say hi in one word."),
	}, nil, llmtypes.CommonParams{Model: "llama3"})
	require.NoError(t, err)

	assert.Equal(t, "llama3", resp.Model)
	assert.Equal(t, "Hi!", resp.ContentText())
	assert.Equal(t, llmtypes.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 11, resp.Usage.TotalTokens)
}

func TestOllama_DefaultsLocalURL(t *testing.T) {
	o := NewOllama(Config{})
	assert.Equal(t, "ollama", o.Name())
	assert.Equal(t, "http://localhost:11434", o.cfg.BaseURL)
}

func TestOllama_Capabilities(t *testing.T) {
	o := NewOllama(Config{})
	caps := o.Capabilities()
	assert.True(t, caps.Embedding)
	assert.False(t, caps.Vision)
}
