package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestAnthropic_Chat(t *testing.T) {
	a := NewAnthropic(Config{APIKey: "sk-ant-test"})
	a.http.Client = newReplayClient(t, "anthropic_chat")

	resp, err := a.Chat(context.Background(), []llmtypes.ChatMessage{
		llmtypes.NewUserMessage("Say hi in one word."),
	}, nil, llmtypes.CommonParams{Model: "claude-3-5-sonnet-20241022", MaxTokens: 1024})
	require.NoError(t, err)

	assert.Equal(t, "Hi!", resp.ContentText())
	assert.Equal(t, llmtypes.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 3, resp.Usage.CompletionTokens)
}

func TestAnthropic_DefaultsBaseURLAndVersionHeader(t *testing.T) {
	a := NewAnthropic(Config{APIKey: "sk-ant-test"})
	assert.Equal(t, "anthropic", a.Name())
	assert.Equal(t, "https://api.anthropic.com/v1", a.cfg.BaseURL)
	assert.Equal(t, anthropicAPIVersion, a.http.Headers["anthropic-version"])
}

func TestAnthropic_Capabilities(t *testing.T) {
	a := NewAnthropic(Config{APIKey: "sk-ant-test"})
	assert.True(t, a.Capabilities().Vision)
	assert.True(t, a.Capabilities().Tools)
}
