package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestFingerprint_DeterministicForIdenticalInput(t *testing.T) {
	params := llmtypes.CommonParams{Model: "gpt-5", MaxTokens: 100}
	messages := []llmtypes.ChatMessage{llmtypes.NewUserMessage("hello")}

	k1, err := Fingerprint(params, messages, nil)
	require.NoError(t, err)
	k2, err := Fingerprint(params, messages, nil)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64) // hex-encoded sha256
}

func TestFingerprint_DiffersOnMessageContent(t *testing.T) {
	params := llmtypes.CommonParams{Model: "gpt-5"}

	k1, err := Fingerprint(params, []llmtypes.ChatMessage{llmtypes.NewUserMessage("hello")}, nil)
	require.NoError(t, err)
	k2, err := Fingerprint(params, []llmtypes.ChatMessage{llmtypes.NewUserMessage("goodbye")}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestFingerprint_ToolParameterKeyOrderDoesNotAffectKey(t *testing.T) {
	params := llmtypes.CommonParams{Model: "gpt-5"}
	messages := []llmtypes.ChatMessage{llmtypes.NewUserMessage("what's the weather")}

	toolsA := []llmtypes.Tool{{
		Name:       "get_weather",
		Parameters: map[string]any{"city": "string", "units": "string"},
	}}
	toolsB := []llmtypes.Tool{{
		Name:       "get_weather",
		Parameters: map[string]any{"units": "string", "city": "string"},
	}}

	kA, err := Fingerprint(params, messages, toolsA)
	require.NoError(t, err)
	kB, err := Fingerprint(params, messages, toolsB)
	require.NoError(t, err)

	assert.Equal(t, kA, kB)
}

func TestFingerprint_ToolOrderInRequestDoesNotAffectKey(t *testing.T) {
	params := llmtypes.CommonParams{Model: "gpt-5"}
	messages := []llmtypes.ChatMessage{llmtypes.NewUserMessage("x")}

	weather := llmtypes.Tool{Name: "get_weather"}
	search := llmtypes.Tool{Name: "web_search"}

	k1, err := Fingerprint(params, messages, []llmtypes.Tool{weather, search})
	require.NoError(t, err)
	k2, err := Fingerprint(params, messages, []llmtypes.Tool{search, weather})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestFingerprint_DiffersOnModel(t *testing.T) {
	messages := []llmtypes.ChatMessage{llmtypes.NewUserMessage("hi")}

	k1, err := Fingerprint(llmtypes.CommonParams{Model: "gpt-5"}, messages, nil)
	require.NoError(t, err)
	k2, err := Fingerprint(llmtypes.CommonParams{Model: "claude-sonnet"}, messages, nil)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}
