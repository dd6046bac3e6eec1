package llmbridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestEchoAdapter_SatisfiesChatViaCustomProviderSeam(t *testing.T) {
	client, err := NewBuilder("unused").
		WithModel("echo-1").
		WithCustomProvider(NewEchoAdapter("echo")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "echo", client.Name())
	assert.True(t, client.Supports("chat"))
	assert.False(t, client.Supports("embedding"))

	resp, err := client.Chat(context.Background(), []llmtypes.ChatMessage{llmtypes.NewUserMessage("hello there")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.ContentText())
	assert.Equal(t, llmtypes.FinishStop, resp.FinishReason)
}

func TestEchoAdapter_Stream(t *testing.T) {
	client, err := NewBuilder("unused").
		WithModel("echo-1").
		WithCustomProvider(NewEchoAdapter("echo")).
		Build()
	require.NoError(t, err)

	stream, err := client.ChatStream(context.Background(), []llmtypes.ChatMessage{llmtypes.NewUserMessage("ping")})
	require.NoError(t, err)

	var kinds []llmtypes.StreamEventKind
	var finalText string
	for ev := range stream {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == llmtypes.StreamEnd {
			finalText = ev.Response.ContentText()
		}
	}
	assert.Equal(t, []llmtypes.StreamEventKind{llmtypes.StreamStart, llmtypes.StreamContentDelta, llmtypes.StreamEnd}, kinds)
	assert.Equal(t, "ping", finalText)
}

func TestEchoAdapter_RejectsEmptyMessages(t *testing.T) {
	adapter := NewEchoAdapter("echo")
	_, err := adapter.Chat(context.Background(), nil, nil, llmtypes.CommonParams{Model: "echo-1"})
	require.Error(t, err)
	var e *llmtypes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, llmtypes.ErrInvalidInput, e.Kind)
}

func TestClient_UnsupportedCapabilityReturnsUnsupportedError(t *testing.T) {
	client, err := NewBuilder("unused").WithCustomProvider(NewEchoAdapter("echo")).Build()
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	var e *llmtypes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, llmtypes.ErrUnsupported, e.Kind)
}
