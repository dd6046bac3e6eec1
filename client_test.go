package llmbridge

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/internal/metrics"
	"github.com/sibylline/llmbridge/internal/ratelimit"
	"github.com/sibylline/llmbridge/llmtypes"
)

func TestClient_AskAndAskWithSystem(t *testing.T) {
	client := NewClient(NewEchoAdapter("echo"), llmtypes.CommonParams{Model: "echo-1"})

	text, err := client.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = client.AskWithSystem(context.Background(), "be terse", "hello again")
	require.NoError(t, err)
	assert.Equal(t, "hello again", text)
}

func TestClient_ContinueConversationSync(t *testing.T) {
	client := NewClient(NewEchoAdapter("echo"), llmtypes.CommonParams{Model: "echo-1"})

	history := []llmtypes.ChatMessage{llmtypes.NewUserMessage("first")}
	history, resp, err := client.ContinueConversationSync(context.Background(), history, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", resp.ContentText())
	assert.Len(t, history, 3) // original + new user message + echoed assistant reply
}

func TestClient_WithMetricsRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	client := NewClient(NewEchoAdapter("echo"), llmtypes.CommonParams{Model: "echo-1"}).WithMetrics(m)
	_, err := client.Chat(context.Background(), []llmtypes.ChatMessage{llmtypes.NewUserMessage("hi")})
	require.NoError(t, err)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, metricFamilies)
}

func TestClient_WithRateLimitThrottles(t *testing.T) {
	limiter := ratelimit.New(1000, 1)
	client := NewClient(NewEchoAdapter("echo"), llmtypes.CommonParams{Model: "echo-1"}).WithRateLimit(limiter)

	_, err := client.Chat(context.Background(), []llmtypes.ChatMessage{llmtypes.NewUserMessage("hi")})
	require.NoError(t, err)

	stats := limiter.Stats()
	assert.Equal(t, 1, stats.TotalCalls)
	assert.Equal(t, 1, stats.Allowed)
}

func TestClient_WithParamsPreservesMetricsAndLimiter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	limiter := ratelimit.New(1000, 1)

	client := NewClient(NewEchoAdapter("echo"), llmtypes.CommonParams{Model: "echo-1"}).
		WithMetrics(m).
		WithRateLimit(limiter).
		WithParams(llmtypes.CommonParams{Model: "echo-2"})

	assert.Equal(t, "echo-2", client.params.Model)
	assert.NotNil(t, client.metrics)
	assert.NotNil(t, client.limiter)
}
