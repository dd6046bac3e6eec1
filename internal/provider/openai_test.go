package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"

	"github.com/sibylline/llmbridge/llmtypes"
)

// newReplayClient returns an http.Client that replays the named cassette
// under testdata/ instead of dialing out, matching requests on method and
// URL only (the default matcher) since request bodies carry no secrets to
// scrub in these fixtures.
func newReplayClient(t *testing.T, name string) *http.Client {
	t.Helper()
	r, err := recorder.New(
		recorder.WithCassette("testdata/"+name),
		recorder.WithMode(recorder.ModeReplayOnly),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, r.Stop()) })
	return &http.Client{Transport: r}
}

func TestOpenAI_Chat(t *testing.T) {
	oa := NewOpenAI(Config{APIKey: "sk-test"})
	oa.http.Client = newReplayClient(t, "openai_chat")

	resp, err := oa.Chat(context.Background(), []llmtypes.ChatMessage{
		llmtypes.NewUserMessage("Say hi in one word."),
	}, nil, llmtypes.CommonParams{Model: "gpt-4o-mini"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, "Hi!", resp.ContentText())
	assert.Equal(t, llmtypes.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestOpenAI_Capabilities(t *testing.T) {
	oa := NewOpenAI(Config{APIKey: "sk-test"})
	caps := oa.Capabilities()
	assert.True(t, caps.Chat)
	assert.True(t, caps.Embedding)
	assert.True(t, caps.Streaming)
	assert.True(t, caps.Supports("responses_api"))
}

func TestOpenAI_DefaultsBaseURL(t *testing.T) {
	oa := NewOpenAI(Config{APIKey: "sk-test"})
	assert.Equal(t, "openai", oa.Name())
	assert.Equal(t, "https://api.openai.com/v1", oa.cfg.BaseURL)
}
