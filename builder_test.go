package llmbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestBuilder_CopyOnWrite(t *testing.T) {
	base := NewBuilder("openai").WithAPIKey("sk-base").WithModel("gpt-4o")
	withTemp := base.WithTemperature(0.2)

	assert.Nil(t, base.params.Temperature, "WithTemperature must not mutate the receiver")
	require.NotNil(t, withTemp.params.Temperature)
	assert.Equal(t, 0.2, *withTemp.params.Temperature)

	assert.Equal(t, "sk-base", base.cfg.APIKey, "the original builder keeps its own config")
	assert.Equal(t, "sk-base", withTemp.cfg.APIKey, "the derived builder inherits unrelated fields")
}

func TestBuilder_WithHeaderMergesWithoutMutatingParent(t *testing.T) {
	base := NewBuilder("openrouter").WithHeader("HTTP-Referer", "https://example.com")
	extended := base.WithHeader("X-Title", "demo")

	assert.Len(t, base.cfg.HTTPHeaders, 1)
	assert.Len(t, extended.cfg.HTTPHeaders, 2)
	assert.Equal(t, "https://example.com", extended.cfg.HTTPHeaders["HTTP-Referer"])
}

func TestBuilder_BuildUnknownProvider(t *testing.T) {
	_, err := NewBuilder("not-a-real-provider").Build()
	require.Error(t, err)
	var e *llmtypes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, llmtypes.ErrConfiguration, e.Kind)
}

func TestBuilder_BuildKnownProviders(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "gemini", "xai", "groq", "deepseek", "openrouter", "ollama"} {
		client, err := NewBuilder(name).WithAPIKey("k").Build()
		require.NoError(t, err, name)
		assert.NotEmpty(t, client.Name(), name)
	}
}

func TestBuilder_BuildCaching(t *testing.T) {
	client, err := NewBuilder("unused").WithCustomProvider(NewEchoAdapter("echo")).BuildCaching(8, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "echo", client.Name())
	require.NoError(t, client.Close())
}
