package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
provider: anthropic
model: claude-3-5-sonnet

backends:
  anthropic:
    api_key: ${TEST_API_KEY}
    base_url: https://example.com/v1
    timeout: 45s

cache:
  enabled: true
  capacity: 256
  ttl: 5m
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("TEST_API_KEY", "my-secret-key")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-3-5-sonnet", cfg.Model)

	backend, ok := cfg.Backends["anthropic"]
	assert.True(t, ok, "anthropic backend should exist")
	assert.Equal(t, "my-secret-key", backend.APIKey)
	assert.Equal(t, "https://example.com/v1", backend.BaseURL)
	assert.Equal(t, 45*time.Second, backend.Timeout)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 256, cfg.Cache.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
provider: openai
model: gpt-4o

cache:
  capacity: 100
  ttl: 1m
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// This should override model from "gpt-4o" to "gpt-4o-mini".
	t.Setenv("LLMBRIDGE_MODEL", "gpt-4o-mini")
	// cache.capacity has no underscore in its leaf key, so the env
	// provider's blanket "_"->"." transform doesn't mangle it.
	t.Setenv("LLMBRIDGE_CACHE_CAPACITY", "500")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 500, cfg.Cache.Capacity)
}
