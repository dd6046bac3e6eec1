// Package config loads llmbridge's own configuration: which backend to
// build, its credentials and timeouts, and the response-cache settings —
// generalizing the teacher's gateway config loader to the façade's full
// parameter surface instead of a static provider map.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for an llmbridge-backed
// application: which provider to build a Client against, and the cache
// settings layered on top via CachingClient.
type Config struct {
	Provider string                    `koanf:"provider"`
	Model    string                    `koanf:"model"`
	Backends map[string]BackendConfig  `koanf:"backends"`
	Cache    CacheConfig               `koanf:"cache"`
}

// BackendConfig holds the settings for one named provider backend.
type BackendConfig struct {
	APIKey  string            `koanf:"api_key"`
	BaseURL string            `koanf:"base_url"`
	Timeout time.Duration     `koanf:"timeout"`
	Headers map[string]string `koanf:"headers"`
}

// CacheConfig holds the in-process response-cache settings.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// Load reads configuration from a YAML file, layers LLMBRIDGE_-prefixed
// environment variable overrides on top, and expands ${VAR} placeholders
// in every backend's api_key.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Every "_" becomes ".": LLMBRIDGE_CACHE_CAPACITY -> cache.capacity. A
	// leaf key that itself contains an underscore is not reachable this way:
	// LLMBRIDGE_BACKENDS_OPENAI_API_KEY -> backends.openai.api.key
	if err := k.Load(env.Provider("LLMBRIDGE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "LLMBRIDGE_")),
			"_", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	for name, b := range cfg.Backends {
		if strings.HasPrefix(b.APIKey, "${") && strings.HasSuffix(b.APIKey, "}") {
			envVar := b.APIKey[2 : len(b.APIKey)-1]
			b.APIKey = os.Getenv(envVar)
			cfg.Backends[name] = b
		}
	}

	return &cfg, nil
}
