package llmbridge

import (
	"strings"
	"time"

	"github.com/sibylline/llmbridge/internal/metrics"
	"github.com/sibylline/llmbridge/internal/provider"
	"github.com/sibylline/llmbridge/internal/ratelimit"
	"github.com/sibylline/llmbridge/llmtypes"
)

// Builder constructs a Client via a fluent configuration API. Once Build
// is called the resulting Client's configuration is read-only; further
// Builder calls on the same value affect only that value, matching the
// "mutation methods on the builder return a new configured value"
// requirement of spec §5.
type Builder struct {
	providerName string
	cfg          provider.Config
	params       llmtypes.CommonParams
	custom       Chat
	metrics      *metrics.Registry
	limiter      *ratelimit.Limiter
}

// NewBuilder starts a Builder targeting the named backend (e.g. "openai",
// "anthropic", "gemini", "xai", "groq", "deepseek", "openrouter", "ollama").
func NewBuilder(providerName string) *Builder {
	return &Builder{providerName: strings.ToLower(providerName)}
}

// WithAPIKey sets the backend's API key.
func (b *Builder) WithAPIKey(key string) *Builder {
	nb := *b
	nb.cfg.APIKey = key
	return &nb
}

// WithBaseURL overrides the backend's default API root.
func (b *Builder) WithBaseURL(url string) *Builder {
	nb := *b
	nb.cfg.BaseURL = url
	return &nb
}

// WithTimeout overrides the per-request timeout.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	nb := *b
	nb.cfg.Timeout = d
	return &nb
}

// WithHeader sets one extra HTTP header sent with every request (e.g.
// OpenRouter's "HTTP-Referer").
func (b *Builder) WithHeader(key, value string) *Builder {
	nb := *b
	headers := make(map[string]string, len(b.cfg.HTTPHeaders)+1)
	for k, v := range b.cfg.HTTPHeaders {
		headers[k] = v
	}
	headers[key] = value
	nb.cfg.HTTPHeaders = headers
	return &nb
}

// WithModel sets the model identifier used for every call made through the
// built Client.
func (b *Builder) WithModel(model string) *Builder {
	nb := *b
	nb.params.Model = model
	return &nb
}

// WithTemperature sets the sampling temperature (0.0..=2.0).
func (b *Builder) WithTemperature(t float64) *Builder {
	nb := *b
	nb.params.Temperature = &t
	return &nb
}

// WithMaxTokens sets the generation cap.
func (b *Builder) WithMaxTokens(n int) *Builder {
	nb := *b
	nb.params.MaxTokens = n
	return &nb
}

// WithTopP sets nucleus-sampling top_p (0.0..=1.0).
func (b *Builder) WithTopP(p float64) *Builder {
	nb := *b
	nb.params.TopP = &p
	return &nb
}

// WithStopSequences sets early-termination tokens.
func (b *Builder) WithStopSequences(stops ...string) *Builder {
	nb := *b
	nb.params.StopSequences = stops
	return &nb
}

// WithPassthrough sets provider-native parameters that bypass the common
// mapping and always win when merged into the adapter's request body.
func (b *Builder) WithPassthrough(passthrough map[string]any) *Builder {
	nb := *b
	nb.params.Passthrough = passthrough
	return &nb
}

// WithCustomProvider installs an externally-built adapter as the façade's
// backend, per the custom-provider seam of spec §4.9. When set, it takes
// precedence over providerName at Build time.
func (b *Builder) WithCustomProvider(adapter Chat) *Builder {
	nb := *b
	nb.custom = adapter
	return &nb
}

// WithMetricsRegistry installs a Prometheus-backed metrics.Registry that
// every Client built from this point on will record requests against.
func (b *Builder) WithMetricsRegistry(r *metrics.Registry) *Builder {
	nb := *b
	nb.metrics = r
	return &nb
}

// WithRateLimiter installs a token-bucket limiter that throttles this
// Client's own call rate, independent of any limit the backend enforces.
func (b *Builder) WithRateLimiter(limiter *ratelimit.Limiter) *Builder {
	nb := *b
	nb.limiter = limiter
	return &nb
}

// Build constructs the Client, instantiating the named backend adapter (or
// using the installed custom adapter).
func (b *Builder) Build() (*Client, error) {
	var adapter Chat
	if b.custom != nil {
		adapter = b.custom
	} else {
		a, err := b.buildAdapter()
		if err != nil {
			return nil, err
		}
		adapter = a
	}

	client := NewClient(adapter, b.params)
	if b.metrics != nil {
		client = client.WithMetrics(b.metrics)
	}
	if b.limiter != nil {
		client = client.WithRateLimit(b.limiter)
	}
	return client, nil
}

// BuildCaching constructs a Client and wraps it in a CachingClient backed
// by an in-process LRU of the given capacity and per-entry ttl.
func (b *Builder) BuildCaching(capacity int, ttl time.Duration) (*CachingClient, error) {
	client, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewCachingClient(client, capacity, ttl), nil
}

func (b *Builder) buildAdapter() (Chat, error) {
	switch b.providerName {
	case "openai":
		return provider.NewOpenAI(b.cfg), nil
	case "anthropic":
		return provider.NewAnthropic(b.cfg), nil
	case "gemini", "google":
		return provider.NewGemini(b.cfg), nil
	case "xai", "grok":
		return provider.NewXAI(b.cfg), nil
	case "groq":
		return provider.NewGroq(b.cfg), nil
	case "deepseek":
		return provider.NewDeepSeek(b.cfg), nil
	case "openrouter":
		return provider.NewOpenRouter(b.cfg), nil
	case "ollama":
		return provider.NewOllama(b.cfg), nil
	default:
		return nil, llmtypes.NewError(llmtypes.ErrConfiguration, "unknown provider: "+b.providerName)
	}
}
