package llmtypes

import "fmt"

// ProviderCapabilities is the fixed-field capability flag set every adapter
// declares, plus an open map for provider-specific named flags (e.g.
// "structured_output", "reasoning", "local_models").
type ProviderCapabilities struct {
	Chat            bool
	Audio           bool
	Vision          bool
	Tools           bool
	Embedding       bool
	Streaming       bool
	FileManagement  bool
	Custom          map[string]bool
}

// Supports reports whether a named feature is advertised, checking both the
// fixed fields (by their canonical lowercase name) and the open Custom map.
func (c ProviderCapabilities) Supports(feature string) bool {
	switch feature {
	case "chat":
		return c.Chat
	case "audio":
		return c.Audio
	case "vision":
		return c.Vision
	case "tools":
		return c.Tools
	case "embedding":
		return c.Embedding
	case "streaming":
		return c.Streaming
	case "file_management":
		return c.FileManagement
	}
	if c.Custom == nil {
		return false
	}
	return c.Custom[feature]
}

// Describe renders a human-readable one-line capability summary, for
// capability-detection callers that want to print a quick summary instead
// of querying Supports per feature.
func (c ProviderCapabilities) Describe() string {
	flags := []struct {
		name string
		on   bool
	}{
		{"chat", c.Chat},
		{"audio", c.Audio},
		{"vision", c.Vision},
		{"tools", c.Tools},
		{"embedding", c.Embedding},
		{"streaming", c.Streaming},
		{"file_management", c.FileManagement},
	}
	s := ""
	for _, f := range flags {
		mark := "-"
		if f.on {
			mark = "+"
		}
		s += fmt.Sprintf("%s%s ", mark, f.name)
	}
	for name, on := range c.Custom {
		mark := "-"
		if on {
			mark = "+"
		}
		s += fmt.Sprintf("%s%s ", mark, name)
	}
	return s
}
