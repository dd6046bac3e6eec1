package llmtypes

// CommonParams are the provider-agnostic generation parameters every
// adapter maps into its own request shape (spec §4.8). Zero values mean
// "not set" — adapters fall back to their own defaults in that case.
type CommonParams struct {
	Model             string
	Temperature       *float64
	MaxTokens         int
	TopP              *float64
	Seed              *uint64
	StopSequences     []string
	FrequencyPenalty  *float64
	PresencePenalty   *float64
	ReasoningEnabled  bool
	ReasoningBudget   int

	// Passthrough holds provider-native parameters that bypass the common
	// mapping entirely. It is merged into the provider's request body
	// after the common-parameter mapping, so passthrough always wins
	// (spec §9 "provider-open parameter passthrough").
	Passthrough map[string]any
}
