// Package params validates and normalizes the common generation parameters
// (spec §4.8) before a provider adapter maps them into its own request
// shape. Validation failures are returned as *llmtypes.Error with
// ErrConfiguration, produced before any network call.
package params

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sibylline/llmbridge/llmtypes"
)

var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks p's fields against the ranges in spec §4.8 and returns a
// *llmtypes.Error on the first violation found.
func Validate(p llmtypes.CommonParams) error {
	if strings.TrimSpace(p.Model) == "" {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "model must not be empty")
	}
	if !modelNamePattern.MatchString(p.Model) {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "model must contain only letters, digits, '-', '.', '_'")
	}
	if p.Temperature != nil && (*p.Temperature < 0.0 || *p.Temperature > 2.0) {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "temperature must be within 0.0..=2.0")
	}
	if p.MaxTokens != 0 && p.MaxTokens < 1 {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "max_tokens must be >= 1")
	}
	if p.TopP != nil && (*p.TopP < 0.0 || *p.TopP > 1.0) {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "top_p must be within 0.0..=1.0")
	}
	if p.FrequencyPenalty != nil && (*p.FrequencyPenalty < -2.0 || *p.FrequencyPenalty > 2.0) {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "frequency_penalty must be within -2.0..=2.0")
	}
	if p.PresencePenalty != nil && (*p.PresencePenalty < -2.0 || *p.PresencePenalty > 2.0) {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "presence_penalty must be within -2.0..=2.0")
	}
	for _, stop := range p.StopSequences {
		if stop == "" {
			return llmtypes.NewError(llmtypes.ErrConfiguration, "stop sequences must not be empty strings")
		}
	}
	if p.ReasoningBudget < 0 {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "reasoning_budget must be a positive integer")
	}
	return nil
}

// ValidateMessages checks the invariants from spec §3 on a message list:
// non-empty, Tool messages carry a ToolCallID, Assistant messages with
// ToolCalls or Content set appropriately.
func ValidateMessages(messages []llmtypes.ChatMessage) error {
	if len(messages) == 0 {
		return llmtypes.NewError(llmtypes.ErrInvalidInput, "messages must not be empty")
	}
	for i, m := range messages {
		if m.Role == llmtypes.RoleTool && m.ToolCallID == "" {
			return llmtypes.NewError(llmtypes.ErrInvalidInput, fmt.Sprintf("message %d: tool message missing tool_call_id", i))
		}
		if m.Role == llmtypes.RoleAssistant && m.Text == "" && len(m.Parts) == 0 && len(m.ToolCalls) == 0 {
			return llmtypes.NewError(llmtypes.ErrInvalidInput, fmt.Sprintf("message %d: assistant message has neither content nor tool_calls", i))
		}
	}
	return nil
}
