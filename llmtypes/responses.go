package llmtypes

import "time"

// ResponseStatus is the finite status a background Response moves through.
// InProgress transitions to exactly one of Completed, Failed, or Cancelled;
// those three are absorbing (spec §3 state machine).
type ResponseStatus string

const (
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
	ResponseFailed     ResponseStatus = "failed"
	ResponseCancelled  ResponseStatus = "cancelled"
)

// Terminal reports whether the status is one of the absorbing end states.
func (s ResponseStatus) Terminal() bool {
	switch s {
	case ResponseCompleted, ResponseFailed, ResponseCancelled:
		return true
	default:
		return false
	}
}

// ResponseMetadata is a local, immutable snapshot of a provider-hosted
// background response's lifecycle state.
type ResponseMetadata struct {
	ID                 string
	Status             ResponseStatus
	CreatedAt          time.Time
	CompletedAt        *time.Time
	Model              string
	Background         bool
	PreviousResponseID string
	Err                string
}

// BackgroundResponseRequest parameterizes CreateResponseBackground and
// ContinueConversation.
type BackgroundResponseRequest struct {
	Model              string // left zero by Chain; a continuation inherits its model server-side
	Messages           []ChatMessage
	Tools              []Tool
	BuiltInTools       []string
	PreviousResponseID string
	Background         bool
}

// ResponseListQuery filters ListResponses.
type ResponseListQuery struct {
	Status ResponseStatus
	Limit  int
	Order  string // "asc" or "desc"
}
