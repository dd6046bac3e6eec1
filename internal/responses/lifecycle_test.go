package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestTracker_CreateStartsInProgress(t *testing.T) {
	tr := NewTracker()
	meta := tr.Create("gpt-5", true, "")
	assert.Equal(t, llmtypes.ResponseInProgress, meta.Status)
	assert.NotEmpty(t, meta.ID)
	assert.False(t, tr.IsReady(meta.ID))
}

func TestTracker_TransitionToTerminalStopsNeedingPoll(t *testing.T) {
	tr := NewTracker()
	meta := tr.Create("gpt-5", true, "")

	_, _, needsPoll := tr.Get(meta.ID)
	assert.True(t, needsPoll)

	tr.Transition(meta.ID, llmtypes.ResponseCompleted, "")

	got, found, needsPoll := tr.Get(meta.ID)
	require.True(t, found)
	assert.Equal(t, llmtypes.ResponseCompleted, got.Status)
	assert.False(t, needsPoll)
	assert.NotNil(t, got.CompletedAt)
	assert.True(t, tr.IsReady(meta.ID))
}

func TestTracker_TerminalStateIsAbsorbing(t *testing.T) {
	tr := NewTracker()
	meta := tr.Create("gpt-5", true, "")

	tr.Transition(meta.ID, llmtypes.ResponseFailed, "boom")
	tr.Transition(meta.ID, llmtypes.ResponseCompleted, "") // stale duplicate, must be ignored

	got, _, _ := tr.Get(meta.ID)
	assert.Equal(t, llmtypes.ResponseFailed, got.Status)
	assert.Equal(t, "boom", got.Err)
}

func TestTracker_CancelTerminalResponseKeepsExistingOutcome(t *testing.T) {
	tr := NewTracker()
	meta := tr.Create("gpt-5", true, "")
	tr.Transition(meta.ID, llmtypes.ResponseCompleted, "")

	got, err := tr.Cancel(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, llmtypes.ResponseCompleted, got.Status)
}

func TestTracker_CancelInProgressResponse(t *testing.T) {
	tr := NewTracker()
	meta := tr.Create("gpt-5", true, "")

	got, err := tr.Cancel(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, llmtypes.ResponseCancelled, got.Status)
}

func TestTracker_ObserveRegistersUnseenID(t *testing.T) {
	tr := NewTracker()
	meta := tr.Observe("resp_ext", "gpt-5", llmtypes.ResponseCompleted, "")

	assert.Equal(t, llmtypes.ResponseCompleted, meta.Status)
	assert.NotNil(t, meta.CompletedAt)
	assert.True(t, tr.IsReady("resp_ext"))
}

func TestTracker_ObserveIgnoresUpdateOnceTerminal(t *testing.T) {
	tr := NewTracker()
	tr.Observe("resp_ext", "gpt-5", llmtypes.ResponseFailed, "boom")

	got := tr.Observe("resp_ext", "gpt-5", llmtypes.ResponseCompleted, "")

	assert.Equal(t, llmtypes.ResponseFailed, got.Status)
	assert.Equal(t, "boom", got.Err)
}

func TestTracker_CancelUnknownID(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Cancel("does-not-exist")
	require.Error(t, err)
	var e *llmtypes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, llmtypes.ErrNotFound, e.Kind)
}

func TestTracker_ListFiltersByStatusAndLimit(t *testing.T) {
	tr := NewTracker()
	a := tr.Create("gpt-5", true, "")
	b := tr.Create("gpt-5", true, "")
	c := tr.Create("gpt-5", true, "")
	tr.Transition(a.ID, llmtypes.ResponseCompleted, "")
	tr.Transition(b.ID, llmtypes.ResponseFailed, "err")

	completed := tr.List(llmtypes.ResponseListQuery{Status: llmtypes.ResponseCompleted})
	require.Len(t, completed, 1)
	assert.Equal(t, a.ID, completed[0].ID)

	all := tr.List(llmtypes.ResponseListQuery{Limit: 2})
	assert.Len(t, all, 2)

	_ = c
}

func TestChain_BuildsContinuationRequest(t *testing.T) {
	messages := []llmtypes.ChatMessage{llmtypes.NewUserMessage("continue")}
	req := Chain("resp_123", messages, nil, true)
	assert.Equal(t, "resp_123", req.PreviousResponseID)
	assert.True(t, req.Background)
	assert.Equal(t, messages, req.Messages)
}
