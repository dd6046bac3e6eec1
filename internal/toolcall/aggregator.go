// Package toolcall accumulates streaming ToolCallDelta events into complete
// ToolCall records (spec §4.3.6, property P5). One Aggregator is scoped to
// a single stream.
package toolcall

import (
	"strconv"

	"github.com/sibylline/llmbridge/llmtypes"
)

type entry struct {
	id        string
	name      string
	arguments string
}

// Aggregator maintains a key→entry map, keyed by id when the provider sends
// one, or by positional index otherwise. A delta that carries both also
// registers its index, so later index-only fragments of the same call join
// that entry. No JSON validation is performed on
// the accumulated arguments string during streaming.
type Aggregator struct {
	order   []string // insertion order of keys, so Finalize is deterministic
	entries map[string]*entry
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{entries: make(map[string]*entry)}
}

// key computes the map key for a delta: the id if present, otherwise the
// stringified index. A delta with neither is ignored (can't be aggregated).
func key(d llmtypes.ToolCallDelta) (string, bool) {
	if d.ID != "" {
		return "id:" + d.ID, true
	}
	if d.Index != nil {
		return "idx:" + strconv.Itoa(*d.Index), true
	}
	return "", false
}

// Add folds one ToolCallDelta into the aggregator.
func (a *Aggregator) Add(d llmtypes.ToolCallDelta) {
	k, ok := key(d)
	if !ok {
		return
	}
	e, exists := a.entries[k]
	if !exists {
		e = &entry{}
		a.entries[k] = e
		a.order = append(a.order, k)
	}
	if d.ID != "" && d.Index != nil {
		// Later fragments of this call may carry only the index.
		a.entries["idx:"+strconv.Itoa(*d.Index)] = e
	}
	if d.ID != "" && e.id == "" {
		e.id = d.ID
	}
	if d.FunctionName != "" && e.name == "" {
		e.name = d.FunctionName
	}
	e.arguments += d.ArgumentsDelta
}

// Finalize returns the fully-assembled ToolCall records in first-seen
// order, ready to attach to the final ChatResponse.
func (a *Aggregator) Finalize() []llmtypes.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	calls := make([]llmtypes.ToolCall, 0, len(a.order))
	for _, k := range a.order {
		e := a.entries[k]
		calls = append(calls, llmtypes.ToolCall{
			ID:   e.id,
			Type: "function",
			Function: llmtypes.ToolCallFunction{
				Name:      e.name,
				Arguments: e.arguments,
			},
		})
	}
	return calls
}

// Empty reports whether any deltas have been aggregated yet.
func (a *Aggregator) Empty() bool { return len(a.order) == 0 }
