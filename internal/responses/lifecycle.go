// Package responses tracks the lifecycle of provider-hosted background
// responses (spec §4.4): the InProgress → {Completed, Failed, Cancelled}
// state machine, continuation chaining via PreviousResponseID, and the
// monotonic terminal-state cache that property P10 requires (once a
// response is observed terminal, it is never re-fetched from the
// provider).
package responses

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sibylline/llmbridge/llmtypes"
)

// Tracker is the in-process store of ResponseMetadata for every background
// response an adapter has created or observed. Adapters own the actual
// polling of the provider; Tracker only owns the state machine and the
// terminal-result cache.
type Tracker struct {
	mu      sync.RWMutex
	items   map[string]llmtypes.ResponseMetadata
	content map[string]*llmtypes.ChatResponse
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		items:   make(map[string]llmtypes.ResponseMetadata),
		content: make(map[string]*llmtypes.ChatResponse),
	}
}

// SetContent caches the fetched content for a terminal response id, so a
// later GetResponse call never needs to re-fetch it (property P10).
func (t *Tracker) SetContent(id string, resp *llmtypes.ChatResponse) {
	t.mu.Lock()
	t.content[id] = resp
	t.mu.Unlock()
}

// Content returns the cached content for id, if any has been recorded.
func (t *Tracker) Content(id string) (*llmtypes.ChatResponse, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	resp, ok := t.content[id]
	return resp, ok
}

// Create registers a new InProgress response and returns its metadata. The
// id is generated here (uuid v4) when the caller doesn't already have a
// provider-assigned id at creation time; adapters that get an id back from
// the provider's create call should pass it in via Adopt instead.
func (t *Tracker) Create(model string, background bool, previousResponseID string) llmtypes.ResponseMetadata {
	meta := llmtypes.ResponseMetadata{
		ID:                 uuid.NewString(),
		Status:             llmtypes.ResponseInProgress,
		CreatedAt:          time.Now(),
		Model:              model,
		Background:         background,
		PreviousResponseID: previousResponseID,
	}
	t.mu.Lock()
	t.items[meta.ID] = meta
	t.mu.Unlock()
	return meta
}

// Adopt registers metadata for a response whose id was assigned by the
// provider rather than generated locally (e.g. the id came back in the
// create call's response body).
func (t *Tracker) Adopt(meta llmtypes.ResponseMetadata) {
	t.mu.Lock()
	t.items[meta.ID] = meta
	t.mu.Unlock()
}

// Get returns the locally cached metadata for id, and whether the caller
// still needs to poll the provider: needsPoll is false once the response
// has reached a terminal status, since terminal states are absorbing and
// the cached result is therefore final (property P10).
func (t *Tracker) Get(id string) (meta llmtypes.ResponseMetadata, found bool, needsPoll bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	meta, found = t.items[id]
	if !found {
		return meta, false, true
	}
	return meta, true, !meta.Status.Terminal()
}

// IsReady reports whether id has reached a terminal status. A not-found id
// is reported as not ready.
func (t *Tracker) IsReady(id string) bool {
	meta, found, _ := t.Get(id)
	return found && meta.Status.Terminal()
}

// Observe records a status fetched directly from the provider for id. If
// the tracker has never seen id before (a caller fetched a response it
// didn't create locally), it registers a new entry; otherwise it behaves
// like Transition. Either way, an already-terminal entry is left
// untouched (property P10).
func (t *Tracker) Observe(id, model string, status llmtypes.ResponseStatus, errMsg string) llmtypes.ResponseMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.items[id]
	if !ok {
		meta = llmtypes.ResponseMetadata{ID: id, Status: status, CreatedAt: time.Now(), Model: model, Err: errMsg}
		if status.Terminal() {
			now := time.Now()
			meta.CompletedAt = &now
		}
		t.items[id] = meta
		return meta
	}
	if meta.Status.Terminal() {
		return meta
	}

	meta.Status = status
	meta.Err = errMsg
	if status.Terminal() {
		now := time.Now()
		meta.CompletedAt = &now
	}
	t.items[id] = meta
	return meta
}

// Transition moves id's status forward. Once a response is terminal the
// transition is ignored — terminal states are absorbing, so a stale
// duplicate poll response (e.g. a retried request) can never un-terminate
// a response or flip it to a different terminal state.
func (t *Tracker) Transition(id string, status llmtypes.ResponseStatus, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.items[id]
	if !ok || meta.Status.Terminal() {
		return
	}

	meta.Status = status
	meta.Err = errMsg
	if status.Terminal() {
		now := time.Now()
		meta.CompletedAt = &now
	}
	t.items[id] = meta
}

// Cancel transitions id to Cancelled, unless it has already reached a
// terminal status (in which case the existing terminal outcome wins).
func (t *Tracker) Cancel(id string) (llmtypes.ResponseMetadata, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.items[id]
	if !ok {
		return llmtypes.ResponseMetadata{}, llmtypes.NewError(llmtypes.ErrNotFound, "response not found: "+id)
	}
	if !meta.Status.Terminal() {
		meta.Status = llmtypes.ResponseCancelled
		now := time.Now()
		meta.CompletedAt = &now
		t.items[id] = meta
	}
	return meta, nil
}

// List returns metadata matching query, newest-first unless Order asks for
// ascending, applying the Status filter and Limit when set.
func (t *Tracker) List(query llmtypes.ResponseListQuery) []llmtypes.ResponseMetadata {
	t.mu.RLock()
	all := make([]llmtypes.ResponseMetadata, 0, len(t.items))
	for _, m := range t.items {
		if query.Status != "" && m.Status != query.Status {
			continue
		}
		all = append(all, m)
	}
	t.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if query.Order == "asc" {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if query.Limit > 0 && len(all) > query.Limit {
		all = all[:query.Limit]
	}
	return all
}

// Chain builds the BackgroundResponseRequest for a conversation continued
// from a previously created response, per spec §4.4's continuation model.
func Chain(previousResponseID string, messages []llmtypes.ChatMessage, tools []llmtypes.Tool, background bool) llmtypes.BackgroundResponseRequest {
	return llmtypes.BackgroundResponseRequest{
		Messages:           messages,
		Tools:              tools,
		PreviousResponseID: previousResponseID,
		Background:         background,
	}
}
