package sse

import "github.com/sibylline/llmbridge/llmtypes"

// EventQueue is the FIFO queue described in spec §4.3.4: a single network
// chunk can parse into several ChatStreamEvents, and they must be handed to
// the caller one-per-poll in arrival order before the next chunk is read.
type EventQueue struct {
	items []llmtypes.ChatStreamEvent
}

// Push appends events to the back of the queue, preserving their order.
func (q *EventQueue) Push(events ...llmtypes.ChatStreamEvent) {
	q.items = append(q.items, events...)
}

// Pop removes and returns the event at the front of the queue. ok is false
// if the queue is empty.
func (q *EventQueue) Pop() (llmtypes.ChatStreamEvent, bool) {
	if len(q.items) == 0 {
		return llmtypes.ChatStreamEvent{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

// Len reports how many events are currently queued.
func (q *EventQueue) Len() int { return len(q.items) }
