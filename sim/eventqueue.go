package sim

import (
	"container/heap"
)

// EventQueue holds scheduled events ordered by time.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// TimeOrderedQueue is a min-heap of events. Events of the same time leave in
// the order they were pushed, which keeps runs deterministic. It is owned by
// one engine and is not safe for concurrent use.
type TimeOrderedQueue struct {
	events eventHeap
	seq    uint64
}

// NewEventQueue creates an empty TimeOrderedQueue.
func NewEventQueue() *TimeOrderedQueue {
	return &TimeOrderedQueue{}
}

// Push schedules an event.
func (q *TimeOrderedQueue) Push(evt Event) {
	q.seq++
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.seq})
}

// Pop removes and returns the earliest event.
func (q *TimeOrderedQueue) Pop() Event {
	return heap.Pop(&q.events).(queuedEvent).evt
}

// Len returns the number of scheduled events.
func (q *TimeOrderedQueue) Len() int {
	return len(q.events)
}

// Peek returns the earliest event without removing it.
func (q *TimeOrderedQueue) Peek() Event {
	return q.events[0].evt
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].evt.Time(), h[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	return h[i].seq < h[j].seq
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	old[len(old)-1] = queuedEvent{}
	*h = old[:len(old)-1]

	return last
}
