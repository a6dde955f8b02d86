package input

import (
	"sync"

	"roitracker/types"
)

// Queue holds display events in arrival order. Clicks beyond the limit are
// dropped; key presses are always kept.
type Queue struct {
	mu     sync.Mutex
	events []types.Event
	clicks int
	limit  int
}

// NewQueue creates a queue holding at most limit pending clicks
func NewQueue(limit int) *Queue {
	return &Queue{limit: max(limit, 1)}
}

// PushClick queues a click and reports whether it was kept
func (q *Queue) PushClick(p types.Point) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.clicks >= q.limit {
		return false
	}
	q.events = append(q.events, types.ClickEvent(p.X, p.Y))
	q.clicks++
	return true
}

// PushKey queues a key press behind every click already queued
func (q *Queue) PushKey(key int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, types.KeyEvent(key))
}

// Pop removes the oldest event
func (q *Queue) Pop() (types.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return types.Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	if ev.Kind == types.EventClick {
		q.clicks--
	}
	return ev, true
}

// Len returns the number of queued events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
