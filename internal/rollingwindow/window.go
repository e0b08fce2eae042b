// Package rollingwindow implements the fixed-size FIFO queue used by both
// the per-session Rolling Emotive Window and PatternMetadata.emotive_profile
// (spec.md §3, §4.10). It wraps github.com/emirpasic/gods/v2's generic
// linked-list queue rather than hand-rolling slice-shift pop logic, per
// spec.md §9's note that rolling windows are a first-class bounded-queue
// type.
package rollingwindow

import (
	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"
)

// Window is a fixed-capacity FIFO of float64 values: pushing past capacity
// evicts the oldest value. Capacity 0 means unbounded.
type Window struct {
	q        *linkedlistqueue.Queue[float64]
	capacity int
}

// New creates a Window with the given capacity (spec default N=5).
func New(capacity int) *Window {
	return &Window{q: linkedlistqueue.New[float64](), capacity: capacity}
}

// Push enqueues v, evicting the oldest value if the window is at capacity.
func (w *Window) Push(v float64) {
	w.q.Enqueue(v)
	if w.capacity > 0 {
		for w.q.Size() > w.capacity {
			w.q.Dequeue()
		}
	}
}

// Values returns the window's contents oldest-first.
func (w *Window) Values() []float64 {
	return w.q.Values()
}

// Len returns the number of values currently held.
func (w *Window) Len() int {
	return w.q.Size()
}

// Clone returns an independent copy of the window.
func (w *Window) Clone() *Window {
	out := New(w.capacity)
	for _, v := range w.Values() {
		out.q.Enqueue(v)
	}
	return out
}
