package frame

import "sync"

// Queue is the sink buffering frames between the bus delivery goroutine
// and the control loop. Push never blocks; Drain hands the whole batch to
// the caller in arrival order and leaves the queue empty. Growth is
// unbounded, which is acceptable because the control loop drains on every
// poll tick.
type Queue struct {
	mu      sync.Mutex
	pending []Frame
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a frame.
func (q *Queue) Push(f Frame) {
	q.mu.Lock()
	q.pending = append(q.pending, f)
	q.mu.Unlock()
}

// Drain returns all queued frames in arrival order and empties the queue.
func (q *Queue) Drain() []Frame {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	return batch
}

// Len reports the number of frames currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
