package queue

import (
	"context"
	"sync"

	"github.com/okian/podium/pkg/metrics"
)

// FIFOQueue applies requests strictly in arrival order.
//
// Requests are appended to a backing slice and a front cursor marks the next
// one to release. Once the consumed prefix grows past the compaction
// threshold the live suffix is copied down, so memory stays proportional to
// the pending backlog rather than to everything ever enqueued.
type FIFOQueue struct {
	mu               sync.Mutex
	items            []Request
	front            int
	capacity         int
	compactThreshold int
	closed           bool
}

// NewFIFOQueue creates an unbounded FIFO queue unless WithCapacity is given.
func NewFIFOQueue(opts ...Option) *FIFOQueue {
	s := newSettings(opts)
	q := &FIFOQueue{
		capacity:         s.capacity,
		compactThreshold: s.compactThreshold,
	}

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Policy reports PolicyFIFO.
func (q *FIFOQueue) Policy() Policy { return PolicyFIFO }

// Enqueue appends r in O(1) amortized.
func (q *FIFOQueue) Enqueue(ctx context.Context, r Request) error { //nolint:gocritic // hugeParam: requests are values
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if q.capacity > 0 && q.len() >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return ErrQueueFull
	}

	q.items = append(q.items, r)
	metrics.RecordQueueEnqueue()
	metrics.UpdateQueueSize(q.len())
	return nil
}

// Dequeue releases the oldest pending request.
func (q *FIFOQueue) Dequeue(ctx context.Context) (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.len() == 0 {
		return Request{}, false
	}
	r := q.items[q.front]
	q.items[q.front] = Request{}
	q.front++

	switch {
	case q.front == len(q.items):
		q.items = q.items[:0]
		q.front = 0
	case q.front > q.compactThreshold:
		q.compact()
	}

	metrics.RecordQueueDequeue()
	metrics.UpdateQueueSize(q.len())
	return r, true
}

// compact drops the consumed prefix. Must be called with q.mu held.
func (q *FIFOQueue) compact() {
	n := copy(q.items, q.items[q.front:])
	clear(q.items[n:])
	q.items = q.items[:n]
	q.front = 0
	metrics.RecordQueueCompaction()
}

// Peek returns the oldest pending request without removing it.
func (q *FIFOQueue) Peek(ctx context.Context) (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.len() == 0 {
		return Request{}, false
	}
	return q.items[q.front], true
}

func (q *FIFOQueue) len() int { return len(q.items) - q.front }

// Len returns the number of pending requests.
func (q *FIFOQueue) Len(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.len()
}

// IsEmpty reports whether nothing is pending.
func (q *FIFOQueue) IsEmpty(ctx context.Context) bool {
	return q.Len(ctx) == 0
}

// Clear drops every pending request and releases the backing array.
func (q *FIFOQueue) Clear(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.front = 0
	metrics.UpdateQueueSize(0)
}

// Close stops accepting requests.
func (q *FIFOQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// Reopen accepts requests again after Close.
func (q *FIFOQueue) Reopen() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = false
}

// IsClosed returns true if the queue has been closed.
func (q *FIFOQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
