package queue

import (
	"context"
	"sync"

	"github.com/okian/podium/pkg/metrics"
)

// PriorityQueue applies requests by ascending priority value; equal
// priorities are released in arrival order (Request.Seq).
//
// It is an array-backed binary min-heap: the parent of i is (i-1)/2 and its
// children are 2i+1 and 2i+2.
type PriorityQueue struct {
	mu              sync.Mutex
	heap            []Request
	capacity        int
	defaultPriority int
	closed          bool
}

// NewPriorityQueue creates an unbounded priority queue unless WithCapacity is
// given.
func NewPriorityQueue(opts ...Option) *PriorityQueue {
	s := newSettings(opts)
	q := &PriorityQueue{
		capacity:        s.capacity,
		defaultPriority: s.defaultPriority,
	}

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Policy reports PolicyPriority.
func (q *PriorityQueue) Policy() Policy { return PolicyPriority }

// Enqueue inserts r in O(log n). Requests without an explicit priority get
// the configured default.
func (q *PriorityQueue) Enqueue(ctx context.Context, r Request) error { //nolint:gocritic // hugeParam: requests are values
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if q.capacity > 0 && len(q.heap) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return ErrQueueFull
	}

	q.push(q.normalize(r))
	metrics.RecordQueueEnqueue()
	metrics.UpdateQueueSize(len(q.heap))
	return nil
}

func (q *PriorityQueue) normalize(r Request) Request { //nolint:gocritic // hugeParam: requests are values
	if !r.HasPriority {
		r.Priority = q.defaultPriority
	}
	return r
}

func (q *PriorityQueue) push(r Request) { //nolint:gocritic // hugeParam: requests are values
	q.heap = append(q.heap, r)
	q.bubbleUp(len(q.heap) - 1)
}

func (q *PriorityQueue) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.heap[i].Before(&q.heap[parent]) {
			return
		}
		q.heap[i], q.heap[parent] = q.heap[parent], q.heap[i]
		i = parent
	}
}

func (q *PriorityQueue) bubbleDown(i int) {
	n := len(q.heap)
	for {
		smallest := i
		if l := 2*i + 1; l < n && q.heap[l].Before(&q.heap[smallest]) {
			smallest = l
		}
		if r := 2*i + 2; r < n && q.heap[r].Before(&q.heap[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		q.heap[i], q.heap[smallest] = q.heap[smallest], q.heap[i]
		i = smallest
	}
}

// Dequeue removes the most urgent request in O(log n).
func (q *PriorityQueue) Dequeue(ctx context.Context) (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		return Request{}, false
	}
	top := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.heap[last] = Request{}
	q.heap = q.heap[:last]
	if last > 0 {
		q.bubbleDown(0)
	}

	metrics.RecordQueueDequeue()
	metrics.UpdateQueueSize(len(q.heap))
	return top, true
}

// Peek returns the most urgent request without removing it.
func (q *PriorityQueue) Peek(ctx context.Context) (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return Request{}, false
	}
	return q.heap[0], true
}

// Heapify replaces the pending requests with reqs and restores the heap
// property bottom-up in O(n). Capacity is not enforced here.
func (q *PriorityQueue) Heapify(ctx context.Context, reqs []Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.heap = make([]Request, len(reqs))
	for i := range reqs {
		q.heap[i] = q.normalize(reqs[i])
	}
	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.bubbleDown(i)
	}
	metrics.UpdateQueueSize(len(q.heap))
}

// Len returns the number of pending requests.
func (q *PriorityQueue) Len(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// IsEmpty reports whether nothing is pending.
func (q *PriorityQueue) IsEmpty(ctx context.Context) bool {
	return q.Len(ctx) == 0
}

// Clear drops every pending request.
func (q *PriorityQueue) Clear(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.heap = nil
	metrics.UpdateQueueSize(0)
}

// Close stops accepting requests.
func (q *PriorityQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// Reopen accepts requests again after Close.
func (q *PriorityQueue) Reopen() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = false
}

// IsClosed returns true if the queue has been closed.
func (q *PriorityQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
