// Package dedupe remembers recently seen submission request ids so a retried
// submission is applied at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 100_000

// Deduper records seen request ids.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the submission can be retried, e.g. after the
	// queue refused it.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of remembered ids.
	Size() int
}

// node is an element of the insertion-ordered list; head is the oldest id.
type node struct {
	id         string
	prev, next *node
}

// inMemoryDeduper keeps ids in a map plus a doubly linked list in insertion
// order. In bounded mode the oldest id is evicted once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*node
	head    *node
	tail    *node
	maxSize int // <= 0 means unbounded
	pool    sync.Pool
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*node),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.pool.New = func() any { return &node{} }
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.unlink(d.head)
	}

	n := d.pool.Get().(*node) //nolint:forcetypeassert // pool only holds *node
	n.id = id
	n.prev = d.tail
	if d.tail != nil {
		d.tail.next = n
	} else {
		d.head = n
	}
	d.tail = n
	d.seen[id] = n
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.seen[id]; ok {
		d.unlink(n)
	}
}

// unlink removes n from the list and the map. Must be called with d.mu held.
func (d *inMemoryDeduper) unlink(n *node) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	delete(d.seen, n.id)
	*n = node{}
	d.pool.Put(n)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
