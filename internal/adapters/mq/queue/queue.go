// Package queue orders pending score updates before they are applied.
//
// Two backends share the Queue contract: FIFOQueue applies requests strictly
// in arrival order, PriorityQueue by explicit priority with arrival order as
// the tiebreak. Both are safe for many concurrent enqueuers and a single (or
// serialized) drainer.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Request is the payload flowing through the queue.
type Request = model.Request

// Policy names an ordering policy.
type Policy string

// Supported policies.
const (
	PolicyFIFO     Policy = "fifo"
	PolicyPriority Policy = "priority"
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFIFO, PolicyPriority:
		return p, nil
	case "":
		return PolicyFIFO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Queue buffers requests and releases them in policy order.
type Queue interface {
	// Enqueue adds a request. It fails with ErrQueueFull when a capacity is
	// configured and reached, and with ErrClosed after Close.
	Enqueue(ctx context.Context, r Request) error

	// Dequeue removes and returns the next request, or false when empty.
	Dequeue(ctx context.Context) (Request, bool)

	// Peek returns the next request without removing it.
	Peek(ctx context.Context) (Request, bool)

	// Len returns the number of pending requests.
	Len(ctx context.Context) int

	// IsEmpty reports whether no request is pending.
	IsEmpty(ctx context.Context) bool

	// Clear drops every pending request.
	Clear(ctx context.Context)

	// Policy reports the ordering policy of this queue.
	Policy() Policy

	// Close stops accepting requests. Pending requests stay drainable.
	Close() error

	// Reopen accepts requests again after Close.
	Reopen()

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// New builds the backend for policy.
func New(policy Policy, opts ...Option) (Queue, error) {
	switch policy {
	case PolicyFIFO:
		return NewFIFOQueue(opts...), nil
	case PolicyPriority:
		return NewPriorityQueue(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}
