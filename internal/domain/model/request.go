package model

import "time"

// Request is a caller-submitted intent to change a player's score. It is
// consumed exactly once by a drain and never stored afterwards.
type Request struct {
	PlayerID string
	Score    int64

	// Name is only meaningful when HasName is set; the previous entry's
	// name is kept otherwise.
	Name    string
	HasName bool

	// Priority orders requests under the priority policy (lower first).
	Priority    int
	HasPriority bool

	ArrivedAt time.Time
	// Seq is a strictly increasing arrival counter assigned by the engine.
	// It gives a total arrival order even when timestamps collide.
	Seq uint64
}

// Before reports whether r should be applied ahead of o under the priority
// policy: lower priority value first, then earlier arrival.
func (r *Request) Before(o *Request) bool {
	if r.Priority != o.Priority {
		return r.Priority < o.Priority
	}
	return r.Seq < o.Seq
}
