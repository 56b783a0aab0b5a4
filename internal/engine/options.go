package engine

import (
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithQueue sets the ingestion queue. The default is an unbounded FIFO queue.
func WithQueue(q queue.Queue) Option {
	return func(e *Engine) {
		if q != nil {
			e.queue = q
		}
	}
}

// WithBalancedIndex toggles AVL balancing of the rank index (default on).
func WithBalancedIndex(balanced bool) Option {
	return func(e *Engine) {
		e.balanced = balanced
	}
}

// WithScoreRange sets the accepted score range.
func WithScoreRange(r scoring.Range) Option {
	return func(e *Engine) {
		if r.Check() == nil {
			e.scoreRange = r
		}
	}
}

// WithClock overrides the time source used for arrival and update times.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSnapshotSize enables the lock-free top-k read path for k > 0.
func WithSnapshotSize(k int) Option {
	return func(e *Engine) {
		if k >= 0 {
			e.snapshotSize = k
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithApplyObserver registers fn to be called with every request applied by
// a drain and the entry it produced. fn runs inside the write critical
// section and must not call back into the engine.
func WithApplyObserver(fn func(r model.Request, applied model.Entry)) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// RequestOption customizes a submitted request.
type RequestOption func(*model.Request)

// WithName sets the display name applied with the score. Without it the
// player's current name is kept.
func WithName(name string) RequestOption {
	return func(r *model.Request) {
		r.Name = name
		r.HasName = true
	}
}

// WithPriority sets the request priority (lower is more urgent). Only the
// priority policy looks at it.
func WithPriority(priority int) RequestOption {
	return func(r *model.Request) {
		r.Priority = priority
		r.HasPriority = true
	}
}
