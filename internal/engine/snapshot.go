package engine

import (
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// snapshot is an immutable copy of the top-k standings. It is replaced, never
// mutated, so readers may hold it without locking.
type snapshot struct {
	standings []model.Standing
}

// top returns a copy of the first n standings.
func (s *snapshot) top(n int) []model.Standing {
	n = min(n, len(s.standings))
	out := make([]model.Standing, n)
	copy(out, s.standings[:n])
	return out
}

// inSnapshot reports whether a change at rank can alter the top-k. Changes
// strictly below rank k leave the first k positions untouched.
func (e *Engine) inSnapshot(rank int) bool {
	return rank >= 1 && rank <= e.snapshotSize
}

// publish rebuilds the snapshot from the index. Must be called with e.mu held
// for writing (or before the engine is shared), so the published copy never
// shows a half-applied update.
func (e *Engine) publish() {
	if e.snapshotSize <= 0 {
		return
	}
	e.snapshot.Store(&snapshot{standings: standings(e.index.Top(e.snapshotSize), 1)})
	metrics.RecordSnapshotPublished(min(e.snapshotSize, e.index.Len()))
}
