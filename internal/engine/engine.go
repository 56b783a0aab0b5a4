// Package engine implements the leaderboard ranking engine.
//
// The engine owns three structures: the rank index ordered by (score desc,
// id asc), the player directory keyed by id, and the ingestion queue.
// Submissions only touch the queue; a drain applies queued requests one at a
// time under the write lock, so the index and the directory always agree and
// every query sees a fully applied state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Engine is a concurrency-safe leaderboard. Any number of goroutines may
// submit and query; writes are serialized by one lock.
type Engine struct {
	mu sync.RWMutex
	// admit is held shared by Submit around enqueue and counting, and
	// exclusively by Clear, so a clear never splits a submission.
	admit sync.RWMutex
	index *repository.RankIndex
	dir   *repository.Directory
	queue queue.Queue

	balanced     bool
	scoreRange   scoring.Range
	snapshotSize int
	now          func() time.Time
	log          logger.Logger
	observe      func(model.Request, model.Entry)

	snapshot atomic.Pointer[snapshot]

	seq       atomic.Uint64
	submitted atomic.Int64
	processed atomic.Int64
}

// New builds an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		balanced:   true,
		scoreRange: scoring.DefaultRange(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.queue == nil {
		e.queue = queue.NewFIFOQueue()
	}
	if e.log == nil {
		e.log = logger.GetOrDiscard().Named("engine")
	}
	e.index = repository.NewRankIndex(repository.WithBalancing(e.balanced))
	e.dir = repository.NewDirectory()
	e.publish()
	return e
}

// Submit validates and enqueues a score update for id. The update becomes
// visible only after a drain applies it.
func (e *Engine) Submit(ctx context.Context, id string, score int64, opts ...RequestOption) error {
	if id == "" {
		metrics.RecordSubmissionRejected("invalid_argument")
		return fmt.Errorf("%w: empty player id", ErrInvalidArgument)
	}
	if err := e.scoreRange.Validate(score); err != nil {
		metrics.RecordSubmissionRejected("invalid_argument")
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	r := model.Request{PlayerID: id, Score: score}
	for _, opt := range opts {
		opt(&r)
	}
	r.ArrivedAt = e.now()
	r.Seq = e.seq.Add(1)

	e.admit.RLock()
	defer e.admit.RUnlock()
	if err := e.queue.Enqueue(ctx, r); err != nil {
		reason := "enqueue_failed"
		switch {
		case errors.Is(err, queue.ErrQueueFull):
			reason = "queue_full"
		case errors.Is(err, queue.ErrClosed):
			reason = "queue_closed"
		}
		metrics.RecordSubmissionRejected(reason)
		e.log.Warn(ctx, "submission rejected",
			logger.String("player_id", id),
			logger.String("reason", reason))
		return fmt.Errorf("submit %s: %w", id, err)
	}
	e.submitted.Add(1)
	metrics.RecordSubmission()
	return nil
}

// DrainOne dequeues and applies the next request in policy order. It returns
// false when nothing is pending. Dequeue and apply form one critical section,
// so concurrent drainers cannot reorder application.
func (e *Engine) DrainOne(ctx context.Context) (model.Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.queue.Dequeue(ctx)
	if !ok {
		return model.Request{}, false
	}

	start := time.Now()
	applied := e.apply(r.PlayerID, r.Name, r.HasName, r.Score)
	e.processed.Add(1)

	metrics.RecordIndexOperationLatency("apply", float64(time.Since(start).Microseconds())/1000)
	metrics.RecordUpdateApplied()
	metrics.RecordDrainLatency(float64(applied.UpdatedAt().Sub(r.ArrivedAt).Microseconds()) / 1000)
	if e.observe != nil {
		e.observe(r, applied)
	}
	return r, true
}

// DrainAll applies pending requests until the queue is empty and returns how
// many were applied. Requests submitted while it runs are applied too.
func (e *Engine) DrainAll(ctx context.Context) int {
	n := 0
	for {
		if _, ok := e.DrainOne(ctx); !ok {
			break
		}
		n++
	}
	metrics.RecordDrainBatch(n)
	if n > 0 {
		e.log.Debug(ctx, "drained pending updates", logger.Int("applied", n))
	}
	return n
}

// AddDirect writes an entry immediately, bypassing the queue. An empty name
// keeps the player's current name (or uses id for a new player). It does not
// count as a processed update.
func (e *Engine) AddDirect(ctx context.Context, id, name string, score int64) (model.Entry, error) {
	if id == "" {
		return model.Entry{}, fmt.Errorf("%w: empty player id", ErrInvalidArgument)
	}
	if err := e.scoreRange.Validate(score); err != nil {
		return model.Entry{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	applied := e.apply(id, name, name != "", score)
	metrics.RecordDirectAdd()
	return applied, nil
}

// apply replaces id's entry with a new one at score. Must be called with
// e.mu held for writing.
func (e *Engine) apply(id, name string, hasName bool, score int64) model.Entry {
	oldRank := repository.NotFound
	if old, ok := e.dir.Get(id); ok {
		oldRank = e.index.RankOfEntry(old)
		e.index.DeleteEntry(old)
		if !hasName {
			name = old.Name()
		}
	} else if !hasName {
		name = id
	}

	entry := model.NewEntry(id, name, score, e.now())
	e.index.Insert(entry)
	e.dir.Put(id, entry)

	if e.inSnapshot(oldRank) || e.inSnapshot(e.index.RankOfEntry(entry)) {
		e.publish()
	}
	e.recordSize()
	return entry
}

// Remove deletes id from the board. It returns false if id is not ranked.
func (e *Engine) Remove(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, ok := e.dir.Get(id)
	if !ok {
		return false
	}
	rank := e.index.RankOfEntry(old)
	e.index.DeleteEntry(old)
	e.dir.Remove(id)
	if e.inSnapshot(rank) {
		e.publish()
	}
	e.recordSize()

	metrics.RecordPlayerRemoved()
	e.log.Debug(ctx, "player removed", logger.String("player_id", id), logger.Int("rank", rank))
	return true
}

// Clear drops every entry, every pending request and the counters.
func (e *Engine) Clear(ctx context.Context) {
	e.admit.Lock()
	defer e.admit.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	e.index.Clear()
	e.dir.Clear()
	e.queue.Clear(ctx)
	e.submitted.Store(0)
	e.processed.Store(0)
	e.publish()
	e.recordSize()

	metrics.RecordLeaderboardClear()
	e.log.Info(ctx, "leaderboard cleared")
}

// Rank returns the 1-indexed position of id.
func (e *Engine) Rank(ctx context.Context, id string) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entry, ok := e.dir.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.index.RankOfEntry(entry), nil
}

// Top returns the n best standings (fewer if the board is smaller). Requests
// within the snapshot size are answered without taking the lock.
func (e *Engine) Top(ctx context.Context, n int) ([]model.Standing, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		return []model.Standing{}, nil
	}
	if n <= e.snapshotSize {
		if s := e.snapshot.Load(); s != nil {
			metrics.RecordSnapshotHit()
			return s.top(n), nil
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return standings(e.index.Top(n), 1), nil
}

// Leaderboard returns every standing, best first.
func (e *Engine) Leaderboard(ctx context.Context) []model.Standing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return standings(e.index.Listing(), 1)
}

// Player returns id's current entry and rank.
func (e *Engine) Player(ctx context.Context, id string) (model.PlayerInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entry, ok := e.dir.Get(id)
	if !ok {
		return model.PlayerInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return model.PlayerInfo{
		ID:        entry.ID(),
		Name:      entry.Name(),
		Score:     entry.Score(),
		Rank:      e.index.RankOfEntry(entry),
		UpdatedAt: entry.UpdatedAt(),
	}, nil
}

// Nearby returns the standings from rank(id)-above to rank(id)+below,
// clipped to the board.
func (e *Engine) Nearby(ctx context.Context, id string, above, below int) ([]model.Standing, error) {
	if above < 0 || below < 0 {
		return nil, fmt.Errorf("%w: negative range above=%d below=%d", ErrInvalidArgument, above, below)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	entry, ok := e.dir.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rank := e.index.RankOfEntry(entry)
	first := rank - min(above, rank-1)
	last := rank + min(below, e.index.Len()-rank)
	return standings(e.index.Slice(first-1, last-first+1), first), nil
}

// Stats returns the engine counters.
func (e *Engine) Stats(ctx context.Context) model.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return model.Stats{
		ActivePlayers:  e.dir.Len(),
		PendingUpdates: e.queue.Len(ctx),
		SubmittedTotal: e.submitted.Load(),
		ProcessedTotal: e.processed.Load(),
		QueuePolicy:    string(e.queue.Policy()),
	}
}

// Pending returns the number of queued requests.
func (e *Engine) Pending(ctx context.Context) int {
	return e.queue.Len(ctx)
}

// Close stops accepting submissions. Pending requests stay drainable.
func (e *Engine) Close() error {
	return e.queue.Close()
}

// Reopen accepts submissions again after Close. The board is untouched.
func (e *Engine) Reopen() {
	e.queue.Reopen()
}

// recordSize refreshes the size gauges. Must be called with e.mu held.
func (e *Engine) recordSize() {
	metrics.UpdateActivePlayers(e.index.Len())
	metrics.UpdateIndexHeight(e.index.Height())
}

func standings(entries []model.Entry, firstRank int) []model.Standing {
	out := make([]model.Standing, len(entries))
	for i, entry := range entries {
		out[i] = model.Standing{Rank: firstRank + i, Entry: entry}
	}
	return out
}
