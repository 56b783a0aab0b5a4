// Package service wires the leaderboard engine, the drain worker and the
// submission deduper together and implements the dependencies required by
// the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/engine"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultCompactThreshold = 1024
	defaultPriority         = 10
	defaultDrainInterval    = 50 * time.Millisecond
	defaultDedupeSize       = 100_000
	defaultSnapshotSize     = 100
)

// Service implements the API dependencies for the leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine  *engine.Engine
	deduper dedupe.Deduper
	worker  *worker.DrainWorker
	latency *latencyTracker

	// Configuration
	policy           queue.Policy
	queueCapacity    int
	compactThreshold int
	defaultPriority  int
	balanced         bool
	snapshotSize     int
	autoDrain        bool
	drainInterval    time.Duration
	dedupeSize       int
	scoreRange       scoring.Range

	// State
	started    bool
	duplicates atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration. Nothing runs until
// Start.
func New(opts ...Option) *Service {
	s := &Service{
		policy:           queue.PolicyFIFO,
		compactThreshold: defaultCompactThreshold,
		defaultPriority:  defaultPriority,
		balanced:         true,
		snapshotSize:     defaultSnapshotSize,
		drainInterval:    defaultDrainInterval,
		dedupeSize:       defaultDedupeSize,
		scoreRange:       scoring.DefaultRange(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetOrDiscard().Named("service")
	}
	return s
}

// Start builds the engine and, in auto-drain mode, launches the drain worker.
// Calling Start on a running service is a no-op. Start after Stop reopens the
// existing engine, so the board and pending requests survive a restart.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.engine != nil {
		return s.restart(ctx)
	}
	s.logger.Info(ctx, "starting leaderboard service...")

	q, err := queue.New(s.policy,
		queue.WithCapacity(s.queueCapacity),
		queue.WithCompactThreshold(s.compactThreshold),
		queue.WithDefaultPriority(s.defaultPriority),
	)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	lt, err := newLatencyTracker()
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	s.latency = lt
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.engine = engine.New(
		engine.WithQueue(q),
		engine.WithBalancedIndex(s.balanced),
		engine.WithScoreRange(s.scoreRange),
		engine.WithSnapshotSize(s.snapshotSize),
		engine.WithApplyObserver(func(r model.Request, applied model.Entry) {
			s.latency.observe(float64(applied.UpdatedAt().Sub(r.ArrivedAt).Microseconds()) / 1000)
		}),
	)

	if err := s.startWorker(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.String("queue_policy", string(s.policy)),
		logger.Int("queue_capacity", s.queueCapacity),
		logger.Bool("balanced_index", s.balanced),
		logger.Int("snapshot_size", s.snapshotSize),
		logger.Bool("auto_drain", s.autoDrain),
		logger.Duration("drain_interval", s.drainInterval),
	)
	return nil
}

// restart reopens a stopped engine. Must be called with s.mu held.
func (s *Service) restart(ctx context.Context) error {
	s.engine.Reopen()
	if err := s.startWorker(ctx); err != nil {
		return fmt.Errorf("restart service: %w", err)
	}
	s.started = true
	s.logger.Info(ctx, "leaderboard service restarted",
		logger.Int("pending", s.engine.Pending(ctx)))
	return nil
}

func (s *Service) startWorker(ctx context.Context) error {
	if !s.autoDrain {
		return nil
	}
	s.worker = worker.NewDrainWorker(s.engine, worker.WithInterval(s.drainInterval))
	return s.worker.Start(context.WithoutCancel(ctx))
}

// Stop closes the queue to new submissions and, in auto-drain mode, waits
// for the worker's final drain. Reads keep working afterwards.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping leaderboard service...")

	if err := s.engine.Close(); err != nil {
		s.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	var err error
	if s.worker != nil {
		err = s.worker.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped",
		logger.Int("pending", s.engine.Pending(ctx)))
	return err
}

func (s *Service) eng() (*engine.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNotStarted
	}
	return s.engine, nil
}

// Submit enqueues a score update. A submission whose request id was already
// accepted is reported as a duplicate and not enqueued again.
func (s *Service) Submit(ctx context.Context, in types.ScoreSubmission) (types.SubmitResult, error) { //nolint:gocritic // hugeParam: request bodies are values
	e, err := s.eng()
	if err != nil {
		return types.SubmitResult{}, err
	}
	if in.Score == nil {
		return types.SubmitResult{}, fmt.Errorf("%w: score is required", engine.ErrInvalidArgument)
	}

	res := types.SubmitResult{RequestID: in.RequestID}
	tracked := in.RequestID != ""
	if !tracked {
		res.RequestID = uuid.NewString()
	} else if s.deduper.SeenAndRecord(ctx, in.RequestID) {
		s.duplicates.Add(1)
		metrics.RecordDuplicateRequest()
		s.logger.Debug(ctx, "duplicate submission skipped",
			logger.String("request_id", in.RequestID),
			logger.String("player_id", in.PlayerID))
		res.Duplicate = true
		return res, nil
	}

	var opts []engine.RequestOption
	if in.Name != nil {
		opts = append(opts, engine.WithName(*in.Name))
	}
	if in.Priority != nil {
		opts = append(opts, engine.WithPriority(*in.Priority))
	}
	if err := e.Submit(ctx, in.PlayerID, *in.Score, opts...); err != nil {
		if tracked {
			// Let the client retry with the same id.
			s.deduper.Unrecord(ctx, in.RequestID)
		}
		return types.SubmitResult{}, err
	}

	if s.worker != nil {
		s.worker.Notify()
	}
	return res, nil
}

// ProcessAll drains every pending update.
func (s *Service) ProcessAll(ctx context.Context) (int, error) {
	e, err := s.eng()
	if err != nil {
		return 0, err
	}
	return e.DrainAll(ctx), nil
}

// ProcessOne applies the next pending update, if any.
func (s *Service) ProcessOne(ctx context.Context) (types.ProcessResult, error) {
	e, err := s.eng()
	if err != nil {
		return types.ProcessResult{}, err
	}
	r, ok := e.DrainOne(ctx)
	if !ok {
		return types.ProcessResult{}, nil
	}
	score := r.Score
	return types.ProcessResult{Processed: true, PlayerID: r.PlayerID, Score: &score}, nil
}

// Top returns the n best entries.
func (s *Service) Top(ctx context.Context, n int) ([]types.LeaderboardEntry, error) {
	e, err := s.eng()
	if err != nil {
		return nil, err
	}
	top, err := e.Top(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.FromStandings(top), nil
}

// Leaderboard returns every entry, best first.
func (s *Service) Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error) {
	e, err := s.eng()
	if err != nil {
		return nil, err
	}
	return types.FromStandings(e.Leaderboard(ctx)), nil
}

// Rank returns the 1-indexed rank of id.
func (s *Service) Rank(ctx context.Context, id string) (int, error) {
	e, err := s.eng()
	if err != nil {
		return 0, err
	}
	return e.Rank(ctx, id)
}

// Player returns the detail view of id.
func (s *Service) Player(ctx context.Context, id string) (types.Player, error) {
	e, err := s.eng()
	if err != nil {
		return types.Player{}, err
	}
	p, err := e.Player(ctx, id)
	if err != nil {
		return types.Player{}, err
	}
	return types.FromPlayerInfo(p), nil
}

// UpsertPlayer writes id's entry immediately, bypassing the queue.
func (s *Service) UpsertPlayer(ctx context.Context, id, name string, score int64) (types.Player, error) {
	e, err := s.eng()
	if err != nil {
		return types.Player{}, err
	}
	if _, err := e.AddDirect(ctx, id, name, score); err != nil {
		return types.Player{}, err
	}
	return s.Player(ctx, id)
}

// RemovePlayer deletes id and reports whether it was ranked.
func (s *Service) RemovePlayer(ctx context.Context, id string) (bool, error) {
	e, err := s.eng()
	if err != nil {
		return false, err
	}
	return e.Remove(ctx, id), nil
}

// Nearby returns the entries around id.
func (s *Service) Nearby(ctx context.Context, id string, above, below int) ([]types.LeaderboardEntry, error) {
	e, err := s.eng()
	if err != nil {
		return nil, err
	}
	near, err := e.Nearby(ctx, id, above, below)
	if err != nil {
		return nil, err
	}
	return types.FromStandings(near), nil
}

// Clear resets the board, the pending queue and the counters.
func (s *Service) Clear(ctx context.Context) error {
	e, err := s.eng()
	if err != nil {
		return err
	}
	e.Clear(ctx)
	s.duplicates.Store(0)
	s.latency.reset()
	return nil
}

// Stats returns engine counters plus service bookkeeping and refreshes the
// corresponding gauges.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	e, err := s.eng()
	if err != nil {
		return types.Stats{}, err
	}
	st := e.Stats(ctx)
	q := s.latency.quantiles()

	metrics.UpdateActivePlayers(st.ActivePlayers)
	metrics.UpdateQueueSize(st.PendingUpdates)
	metrics.UpdateDrainQuantile("0.5", q.P50)
	metrics.UpdateDrainQuantile("0.9", q.P90)
	metrics.UpdateDrainQuantile("0.99", q.P99)

	return types.Stats{
		ActivePlayers:  st.ActivePlayers,
		PendingUpdates: st.PendingUpdates,
		SubmittedTotal: st.SubmittedTotal,
		ProcessedTotal: st.ProcessedTotal,
		QueuePolicy:    st.QueuePolicy,
		DuplicateTotal: s.duplicates.Load(),
		AutoDrain:      s.autoDrain,
		DrainLatency:   q,
	}, nil
}
