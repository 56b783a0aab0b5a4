// Package worker runs the background drain loop that applies queued score
// updates to the engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const defaultInterval = 50 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a worker that is running or done.
var ErrAlreadyStarted = errors.New("worker already started")

// Drainer applies every pending update and reports how many it applied.
type Drainer interface {
	DrainAll(ctx context.Context) int
}

// DrainWorker is the single dedicated goroutine that drains the engine. It
// wakes when notified of a submission and on a ticker, and performs one last
// drain when shut down so accepted submissions are not left pending.
type DrainWorker struct {
	drainer  Drainer
	name     string
	interval time.Duration
	logger   logger.Logger

	notify   chan struct{}
	shutdown chan struct{}
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
}

// NewDrainWorker creates a worker for d. It does nothing until Start.
func NewDrainWorker(d Drainer, opts ...Option) *DrainWorker {
	w := &DrainWorker{
		drainer:  d,
		name:     "drain-worker",
		interval: defaultInterval,
		notify:   make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.GetOrDiscard().Named(w.name)
	}
	return w
}

// Start launches the drain loop. It runs until ctx is canceled or Shutdown.
func (w *DrainWorker) Start(ctx context.Context) error {
	err := ErrAlreadyStarted
	w.startOnce.Do(func() {
		w.started.Store(true)
		err = nil
		go w.run(ctx)
	})
	return err
}

// Notify wakes the worker. It never blocks; wake-ups coalesce.
func (w *DrainWorker) Notify() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *DrainWorker) run(ctx context.Context) {
	defer close(w.done)
	metrics.UpdateWorkerRunning(true)
	defer metrics.UpdateWorkerRunning(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info(ctx, "drain worker started", logger.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return
		case <-w.shutdown:
			w.drain(ctx)
			return
		case <-w.notify:
			w.drain(ctx)
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *DrainWorker) drain(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(ctx, "drain panicked", logger.Any("panic", r))
		}
	}()
	if n := w.drainer.DrainAll(ctx); n > 0 {
		metrics.RecordWorkerCycle()
	}
}

// Shutdown stops the loop after a final drain. It waits for the loop to exit
// or for ctx to expire.
func (w *DrainWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	if !w.started.Load() {
		return nil
	}

	select {
	case <-w.done:
		w.logger.Info(ctx, "drain worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once the loop has exited.
func (w *DrainWorker) Done() <-chan struct{} { return w.done }
