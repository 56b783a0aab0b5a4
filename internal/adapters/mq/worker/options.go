package worker

import (
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the DrainWorker.
type Option func(*DrainWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *DrainWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *DrainWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithInterval sets the periodic drain interval.
func WithInterval(interval time.Duration) Option {
	return func(w *DrainWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}
