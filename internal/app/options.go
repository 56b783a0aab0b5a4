package service

import (
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueuePolicy selects the ingestion order.
func WithQueuePolicy(p queue.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithQueueCapacity bounds pending updates. Zero means unbounded.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity >= 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithCompactThreshold sets the FIFO compaction threshold.
func WithCompactThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.compactThreshold = threshold
		}
	}
}

// WithDefaultPriority sets the priority of submissions that carry none.
func WithDefaultPriority(priority int) Option {
	return func(s *Service) {
		s.defaultPriority = priority
	}
}

// WithBalancedIndex toggles AVL balancing of the rank index.
func WithBalancedIndex(balanced bool) Option {
	return func(s *Service) {
		s.balanced = balanced
	}
}

// WithSnapshotSize sets k for the lock-free top-k read path.
func WithSnapshotSize(k int) Option {
	return func(s *Service) {
		if k >= 0 {
			s.snapshotSize = k
		}
	}
}

// WithAutoDrain starts a background worker that drains every interval and
// whenever a submission is accepted. A non-positive interval keeps the
// default.
func WithAutoDrain(enabled bool, interval time.Duration) Option {
	return func(s *Service) {
		s.autoDrain = enabled
		if interval > 0 {
			s.drainInterval = interval
		}
	}
}

// WithDedupeSize sets how many request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithScoreRange sets the accepted score range.
func WithScoreRange(r scoring.Range) Option {
	return func(s *Service) {
		s.scoreRange = r
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies every service setting found in cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		policy, err := queue.ParsePolicy(cfg.QueuePolicy)
		if err != nil {
			// Start reports the unknown policy.
			policy = queue.Policy(cfg.QueuePolicy)
		}
		for _, opt := range []Option{
			WithQueuePolicy(policy),
			WithQueueCapacity(cfg.QueueCapacity),
			WithCompactThreshold(cfg.CompactThreshold),
			WithDefaultPriority(cfg.DefaultPriority),
			WithBalancedIndex(cfg.BalancedIndex),
			WithSnapshotSize(cfg.SnapshotSize),
			WithAutoDrain(cfg.AutoDrain, cfg.DrainInterval()),
			WithDedupeSize(cfg.DedupeSize),
			WithScoreRange(cfg.ScoreRange()),
		} {
			opt(s)
		}
	}
}
