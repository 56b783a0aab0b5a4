// Package config defines service configuration and its loading hooks.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load layers a YAML file and environment variables over those defaults.
//   - Validate reports problems wrapped with ErrInvalidConfig.
package config

import (
	"fmt"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueuePolicy selects the ingestion order: fifo or priority.
	QueuePolicy string `koanf:"queue_policy"`

	// QueueCapacity bounds pending updates. Zero means unbounded.
	QueueCapacity int `koanf:"queue_capacity"`

	// CompactThreshold is the consumed FIFO prefix tolerated before compaction.
	CompactThreshold int `koanf:"compact_threshold"`

	// DefaultPriority is given to submissions without an explicit priority.
	DefaultPriority int `koanf:"default_priority"`

	// BalancedIndex turns on AVL balancing of the rank index.
	BalancedIndex bool `koanf:"balanced_index"`

	// SnapshotSize is k for the lock-free top-k read path. Zero disables it.
	SnapshotSize int `koanf:"snapshot_size"`

	// AutoDrain starts the background drain worker.
	AutoDrain bool `koanf:"auto_drain"`

	// DrainIntervalMS is the worker's periodic drain interval.
	DrainIntervalMS int `koanf:"drain_interval_ms"`

	// DedupeSize sets how many recent request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MinScore and MaxScore bound accepted scores (inclusive).
	MinScore int64 `koanf:"min_score"`
	MaxScore int64 `koanf:"max_score"`
}

// New creates a Config with defaults.
func New() *Config {
	r := scoring.DefaultRange()
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueuePolicy:         string(queue.PolicyFIFO),
		QueueCapacity:       0,
		CompactThreshold:    1024,
		DefaultPriority:     10,
		BalancedIndex:       true,
		SnapshotSize:        100,
		AutoDrain:           true,
		DrainIntervalMS:     50,
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 1000,
		MinScore:            r.Min,
		MaxScore:            r.Max,
	}
}

// DrainInterval returns DrainIntervalMS as a duration.
func (c *Config) DrainInterval() time.Duration {
	return time.Duration(c.DrainIntervalMS) * time.Millisecond
}

// ScoreRange returns the configured score bounds.
func (c *Config) ScoreRange() scoring.Range {
	return scoring.Range{Min: c.MinScore, Max: c.MaxScore}
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := queue.ParsePolicy(c.QueuePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch {
	case c.QueueCapacity < 0:
		return fmt.Errorf("%w: queue_capacity must not be negative", ErrInvalidConfig)
	case c.CompactThreshold <= 0:
		return fmt.Errorf("%w: compact_threshold must be positive", ErrInvalidConfig)
	case c.SnapshotSize < 0:
		return fmt.Errorf("%w: snapshot_size must not be negative", ErrInvalidConfig)
	case c.AutoDrain && c.DrainIntervalMS <= 0:
		return fmt.Errorf("%w: drain_interval_ms must be positive when auto_drain is on", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if err := c.ScoreRange().Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
