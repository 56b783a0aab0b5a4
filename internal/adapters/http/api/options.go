package api

import "github.com/okian/podium/pkg/logger"

const defaultMaxLimit = 1000

type serverConfig struct {
	maxLimit int
	logger   logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

// WithMaxLimit caps the limit accepted by GET /leaderboard.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
