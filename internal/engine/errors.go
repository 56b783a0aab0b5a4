package engine

import (
	"errors"
	"fmt"

	"github.com/okian/podium/internal/adapters/repository"
)

// Sentinel kinds for engine errors. Queue admission errors
// (queue.ErrQueueFull, queue.ErrClosed) are passed through wrapped.
var (
	ErrNotFound        = fmt.Errorf("engine: %w", repository.ErrNotFound)
	ErrInvalidArgument = errors.New("invalid argument")
)
