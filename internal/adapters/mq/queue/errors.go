package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed        = errors.New("queue closed")
	ErrQueueFull     = errors.New("queue full")
	ErrUnknownPolicy = errors.New("unknown queue policy")
)
