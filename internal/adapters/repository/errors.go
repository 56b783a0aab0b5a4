package repository

import "errors"

// Sentinel kinds for ranking state errors.
var (
	ErrNotFound = errors.New("player not found")
)
