// Package scoring defines the representable score range accepted by the
// leaderboard.
package scoring

import (
	"errors"
	"fmt"
)

// Default bounds keep every score exactly representable as a JSON number
// (IEEE-754 double).
const (
	DefaultMin int64 = -(1<<53 - 1)
	DefaultMax int64 = 1<<53 - 1
)

// Sentinel kinds for scoring errors.
var (
	ErrOutOfRange   = errors.New("score out of range")
	ErrInvalidRange = errors.New("invalid score range")
)

// Range is an inclusive score interval.
type Range struct {
	Min int64
	Max int64
}

// DefaultRange returns [DefaultMin, DefaultMax].
func DefaultRange() Range {
	return Range{Min: DefaultMin, Max: DefaultMax}
}

// Check reports whether the range itself is well formed.
func (r Range) Check() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Contains reports whether score lies within the range.
func (r Range) Contains(score int64) bool {
	return score >= r.Min && score <= r.Max
}

// Validate returns ErrOutOfRange when score lies outside the range.
func (r Range) Validate(score int64) error {
	if !r.Contains(score) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, score, r.Min, r.Max)
	}
	return nil
}
