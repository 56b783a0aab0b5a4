// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Entry is an immutable snapshot of one player's identity and score.
// A score change always produces a new Entry; there are no setters.
type Entry struct {
	id        string
	name      string
	score     int64
	updatedAt time.Time
}

// NewEntry builds an Entry. updatedAt is only used for ingestion bookkeeping,
// never for rank order.
func NewEntry(id, name string, score int64, updatedAt time.Time) Entry {
	return Entry{id: id, name: name, score: score, updatedAt: updatedAt}
}

// ID returns the stable player identifier.
func (e Entry) ID() string { return e.id }

// Name returns the display name.
func (e Entry) Name() string { return e.name }

// Score returns the ranking score.
func (e Entry) Score() int64 { return e.score }

// UpdatedAt returns when the entry was created.
func (e Entry) UpdatedAt() time.Time { return e.updatedAt }

// IsZero reports whether e is the zero Entry.
func (e Entry) IsZero() bool { return e.id == "" }

// Equal reports whether two entries carry the same identity, name, score and time.
func (e Entry) Equal(o Entry) bool {
	return e.id == o.id && e.name == o.name && e.score == o.score && e.updatedAt.Equal(o.updatedAt)
}

// Compare orders entries for the leaderboard: higher score first, then
// identifier ascending. It returns -1 when a ranks ahead of b, +1 when b ranks
// ahead of a, and 0 only for the same identifier with the same score.
func Compare(a, b Entry) int {
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	}
	return strings.Compare(a.id, b.id)
}

// Less reports whether a ranks ahead of b.
func Less(a, b Entry) bool {
	return Compare(a, b) < 0
}

// Standing pairs an Entry with its 1-indexed rank.
type Standing struct {
	Rank  int
	Entry Entry
}

// PlayerInfo is the read shape for a single player lookup.
type PlayerInfo struct {
	ID        string
	Name      string
	Score     int64
	Rank      int
	UpdatedAt time.Time
}

// Stats aggregates engine counters.
type Stats struct {
	ActivePlayers  int
	PendingUpdates int
	SubmittedTotal int64
	ProcessedTotal int64
	QueuePolicy    string
}
