// Package types contains the read shapes shared by the service and the HTTP
// API.
package types

import (
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// LeaderboardEntry is one row of the ranked listing.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int64  `json:"score"`
}

// Player is the detail view of a single player.
type Player struct {
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Score     int64     `json:"score"`
	Rank      int       `json:"rank"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LatencyQuantiles holds estimated submission-to-application latencies in
// milliseconds.
type LatencyQuantiles struct {
	P50 float64 `json:"p50_ms"`
	P90 float64 `json:"p90_ms"`
	P99 float64 `json:"p99_ms"`
}

// Stats aggregates engine counters with service-level bookkeeping.
type Stats struct {
	ActivePlayers  int              `json:"active_players"`
	PendingUpdates int              `json:"pending_updates"`
	SubmittedTotal int64            `json:"submitted_total"`
	ProcessedTotal int64            `json:"processed_total"`
	QueuePolicy    string           `json:"queue_policy"`
	DuplicateTotal int64            `json:"duplicate_total"`
	AutoDrain      bool             `json:"auto_drain"`
	DrainLatency   LatencyQuantiles `json:"drain_latency"`
}

// FromStanding converts an engine standing.
func FromStanding(s model.Standing) LeaderboardEntry { //nolint:gocritic // hugeParam: standings are values
	return LeaderboardEntry{
		Rank:     s.Rank,
		PlayerID: s.Entry.ID(),
		Name:     s.Entry.Name(),
		Score:    s.Entry.Score(),
	}
}

// FromStandings converts a slice of standings, never returning nil.
func FromStandings(in []model.Standing) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(in))
	for i := range in {
		out[i] = FromStanding(in[i])
	}
	return out
}

// FromPlayerInfo converts an engine player lookup.
func FromPlayerInfo(p model.PlayerInfo) Player { //nolint:gocritic // hugeParam: player info is a value
	return Player{
		PlayerID:  p.ID,
		Name:      p.Name,
		Score:     p.Score,
		Rank:      p.Rank,
		UpdatedAt: p.UpdatedAt,
	}
}

// ScoreSubmission is the body of a score submission. Name and Priority are
// optional; RequestID makes retries idempotent.
type ScoreSubmission struct {
	PlayerID  string  `json:"player_id"`
	Name      *string `json:"name,omitempty"`
	Score     *int64  `json:"score"`
	Priority  *int    `json:"priority,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// SubmitResult reports how a submission was handled.
type SubmitResult struct {
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

// PlayerUpdate is the body of a direct player write.
type PlayerUpdate struct {
	Name  string `json:"name"`
	Score *int64 `json:"score"`
}

// ProcessResult reports a single-step drain.
type ProcessResult struct {
	Processed bool   `json:"processed"`
	PlayerID  string `json:"player_id,omitempty"`
	Score     *int64 `json:"score,omitempty"`
}
