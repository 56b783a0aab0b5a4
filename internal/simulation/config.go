// Package simulation drives a tournament against a running podium server
// over HTTP and verifies the resulting board.
package simulation

import "time"

// Config holds configuration for a simulated tournament.
type Config struct {
	BaseURL    string        // Base URL of the service
	Players    int           // Number of players to create
	Rounds     int           // Number of scoring rounds
	TopN       int           // Number of top entries to report
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // Seed for the score generator
	Reset      bool          // Clear the board before the first round
	OutputFile string        // Optional JSON export of the final board
	Verbose    bool          // Log every round
}

// Submission is the body of POST /scores.
type Submission struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name,omitempty"`
	Score     int64  `json:"score"`
	RequestID string `json:"request_id"`
}

// Entry represents a leaderboard row.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int64  `json:"score"`
}

// AckResponse represents the response from score submission.
type AckResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

type processResponse struct {
	Processed int `json:"processed"`
}

type rankResponse struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
}

// Report summarizes a finished tournament.
type Report struct {
	Players     int
	Rounds      int
	Submitted   int
	Accepted    int
	Duplicate   int
	Retried     int
	Failed      int
	Processed   int
	RanksProbed int
	Top         []Entry

	SubmitDuration  time.Duration
	ProcessDuration time.Duration
	Duration        time.Duration
}
