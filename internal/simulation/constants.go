package simulation

import "time"

// Submission retry constants.
const (
	maxSubmitAttempts = 5
	retryBackoff      = 20 * time.Millisecond
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Score generation constants. Round scores are drawn from a normal
// distribution and clamped at zero.
const (
	roundScoreMean   = 100.0
	roundScoreStdDev = 30.0
)

// Number of players whose rank is cross-checked through GET /rank.
const rankProbeCount = 20
