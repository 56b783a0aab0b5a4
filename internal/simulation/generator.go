package simulation

import (
	"fmt"

	"github.com/google/uuid"
	rng "github.com/leesper/go_rng"
)

// Player is a simulated tournament participant.
type Player struct {
	ID   string
	Name string
}

// newPlayers creates n players with unique ids.
func newPlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{
			ID:   uuid.NewString(),
			Name: fmt.Sprintf("Player-%d", i+1),
		}
	}
	return players
}

// roundScores returns per-round points for every player, indexed
// [round][player]. The generator is not safe for concurrent use, so all
// scores are drawn up front.
func roundScores(seed int64, rounds, players int) [][]int64 {
	gen := rng.NewGaussianGenerator(seed)
	out := make([][]int64, rounds)
	for r := range out {
		out[r] = make([]int64, players)
		for p := range out[r] {
			out[r][p] = max(int64(gen.Gaussian(roundScoreMean, roundScoreStdDev)), 0)
		}
	}
	return out
}

// accumulate returns the running totals after each round.
func accumulate(points [][]int64) [][]int64 {
	totals := make([][]int64, len(points))
	for r := range points {
		totals[r] = make([]int64, len(points[r]))
		for p, v := range points[r] {
			totals[r][p] = v
			if r > 0 {
				totals[r][p] += totals[r-1][p]
			}
		}
	}
	return totals
}
