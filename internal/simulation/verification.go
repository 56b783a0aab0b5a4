package simulation

import (
	"context"
	"errors"
	"fmt"
)

var errInconsistent = errors.New("inconsistent leaderboard")

// verifyBoard checks that ranks are 1..n, rows are ordered by score
// descending then id ascending, and every expected player holds its final
// total. With exclusive set the board must contain nothing else.
func verifyBoard(board []Entry, expected map[string]int64, exclusive bool) error {
	seen := 0
	for i, e := range board {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: row %d has rank %d", errInconsistent, i, e.Rank)
		}
		if i > 0 {
			prev := board[i-1]
			if prev.Score < e.Score || (prev.Score == e.Score && prev.PlayerID >= e.PlayerID) {
				return fmt.Errorf("%w: %s (%d) ranked ahead of %s (%d)",
					errInconsistent, prev.PlayerID, prev.Score, e.PlayerID, e.Score)
			}
		}
		want, ok := expected[e.PlayerID]
		if !ok {
			continue
		}
		seen++
		if e.Score != want {
			return fmt.Errorf("%w: %s has score %d, want %d", errInconsistent, e.PlayerID, e.Score, want)
		}
	}
	if seen != len(expected) {
		return fmt.Errorf("%w: %d of %d players missing", errInconsistent, len(expected)-seen, len(expected))
	}
	if exclusive && len(board) != len(expected) {
		return fmt.Errorf("%w: board has %d rows, want %d", errInconsistent, len(board), len(expected))
	}
	return nil
}

// verifyRanks cross-checks up to n evenly spaced rows against GET /rank and
// returns how many were probed.
func verifyRanks(ctx context.Context, client *HTTPClient, board []Entry, n int) (int, error) {
	if len(board) == 0 || n <= 0 {
		return 0, nil
	}
	step := max(len(board)/n, 1)
	probed := 0
	for i := 0; i < len(board); i += step {
		rank, err := client.rank(ctx, board[i].PlayerID)
		if err != nil {
			return probed, err
		}
		probed++
		if rank != board[i].Rank {
			return probed, fmt.Errorf("%w: %s has rank %d, board says %d",
				errInconsistent, board[i].PlayerID, rank, board[i].Rank)
		}
	}
	return probed, nil
}
