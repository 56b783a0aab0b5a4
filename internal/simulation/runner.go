package simulation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrInvalidConfig reports an unusable simulation configuration.
var ErrInvalidConfig = errors.New("invalid simulation config")

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: missing base url", ErrInvalidConfig)
	case c.Players < 1:
		return fmt.Errorf("%w: players must be positive", ErrInvalidConfig)
	case c.Rounds < 1:
		return fmt.Errorf("%w: rounds must be positive", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// Run plays a full tournament: every round each player's accumulated score is
// submitted concurrently, then the server is told to process. The final
// board is fetched and checked against the locally computed totals.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.GetOrDiscard().Named("simulation")
	start := time.Now()

	log.Info(ctx, "starting tournament",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", cfg.Seed))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	if cfg.Reset {
		if err := client.clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset leaderboard: %w", err)
		}
	}

	players := newPlayers(cfg.Players)
	totals := accumulate(roundScores(cfg.Seed, cfg.Rounds, cfg.Players))
	report := &Report{Players: cfg.Players, Rounds: cfg.Rounds}

	for r, round := range totals {
		t0 := time.Now()
		if err := submitRound(ctx, client, cfg, players, r, round, report); err != nil {
			return report, fmt.Errorf("round %d submission failed: %w", r+1, err)
		}
		report.SubmitDuration += time.Since(t0)

		t0 = time.Now()
		n, err := client.process(ctx)
		if err != nil {
			return report, fmt.Errorf("round %d processing failed: %w", r+1, err)
		}
		report.Processed += n
		report.ProcessDuration += time.Since(t0)

		if cfg.Verbose {
			log.Info(ctx, "round complete", logger.Int("round", r+1), logger.Int("processed", n))
		}
	}

	board, err := client.leaderboard(ctx)
	if err != nil {
		return report, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	expected := make(map[string]int64, len(players))
	for i, p := range players {
		expected[p.ID] = totals[len(totals)-1][i]
	}
	if err := verifyBoard(board, expected, cfg.Reset); err != nil {
		return report, fmt.Errorf("result verification failed: %w", err)
	}
	probed, err := verifyRanks(ctx, client, board, rankProbeCount)
	report.RanksProbed = probed
	if err != nil {
		return report, fmt.Errorf("rank verification failed: %w", err)
	}

	report.Top = board[:min(cfg.TopN, len(board))]
	if cfg.OutputFile != "" {
		if err := saveBoard(cfg.OutputFile, board); err != nil {
			log.Warn(ctx, "failed to save leaderboard", logger.Error(err))
		}
	}

	report.Duration = time.Since(start)
	displayReport(ctx, log, report)
	return report, nil
}

// submitRound posts one accumulated score per player through a worker pool.
// Backpressure triggers a server-side process followed by a retry with the
// same request id.
func submitRound(ctx context.Context, client *HTTPClient, cfg *Config, players []Player, round int, totals []int64, report *Report) error {
	var (
		submitted, accepted, duplicate, retried, failed atomic.Int64
		firstErr                                       error
		errOnce                                        sync.Once
	)

	work := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				s := Submission{
					PlayerID:  players[i].ID,
					Name:      players[i].Name,
					Score:     totals[i],
					RequestID: fmt.Sprintf("%s-r%d", players[i].ID, round+1),
				}
				submitted.Add(1)
				ack, n, err := submitWithRetry(ctx, client, s)
				retried.Add(int64(n))
				switch {
				case err != nil:
					failed.Add(1)
					errOnce.Do(func() { firstErr = err })
				case ack.Duplicate:
					duplicate.Add(1)
				default:
					accepted.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	report.Submitted += int(submitted.Load())
	report.Accepted += int(accepted.Load())
	report.Duplicate += int(duplicate.Load())
	report.Retried += int(retried.Load())
	report.Failed += int(failed.Load())

	if err := ctx.Err(); err != nil {
		return err
	}
	return firstErr
}

func submitWithRetry(ctx context.Context, client *HTTPClient, s Submission) (AckResponse, int, error) {
	var (
		ack AckResponse
		err error
	)
	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		ack, err = client.submit(ctx, s)
		if !errors.Is(err, errBackpressure) {
			return ack, attempt, err
		}
		if _, perr := client.process(ctx); perr != nil {
			return ack, attempt, perr
		}
		select {
		case <-ctx.Done():
			return ack, attempt, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	return ack, maxSubmitAttempts - 1, err
}

// saveBoard writes the board as a JSON array.
func saveBoard(filename string, board []Entry) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	return nil
}

// displayReport logs the final statistics and the top of the board.
func displayReport(ctx context.Context, log logger.Logger, r *Report) {
	var perSecond float64
	if r.SubmitDuration > 0 {
		perSecond = float64(r.Submitted) / r.SubmitDuration.Seconds()
	}
	log.Info(ctx, "tournament finished",
		logger.Int("players", r.Players),
		logger.Int("rounds", r.Rounds),
		logger.Int("submitted", r.Submitted),
		logger.Int("accepted", r.Accepted),
		logger.Int("duplicate", r.Duplicate),
		logger.Int("retried", r.Retried),
		logger.Int("failed", r.Failed),
		logger.Int("processed", r.Processed),
		logger.Int("ranksProbed", r.RanksProbed),
		logger.Duration("submitDuration", r.SubmitDuration),
		logger.Duration("processDuration", r.ProcessDuration),
		logger.Duration("duration", r.Duration),
		logger.Float64("submissionsPerSecond", perSecond))
	for _, e := range r.Top {
		log.Info(ctx, "standing",
			logger.Int("rank", e.Rank),
			logger.String("name", e.Name),
			logger.Int64("score", e.Score))
	}
}
