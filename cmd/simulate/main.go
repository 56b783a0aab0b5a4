// Command simulate plays a tournament against a running podium server.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/podium/internal/simulation"
)

// Default configuration constants.
const (
	defaultPlayers     = 1000
	defaultRounds      = 5
	defaultTopN        = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultPlayers, "Number of players")
		rounds     = flag.Int("rounds", defaultRounds, "Number of scoring rounds")
		topN       = flag.Int("top", defaultTopN, "Number of top entries to report")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Score generator seed")
		reset      = flag.Bool("reset", true, "Clear the board before the first round")
		outputFile = flag.String("output", "", "Write the final board to this JSON file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		format     = flag.String("format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every round")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulation.ShowHelp()
		return
	}

	closer, err := simulation.SetupLogging(*format, *logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)

	_, err = simulation.Run(ctx, &simulation.Config{
		BaseURL:    *baseURL,
		Players:    *players,
		Rounds:     *rounds,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		Reset:      *reset,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	cancel()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
