package simulation

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/podium/pkg/logger"
)

// SetupLogging initializes the global logger for the simulate command,
// writing to stdout and, when logFile is set, to that file as well.
func SetupLogging(format, logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closer = f
	}
	if err := logger.InitWithOptions(format, w); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ShowHelp prints usage information for the simulate command.
func ShowHelp() {
	os.Stdout.WriteString(`Podium Tournament Simulator
===========================

Plays a tournament against a running podium server and verifies the board.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string       Base URL of the service (default "http://localhost:9080")
  -players int      Number of players (default 1000)
  -rounds int       Number of scoring rounds (default 5)
  -top int          Number of top entries to report (default 10)
  -workers int      Number of concurrent submitters (default CPU cores * 2)
  -timeout duration HTTP request timeout (default 30s)
  -seed int         Score generator seed (default: current time)
  -reset            Clear the board before the first round (default true)
  -output string    Write the final board to this JSON file
  -log string       Also write logs to this file
  -format string    Log format: text or json (default "text")
  -verbose          Log every round
  -help             Show this help message

Examples:
  go run ./cmd/simulate -players 10000 -rounds 10 -workers 32
  go run ./cmd/simulate -output board.json -verbose
`)
}
