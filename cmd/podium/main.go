// Command podium serves the leaderboard over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/podium/internal/adapters/http/api"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(context.Background())
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(cfg.LogFormat, os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "podium exited with error", logger.Error(err))
	}
	_ = logger.Sync()
}

// run starts the service and the HTTP server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc := service.New(
		service.WithConfig(cfg),
		service.WithLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	metrics.UpdateQueueCapacity(cfg.QueueCapacity)

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(svc, cfg, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var err error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err = <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(serr))
	}
	// Stop after the listener closes so in-flight submissions drain too.
	if serr := svc.Stop(shutdownCtx); serr != nil {
		log.Error(ctx, "service stop failed", logger.Error(serr))
	}

	log.Info(ctx, "server stopped")
	return err
}

// newHandler registers the API routes on a fresh mux.
func newHandler(svc *service.Service, cfg *config.Config, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithLogger(log.Named("api")),
	).Register(mux)
	return mux
}

// startSystemMetricsUpdater refreshes the runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.SampleRuntime()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SampleRuntime()
		}
	}
}
