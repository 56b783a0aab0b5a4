// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/okian/podium/internal/adapters/mq/queue"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/engine"
	"github.com/okian/podium/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	ProcessDependencies
	LeaderboardDependencies
	RankDependencies
	PlayerDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	processHandler     *ProcessHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	playersHandler     *PlayersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.GetOrDiscard().Named("api")
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scoresHandler:      NewScoresHandler(deps, cfg.logger),
		processHandler:     NewProcessHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.maxLimit),
		rankHandler:        NewRankHandler(deps),
		playersHandler:     NewPlayersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("POST /process", MetricsMiddleware(s.processHandler.HandleProcessAll, "process"))
	mux.HandleFunc("POST /process/one", MetricsMiddleware(s.processHandler.HandleProcessOne, "process_one"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("DELETE /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleClear, "leaderboard"))
	mux.HandleFunc("GET /leaderboard/export", MetricsMiddleware(s.leaderboardHandler.HandleExport, "export"))

	mux.HandleFunc("GET /rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))

	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.playersHandler.HandleGetPlayer, "players"))
	mux.HandleFunc("PUT /players/{id}", MetricsMiddleware(s.playersHandler.HandlePutPlayer, "players"))
	mux.HandleFunc("DELETE /players/{id}", MetricsMiddleware(s.playersHandler.HandleDeletePlayer, "players"))
	mux.HandleFunc("GET /players/{id}/nearby", MetricsMiddleware(s.playersHandler.HandleNearby, "nearby"))
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.LeaderboardEntry

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status code and error code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, engine.ErrInvalidArgument),
		errors.Is(err, scoring.ErrOutOfRange):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, queue.ErrClosed),
		errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryInt parses an optional non-negative integer query parameter. ok is
// false when the parameter is absent.
func queryInt(r *http.Request, key string) (n int, ok bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, errors.New("invalid " + key)
	}
	if n < 0 {
		return 0, true, errors.New(key + " must not be negative")
	}
	return n, true, nil
}
