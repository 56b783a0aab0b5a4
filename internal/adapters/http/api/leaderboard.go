package api

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Top(ctx context.Context, n int) ([]Entry, error)
	Leaderboard(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests. Without a
// limit the whole board is returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n, ok, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			WrapKind(op, ErrBadRequest, errors.New("limit exceeds "+strconv.Itoa(h.maxLimit))))
		return
	}

	var entries []Entry
	if ok {
		entries, err = h.deps.Top(r.Context(), n)
	} else {
		entries, err = h.deps.Leaderboard(r.Context())
	}
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleClear handles DELETE /leaderboard requests.
func (h *LeaderboardHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Clear(r.Context()); err != nil {
		writeFailure(w, "api.clear_leaderboard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var csvHeader = []string{"rank", "player_id", "name", "score"}

// HandleExport handles GET /leaderboard/export?format=csv|json requests.
func (h *LeaderboardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_leaderboard"
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("format must be csv or json")))
		return
	}

	entries, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	if format == "json" {
		w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.json"`)
		writeJSON(w, http.StatusOK, entries)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.csv"`)
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, e := range entries {
		_ = cw.Write([]string{
			strconv.Itoa(e.Rank),
			e.PlayerID,
			e.Name,
			strconv.FormatInt(e.Score, 10),
		})
	}
	cw.Flush()
}
