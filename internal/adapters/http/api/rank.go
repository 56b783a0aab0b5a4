package api

import (
	"context"
	"net/http"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, playerID string) (int, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

type rankResponse struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
}

// HandleGetRank handles GET /rank/{id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind("api.get_rank", ErrBadRequest))
		return
	}
	rank, err := h.deps.Rank(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.get_rank", err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{PlayerID: id, Rank: rank})
}
