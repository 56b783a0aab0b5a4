package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/engine"
)

// Default window for GET /players/{id}/nearby.
const defaultNearby = 2

// PlayerDependencies defines the interface for single-player operations.
type PlayerDependencies interface {
	Player(ctx context.Context, id string) (types.Player, error)
	UpsertPlayer(ctx context.Context, id, name string, score int64) (types.Player, error)
	RemovePlayer(ctx context.Context, id string) (bool, error)
	Nearby(ctx context.Context, id string, above, below int) ([]Entry, error)
}

// PlayersHandler handles player lookups and direct writes.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayer handles GET /players/{id} requests.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Player(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "api.get_player", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePutPlayer handles PUT /players/{id} requests. The write bypasses the
// pending queue and is visible immediately.
func (h *PlayersHandler) HandlePutPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_player"
	var in types.PlayerUpdate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if in.Score == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing score")))
		return
	}
	p, err := h.deps.UpsertPlayer(r.Context(), r.PathValue("id"), in.Name, *in.Score)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDeletePlayer handles DELETE /players/{id} requests.
func (h *PlayersHandler) HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_player"
	removed, err := h.deps.RemovePlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if !removed {
		writeFailure(w, op, engine.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNearby handles GET /players/{id}/nearby?above=&below= requests.
func (h *PlayersHandler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_nearby"
	above, ok, err := queryInt(r, "above")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if !ok {
		above = defaultNearby
	}
	below, ok, err := queryInt(r, "below")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if !ok {
		below = defaultNearby
	}

	entries, err := h.deps.Nearby(r.Context(), r.PathValue("id"), above, below)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
