package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

// ScoreDependencies defines the interface for score submission.
type ScoreDependencies interface {
	Submit(ctx context.Context, in types.ScoreSubmission) (types.SubmitResult, error)
}

// ScoresHandler handles score submissions.
type ScoresHandler struct {
	deps ScoreDependencies
	log  logger.Logger
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies, log logger.Logger) *ScoresHandler {
	return &ScoresHandler{deps: deps, log: log}
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

func validateSubmission(in *types.ScoreSubmission) error {
	switch {
	case strings.TrimSpace(in.PlayerID) == "":
		return errors.New("missing player_id")
	case in.Score == nil:
		return errors.New("missing score")
	}
	return nil
}

// HandlePostScore handles POST /scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	var in types.ScoreSubmission
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateSubmission(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), in)
	if err != nil {
		status, _ := classify(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "submission failed",
				logger.String("player_id", in.PlayerID), logger.Error(err))
		}
		writeFailure(w, op, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RequestID: res.RequestID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: res.RequestID})
}
