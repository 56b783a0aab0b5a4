package api

import (
	"context"
	"net/http"

	"github.com/okian/podium/internal/domain/types"
)

// ProcessDependencies defines the interface for draining pending updates.
type ProcessDependencies interface {
	ProcessAll(ctx context.Context) (int, error)
	ProcessOne(ctx context.Context) (types.ProcessResult, error)
}

// ProcessHandler handles explicit drain requests.
type ProcessHandler struct {
	deps ProcessDependencies
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(deps ProcessDependencies) *ProcessHandler {
	return &ProcessHandler{deps: deps}
}

type processAllResponse struct {
	Processed int `json:"processed"`
}

// HandleProcessAll handles POST /process requests.
func (h *ProcessHandler) HandleProcessAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.ProcessAll(r.Context())
	if err != nil {
		writeFailure(w, "api.process_all", err)
		return
	}
	writeJSON(w, http.StatusOK, processAllResponse{Processed: n})
}

// HandleProcessOne handles POST /process/one requests.
func (h *ProcessHandler) HandleProcessOne(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.ProcessOne(r.Context())
	if err != nil {
		writeFailure(w, "api.process_one", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
