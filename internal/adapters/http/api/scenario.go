package api

import (
	"errors"
	"net/http"

	updatequeue "github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/domain/mock"
)

// ScenarioHandler triggers mock scenarios.
type ScenarioHandler struct {
	deps Dependencies
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(deps Dependencies) *ScenarioHandler {
	return &ScenarioHandler{deps: deps}
}

// HandleRunScenario handles POST /api/scenarios/{name}?style= requests.
func (h *ScenarioHandler) HandleRunScenario(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_scenario"
	scenario, err := mock.ParseScenario(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	style, err := mock.ParseStyle(r.URL.Query().Get("style"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.RunScenario(r.Context(), scenario, style)
	switch {
	case errors.Is(err, updatequeue.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
