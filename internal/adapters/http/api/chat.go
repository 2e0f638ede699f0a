package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/sitescope/internal/app"
	"github.com/okian/sitescope/internal/domain/model"
)

const maxChatBodyBytes = 1 << 20

// ChatHandler handles chat requests.
type ChatHandler struct {
	deps Dependencies
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(deps Dependencies) *ChatHandler {
	return &ChatHandler{deps: deps}
}

// HandleChat handles POST /api/chat requests.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat"
	var req model.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Chat(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
