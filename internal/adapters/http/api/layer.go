package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/sitescope/internal/domain/visual"
)

// LayerHandler lists and selects layers.
type LayerHandler struct {
	deps Dependencies
}

// NewLayerHandler creates a new layer handler.
func NewLayerHandler(deps Dependencies) *LayerHandler {
	return &LayerHandler{deps: deps}
}

type layerRequest struct {
	Layer string `json:"layer"`
}

type layerResponse struct {
	Layer   visual.Layer `json:"layer"`
	Version uint64       `json:"version"`
}

// HandleListLayers handles GET /api/layers requests.
func (h *LayerHandler) HandleListLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"layers":  visual.Layers(),
		"default": visual.DefaultLayer,
	})
}

// HandleSetLayer handles PUT /api/layer requests.
func (h *LayerHandler) HandleSetLayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_layer"
	var req layerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	layer, err := visual.ParseLayer(req.Layer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	st, err := h.deps.SetLayer(r.Context(), layer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, layerResponse{Layer: st.Layer, Version: st.Version})
}
