package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	updatequeue "github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const maxMapBodyBytes = 8 << 20

// MapHandler serves and replaces the displayed map.
type MapHandler struct {
	deps   Dependencies
	locate Locator
}

// NewMapHandler creates a new map handler. locate may be nil, in which case
// the GeoJSON export is empty.
func NewMapHandler(deps Dependencies, locate Locator) *MapHandler {
	if locate == nil {
		locate = func(string) (float64, float64, bool) { return 0, 0, false }
	}
	return &MapHandler{deps: deps, locate: locate}
}

// HandleGetMap handles GET /api/map requests.
func (h *MapHandler) HandleGetMap(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.deps.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.get_map", ErrUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleUpdateMap handles POST /api/map requests. The body is the
// {hexagonData, highlighted} payload; a body that is not JSON is treated as
// an empty update.
func (h *MapHandler) HandleUpdateMap(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_map"
	var payload any
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMapBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}

	res, err := h.deps.Submit(r.Context(), model.MapUpdate{
		ID:      requestID(r),
		Source:  model.SourceAPI,
		Payload: payload,
	})
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

// HandleGeoJSON handles GET /api/map.geojson requests. Cells whose position
// is unknown are left out.
func (h *MapHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	const op = "api.map_geojson"
	snap, ok := h.deps.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrUnavailable))
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, c := range snap.Cells {
		lat, lng, ok := h.locate(c.ID)
		if !ok {
			continue
		}
		f := geojson.NewFeature(orb.Point{lng, lat})
		f.ID = c.ID
		f.Properties["name"] = c.Name
		f.Properties["layer"] = string(snap.Layer)
		f.Properties["value"] = c.Value
		f.Properties["score"] = c.Score
		f.Properties["fill"] = []int{int(c.Fill[0]), int(c.Fill[1]), int(c.Fill[2]), int(c.Fill[3])}
		f.Properties["elevation"] = c.Elevation
		f.Properties["highlighted"] = c.Highlighted
		fc.Append(f)
	}
	fc.ExtraMembers = map[string]interface{}{"version": snap.Version}

	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
