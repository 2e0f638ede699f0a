// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/sitescope/internal/adapters/render"
	service "github.com/okian/sitescope/internal/app"
	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/visual"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Chat answers a message and displays any returned cells.
	Chat(ctx context.Context, req model.ChatRequest) (service.ChatResult, error)

	// Submit queues a map update and waits for it to be applied.
	Submit(ctx context.Context, u model.MapUpdate) (model.UpdateResult, error)

	// Snapshot returns the rendered map.
	Snapshot() (render.Snapshot, bool)

	// SetLayer selects the layer fed into the color mapping.
	SetLayer(ctx context.Context, layer visual.Layer) (service.State, error)

	// RunScenario displays generated cells.
	RunScenario(ctx context.Context, scenario mock.Scenario, style mock.Style) (service.ScenarioResult, error)
}

// Locator resolves a cell id to a WGS84 position.
type Locator func(id string) (lat, lng float64, ok bool)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	chatHandler     *ChatHandler
	mapHandler      *MapHandler
	layerHandler    *LayerHandler
	scenarioHandler *ScenarioHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, locate Locator) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		chatHandler:     NewChatHandler(deps),
		mapHandler:      NewMapHandler(deps, locate),
		layerHandler:    NewLayerHandler(deps),
		scenarioHandler: NewScenarioHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /api/chat", MetricsMiddleware(s.chatHandler.HandleChat, "chat"))
	mux.HandleFunc("GET /api/map", MetricsMiddleware(s.mapHandler.HandleGetMap, "map"))
	mux.HandleFunc("POST /api/map", MetricsMiddleware(s.mapHandler.HandleUpdateMap, "map"))
	mux.HandleFunc("GET /api/map.geojson", MetricsMiddleware(s.mapHandler.HandleGeoJSON, "map_geojson"))
	mux.HandleFunc("GET /api/layers", MetricsMiddleware(s.layerHandler.HandleListLayers, "layers"))
	mux.HandleFunc("PUT /api/layer", MetricsMiddleware(s.layerHandler.HandleSetLayer, "layer"))
	mux.HandleFunc("POST /api/scenarios/{name}", MetricsMiddleware(s.scenarioHandler.HandleRunScenario, "scenarios"))
}

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
