// Package render holds the displayed batch and derives per-layer cell styles
// for the viewer.
package render

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/visual"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

// Renderer receives every new batch.
type Renderer interface {
	// UpdateMap replaces the displayed batch and re-derives the layers.
	UpdateMap(ctx context.Context, batch model.Batch) error
}

// Viewer is implemented by renderers that support layer and highlight
// selection.
type Viewer interface {
	SetView(ctx context.Context, view View) error
}

// View selects what the derived cells show.
type View struct {
	Layer     visual.Layer
	Highlight model.Highlight
	// Version is the map state version the view belongs to.
	Version uint64
}

// RGBA is a color as [r, g, b, a].
type RGBA [4]uint8

func toRGBA(c color.RGBA) RGBA { return RGBA{c.R, c.G, c.B, c.A} }

// Cell is one derived cell of the active layer.
type Cell struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Value       float64    `json:"value"`
	Score       float64    `json:"score"`
	Fill        RGBA       `json:"fill"`
	Outline     RGBA       `json:"outline"`
	Elevation   float64    `json:"elevation"`
	Highlighted bool       `json:"highlighted"`
	Tooltip     []string   `json:"tooltip"`
	Source      model.Cell `json:"-"`
}

// Transitions carries the animation durations in milliseconds.
type Transitions struct {
	ElevationMS int64 `json:"elevation"`
	ColorMS     int64 `json:"color"`
}

// Snapshot is a consistent copy of the displayed map.
type Snapshot struct {
	Version     uint64          `json:"version"`
	Layer       visual.Layer    `json:"layer"`
	Highlight   model.Highlight `json:"highlighted"`
	Cells       []Cell          `json:"cells"`
	Total       int             `json:"total"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Transitions Transitions     `json:"transitions"`
}

// Namer resolves a display name for a cell id.
type Namer func(id string) (string, bool)

// Option applies a configuration option to the LayerStore.
type Option func(*LayerStore)

// WithNamer sets the resolver used for tooltip region names.
func WithNamer(n Namer) Option {
	return func(s *LayerStore) {
		if n != nil {
			s.namer = n
		}
	}
}

// WithLayer sets the initial layer.
func WithLayer(l visual.Layer) Option {
	return func(s *LayerStore) {
		if l != "" {
			s.view.Layer = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *LayerStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// LayerStore is the in-process Renderer. It exclusively owns the displayed
// batch and keeps the derived cells of the active layer.
type LayerStore struct {
	mu        sync.RWMutex
	batch     model.Batch
	view      View
	derived   []Cell
	version   uint64
	updatedAt time.Time

	namer  Namer
	logger logger.Logger
}

// NewLayerStore creates an empty store on the default layer.
func NewLayerStore(opts ...Option) *LayerStore {
	s := &LayerStore{
		batch: model.Batch{},
		view:  View{Layer: visual.DefaultLayer, Highlight: model.Highlight{}},
		namer: func(string) (string, bool) { return "", false },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("render")
	}
	s.derived = s.derive(s.batch, s.view)
	return s
}

// UpdateMap replaces the displayed batch. The previous batch is discarded.
func (s *LayerStore) UpdateMap(ctx context.Context, batch model.Batch) error {
	if batch == nil {
		batch = model.Batch{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = batch
	s.derived = s.derive(batch, s.view)
	s.updatedAt = time.Now()

	metrics.UpdateBatchSize(batch.Len())
	s.logger.Debug(ctx, "map updated",
		logger.Int("cells", batch.Len()),
		logger.Int("rendered", len(s.derived)),
		logger.String("layer", string(s.view.Layer)),
	)
	return nil
}

// SetView changes the active layer and highlighted cells and re-derives.
func (s *LayerStore) SetView(ctx context.Context, view View) error {
	if _, err := visual.ParseLayer(string(view.Layer)); err != nil {
		return err
	}
	if view.Layer == "" {
		view.Layer = visual.DefaultLayer
	}
	if view.Highlight == nil {
		view.Highlight = model.Highlight{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = view
	s.version = view.Version
	s.derived = s.derive(s.batch, view)
	metrics.UpdateHighlightedCells(len(view.Highlight))
	metrics.UpdateBatchVersion(view.Version)
	s.logger.Debug(ctx, "view changed",
		logger.String("layer", string(view.Layer)),
		logger.Int("highlighted", len(view.Highlight)),
	)
	return nil
}

// Snapshot returns a copy of the displayed map.
func (s *LayerStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := make([]Cell, len(s.derived))
	copy(cells, s.derived)
	hl := make(model.Highlight, len(s.view.Highlight))
	copy(hl, s.view.Highlight)
	return Snapshot{
		Version:   s.version,
		Layer:     s.view.Layer,
		Highlight: hl,
		Cells:     cells,
		Total:     s.batch.Len(),
		UpdatedAt: s.updatedAt,
		Transitions: Transitions{
			ElevationMS: visual.Transitions.Elevation.Milliseconds(),
			ColorMS:     visual.Transitions.Color.Milliseconds(),
		},
	}
}

// Batch returns the displayed batch. Callers must not modify it.
func (s *LayerStore) Batch() model.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// derive builds the cells of the active layer ordered by id. Cells missing
// the layer field are left out.
func (s *LayerStore) derive(batch model.Batch, view View) []Cell {
	out := make([]Cell, 0, batch.Len())
	for _, c := range batch.Cells() {
		st, ok := visual.Style(c, view.Layer)
		if !ok {
			continue
		}
		name, _ := s.namer(c.ID)
		out = append(out, Cell{
			ID:          c.ID,
			Name:        name,
			Value:       st.Value,
			Score:       c.Score,
			Fill:        toRGBA(st.Fill),
			Outline:     toRGBA(st.Outline),
			Elevation:   st.Elevation,
			Highlighted: view.Highlight.Contains(c.ID),
			Tooltip:     visual.Tooltip(c, name),
			Source:      c,
		})
	}
	return out
}
