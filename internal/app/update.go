package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	updatequeue "github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/adapters/render"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/normalize"
	"github.com/okian/sitescope/internal/domain/visual"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

// Wire keys of a map update payload.
const (
	keyHexagonData = "hexagonData"
	keyHighlighted = "highlighted"
)

// UpdatePayload builds the wire shape accepted by UpdateMap.
func UpdatePayload(cells, highlighted any) map[string]any {
	p := map[string]any{keyHexagonData: cells}
	if highlighted != nil {
		p[keyHighlighted] = highlighted
	}
	return p
}

// UpdateMap replaces the displayed batch with the cells in payload. It
// accepts any input: a missing or malformed hexagonData is an empty update.
// It never fails; when rendering fails the previous state stays displayed.
func (s *Service) UpdateMap(ctx context.Context, payload any) model.UpdateResult {
	return s.Apply(ctx, model.MapUpdate{Source: model.SourceAPI, Payload: payload})
}

// Apply runs one update. It is the update loop's Applier. An id that was
// already applied is answered with its recorded result.
func (s *Service) Apply(ctx context.Context, u model.MapUpdate) model.UpdateResult {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Source == "" {
		u.Source = model.SourceAPI
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.replays.Lookup(ctx, u.ID); ok {
		metrics.RecordMapUpdate(u.Source, "replayed")
		s.logger.Debug(ctx, "map update replayed", logger.String("id", u.ID))
		return prev
	}

	res, err := s.applyLocked(ctx, u)
	metrics.RecordMapUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.updatesFailed.Add(1)
		metrics.RecordMapUpdate(u.Source, "failed")
		metrics.RecordErrorByComponent("service", "update_failed")
		s.logger.Error(ctx, "map update failed; keeping previous map",
			logger.String("id", u.ID),
			logger.String("source", u.Source),
			logger.Error(err),
		)
		return s.resultLocked(u.ID, false)
	}
	s.updatesApplied.Add(1)
	s.lastUpdate.Store(res.AppliedAt.UnixNano())
	s.replays.Record(ctx, u.ID, res)
	metrics.RecordMapUpdate(u.Source, "applied")
	s.logger.Info(ctx, "map updated",
		logger.String("id", u.ID),
		logger.String("source", u.Source),
		logger.Int("cells", res.Cells),
		logger.Int("highlighted", len(res.Highlighted)),
	)
	return res
}

// applyLocked normalizes, transitions and renders. A panic anywhere below is
// turned into an error; s.state is only replaced on success.
func (s *Service) applyLocked(ctx context.Context, u model.MapUpdate) (res model.UpdateResult, err error) {
	prev := s.state
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByType("panic", "critical")
			err = fmt.Errorf("%w: %v", ErrUpdatePanicked, r)
			s.restoreLocked(ctx, prev)
		}
	}()

	cells, highlighted := splitPayload(u.Payload)
	batch := s.normalizer.Normalize(ctx, cells)
	next := Transition(prev, batch, normalize.Highlighted(highlighted))

	if err := s.renderer.UpdateMap(ctx, next.Batch); err != nil {
		return model.UpdateResult{}, fmt.Errorf("render batch: %w", err)
	}
	if err := s.syncView(ctx, next); err != nil {
		s.restoreLocked(ctx, prev)
		return model.UpdateResult{}, fmt.Errorf("render view: %w", err)
	}

	s.state = next
	return s.resultLocked(u.ID, true), nil
}

// restoreLocked puts prev back on the renderer after a failed update.
func (s *Service) restoreLocked(ctx context.Context, prev State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "renderer panicked while restoring previous map", logger.Any("panic", r))
		}
	}()
	if err := s.renderer.UpdateMap(ctx, prev.Batch); err != nil {
		s.logger.Error(ctx, "could not restore previous map", logger.Error(err))
		return
	}
	_ = s.syncView(ctx, prev)
}

func (s *Service) resultLocked(id string, applied bool) model.UpdateResult {
	return model.UpdateResult{
		ID:          id,
		Applied:     applied,
		Cells:       s.state.Batch.Len(),
		Highlighted: append(model.Highlight{}, s.state.Highlight...),
		Version:     s.state.Version,
		AppliedAt:   time.Now().UTC(),
	}
}

func (s *Service) syncView(ctx context.Context, st State) error {
	v, ok := s.renderer.(render.Viewer)
	if !ok {
		return nil
	}
	return v.SetView(ctx, render.View{Layer: st.Layer, Highlight: st.Highlight, Version: st.Version})
}

// splitPayload pulls hexagonData and highlighted out of an update payload.
func splitPayload(payload any) (cells, highlighted any) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, nil
	}
	return m[keyHexagonData], m[keyHighlighted]
}

// Submit queues u for the update loop and waits for its result. Before Start
// the update is applied inline.
func (s *Service) Submit(ctx context.Context, u model.MapUpdate) (model.UpdateResult, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	s.lifecycle.RLock()
	q, started := s.queue, s.started
	s.lifecycle.RUnlock()

	if !started {
		return s.Apply(ctx, u), nil
	}

	it := updatequeue.NewItem(u)
	if err := q.Enqueue(ctx, it); err != nil {
		s.logger.Warn(ctx, "map update rejected",
			logger.String("id", u.ID),
			logger.String("source", u.Source),
			logger.Error(err),
		)
		return model.UpdateResult{}, err
	}
	return it.Wait(ctx)
}

// SetLayer switches the layer fed into the color and elevation mapping.
func (s *Service) SetLayer(ctx context.Context, layer visual.Layer) (State, error) {
	if _, err := visual.ParseLayer(string(layer)); err != nil {
		return State{}, err
	}
	if layer == "" {
		layer = visual.DefaultLayer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Layer = layer
	if err := s.syncView(ctx, next); err != nil {
		return State{}, fmt.Errorf("render view: %w", err)
	}
	s.state = next
	s.logger.Info(ctx, "layer changed", logger.String("layer", string(layer)))
	return next, nil
}
