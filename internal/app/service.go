// Package service owns the displayed map state and wires the normalizer,
// renderer, update loop and chat backend together.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/sitescope/internal/adapters/backend"
	updateloop "github.com/okian/sitescope/internal/adapters/mq/loop"
	updatequeue "github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/adapters/render"
	"github.com/okian/sitescope/internal/domain/dedupe"
	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/normalize"
	"github.com/okian/sitescope/internal/domain/visual"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

const (
	defaultQueueSize = 64
	shutdownTimeout  = 10 * time.Second
)

// Service is the application controller.
type Service struct {
	// mu serializes state transitions.
	mu    sync.Mutex
	state State

	renderer   render.Renderer
	normalizer *normalize.Normalizer
	responder  backend.Responder
	generator  *mock.Generator
	replays    dedupe.Results

	queueSize int

	lifecycle sync.RWMutex
	queue     *updatequeue.InMemoryQueue
	loop      *updateloop.Loop
	started   bool

	updatesApplied atomic.Uint64
	updatesFailed  atomic.Uint64
	chatRequests   atomic.Uint64
	scenarioRuns   atomic.Uint64
	lastUpdate     atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRenderer sets the renderer receiving every new batch.
func WithRenderer(r render.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithNormalizer sets the normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithResponder sets the chat backend. It is always wrapped in a fallback.
func WithResponder(r backend.Responder) Option {
	return func(s *Service) {
		if r != nil {
			s.responder = r
		}
	}
}

// WithGenerator sets the generator used by scenario triggers.
func WithGenerator(g *mock.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithReplayCache sets the cache answering retried update ids.
func WithReplayCache(r dedupe.Results) Option {
	return func(s *Service) {
		if r != nil {
			s.replays = r
		}
	}
}

// WithQueueSize sets the maximum number of pending map updates.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLayer sets the initial layer.
func WithLayer(l visual.Layer) Option {
	return func(s *Service) {
		if l != "" {
			s.state.Layer = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Missing collaborators get in-process defaults:
// a LayerStore renderer and a mock chat backend.
func New(opts ...Option) *Service {
	s := &Service{
		state:     InitialState(visual.DefaultLayer),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New()
	}
	if s.generator == nil {
		s.generator = mock.NewGenerator()
	}
	if s.replays == nil {
		s.replays = dedupe.NewInMemoryResults()
	}
	if s.renderer == nil {
		s.renderer = render.NewLayerStore(
			render.WithLayer(s.state.Layer),
			render.WithNamer(s.generator.Catalog().Name),
		)
	}
	if s.responder == nil {
		s.responder = backend.NewMockResponder(backend.WithGenerator(s.generator))
	}
	if _, ok := s.responder.(*backend.Fallback); !ok {
		s.responder = backend.NewFallback(s.responder, s.logger.Named("fallback"))
	}
	return s
}

// Start syncs the renderer with the initial state and starts the update loop.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started {
		return nil
	}

	s.mu.Lock()
	err := s.syncView(ctx, s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.queue = updatequeue.NewInMemoryQueue(updatequeue.WithCapacity(s.queueSize))
	s.loop = updateloop.New(s.queue, s, updateloop.WithLogger(s.logger.Named("loop")))
	// The loop outlives ctx; Stop drains it after the server stops taking
	// requests.
	s.loop.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("queueSize", s.queueSize),
		logger.String("layer", string(s.state.Layer)),
	)
	return nil
}

// Stop drains pending updates and stops the loop.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping service...")
	if err := s.loop.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "update loop did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// State returns a copy of the current state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Highlight = append(make([]string, 0, len(st.Highlight)), st.Highlight...)
	return st
}

// Snapshot returns the rendered map when the renderer can produce one. Its
// version is the state version reported by update results.
func (s *Service) Snapshot() (render.Snapshot, bool) {
	sn, ok := s.renderer.(interface{ Snapshot() render.Snapshot })
	if !ok {
		return render.Snapshot{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := sn.Snapshot()
	snap.Version = s.state.Version
	return snap, true
}

// Generator returns the generator used for scenarios.
func (s *Service) Generator() *mock.Generator { return s.generator }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	st := s.State()

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"queueSize":      s.queueSize,
		"version":        st.Version,
		"cells":          st.Batch.Len(),
		"highlighted":    len(st.Highlight),
		"layer":          string(st.Layer),
		"updatesApplied": s.updatesApplied.Load(),
		"updatesFailed":  s.updatesFailed.Load(),
		"chatRequests":   s.chatRequests.Load(),
		"scenarioRuns":   s.scenarioRuns.Load(),
	}
	if ts := s.lastUpdate.Load(); ts > 0 {
		stats["lastUpdate"] = time.Unix(0, ts).UTC().Format(time.RFC3339Nano)
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["processed"] = s.loop.Processed()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
