// Package loop runs the single consumer that applies queued map updates one
// at a time.
package loop

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

const (
	defaultMetricsInterval = 5 * time.Second
)

// Applier applies one map update. It must not panic past its own boundary
// and always produces a result.
type Applier interface {
	Apply(ctx context.Context, u model.MapUpdate) model.UpdateResult
}

// Queue defines how the loop receives updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan *queue.Item
	Len(ctx context.Context) int
}

// Loop drains the queue and applies updates sequentially.
type Loop struct {
	queue   Queue
	applier Applier
	name    string

	metricsInterval time.Duration

	startOnce sync.Once
	done      chan struct{}
	processed atomic.Uint64

	logger logger.Logger
}

// New creates a loop over q applying with a.
func New(q Queue, a Applier, opts ...Option) *Loop {
	l := &Loop{
		queue:           q,
		applier:         a,
		name:            "update-loop",
		metricsInterval: defaultMetricsInterval,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Named(l.name)
	}
	return l
}

// Start runs the loop and its metrics updater in the background.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.Run(ctx)
		if l.metricsInterval > 0 {
			go l.runMetricsUpdater(ctx)
		}
	})
}

// Run applies updates until the queue is closed and drained. It blocks.
// Once ctx is canceled, items still arriving are answered with an unapplied
// result so no submitter is left waiting.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	for it := range l.queue.Dequeue(context.WithoutCancel(ctx)) {
		if ctx.Err() != nil {
			l.reject(ctx, it)
			continue
		}
		l.process(ctx, it)
	}
}

// Processed returns the number of updates applied so far.
func (l *Loop) Processed() uint64 { return l.processed.Load() }

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Shutdown closes the queue when possible and waits for queued updates to be
// applied.
func (l *Loop) Shutdown(ctx context.Context) error {
	if closer, ok := l.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			l.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (l *Loop) process(ctx context.Context, it *queue.Item) {
	start := time.Now()
	defer func() {
		metrics.RecordLoopProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res := l.applier.Apply(ctx, it.Update)
	l.processed.Add(1)
	it.Reply(res)

	l.logger.Debug(ctx, "update applied",
		logger.String("id", it.Update.ID),
		logger.String("source", it.Update.Source),
		logger.Bool("applied", res.Applied),
		logger.Int("cells", res.Cells),
	)
}

func (l *Loop) reject(ctx context.Context, it *queue.Item) {
	it.Reply(model.UpdateResult{ID: it.Update.ID})
	metrics.RecordMapUpdate(it.Update.Source, "rejected")
	l.logger.Warn(ctx, "update loop stopped; update not applied",
		logger.String("id", it.Update.ID),
		logger.String("source", it.Update.Source),
	)
}

func (l *Loop) runMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(l.metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.C:
			l.updateMetrics(ctx)
		}
	}
}

func (l *Loop) updateMetrics(ctx context.Context) {
	metrics.UpdateQueueSize(l.queue.Len(ctx))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		pause := ms.PauseNs[(ms.NumGC+255)%256]
		metrics.RecordSystemGCPauseTime(float64(pause) / 1e6)
	}
}
