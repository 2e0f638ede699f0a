package loop_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/sitescope/internal/adapters/mq/loop"
	"github.com/okian/sitescope/internal/adapters/mq/queue"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []string
	active  int
	overlap bool
}

func (a *recordingApplier) Apply(_ context.Context, u model.MapUpdate) model.UpdateResult {
	a.mu.Lock()
	a.active++
	if a.active > 1 {
		a.overlap = true
	}
	a.mu.Unlock()

	time.Sleep(time.Millisecond)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.active--
	a.applied = append(a.applied, u.ID)
	return model.UpdateResult{ID: u.ID, Applied: true, Version: uint64(len(a.applied))}
}

func (a *recordingApplier) overlapped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overlap
}

func (a *recordingApplier) ids() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.applied))
	copy(out, a.applied)
	return out
}

func TestLoop(t *testing.T) {
	convey.Convey("Given a loop over an in-memory queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		a := &recordingApplier{}
		l := loop.New(q, a, loop.WithMetricsInterval(10*time.Millisecond))
		l.Start(ctx)

		convey.Convey("When a submitter waits for its update", func() {
			it := queue.NewItem(model.MapUpdate{ID: "u1", Source: model.SourceAPI})
			convey.So(q.Enqueue(ctx, it), convey.ShouldBeNil)

			waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
			defer waitCancel()
			res, err := it.Wait(waitCtx)

			convey.Convey("Then it receives the applied result", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.ID, convey.ShouldEqual, "u1")
				convey.So(res.Applied, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When many goroutines submit at once", func() {
			var wg sync.WaitGroup
			items := make([]*queue.Item, 20)
			for i := range items {
				items[i] = queue.NewItem(model.MapUpdate{ID: string(rune('a' + i))})
			}
			for _, it := range items {
				wg.Add(1)
				go func(it *queue.Item) {
					defer wg.Done()
					_ = q.Enqueue(ctx, it)
				}(it)
			}
			wg.Wait()

			convey.Convey("Then every update is applied one at a time", func() {
				for _, it := range items {
					waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
					_, err := it.Wait(waitCtx)
					waitCancel()
					convey.So(err, convey.ShouldBeNil)
				}
				convey.So(len(a.ids()), convey.ShouldEqual, 20)
				convey.So(a.overlapped(), convey.ShouldBeFalse)
				convey.So(l.Processed(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When the loop is shut down with pending updates", func() {
			pending := []*queue.Item{
				queue.NewItem(model.MapUpdate{ID: "p1"}),
				queue.NewItem(model.MapUpdate{ID: "p2"}),
			}
			for _, it := range pending {
				convey.So(q.Enqueue(ctx, it), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
			defer shutdownCancel()
			err := l.Shutdown(shutdownCtx)

			convey.Convey("Then queued updates are drained before it stops", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.ids(), convey.ShouldResemble, []string{"p1", "p2"})
				convey.So(q.IsClosed(), convey.ShouldBeTrue)

				select {
				case <-l.Done():
				default:
					t.Error("expected loop to be done")
				}
			})
		})
	})
}

func TestLoopContextCancel(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue()
		a := &recordingApplier{}
		l := loop.New(q, a, loop.WithMetricsInterval(0), loop.WithName("test-loop"))
		l.Start(ctx)

		convey.Convey("When its context is canceled while an update is queued", func() {
			cancel()
			it := queue.NewItem(model.MapUpdate{ID: "late", Source: model.SourceAPI})
			convey.So(q.Enqueue(context.Background(), it), convey.ShouldBeNil)

			waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
			defer waitCancel()
			res, err := it.Wait(waitCtx)

			convey.Convey("Then the submitter is answered without the update being applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.ID, convey.ShouldEqual, "late")
				convey.So(res.Applied, convey.ShouldBeFalse)
				convey.So(a.ids(), convey.ShouldBeEmpty)
			})

			convey.Convey("Then Run returns once the queue is closed", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				convey.So(l.Shutdown(shutdownCtx), convey.ShouldBeNil)

				select {
				case <-l.Done():
				default:
					t.Error("loop did not stop")
				}
			})
		})
	})
}
