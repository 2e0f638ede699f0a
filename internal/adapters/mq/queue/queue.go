// Package queue carries map updates from request handlers to the single
// update loop.
//
// Submitters enqueue an Item and may wait for its result; the loop is the
// only consumer.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Item is one queued map update and its reply slot.
type Item struct {
	Update     model.MapUpdate
	EnqueuedAt time.Time
	reply      chan model.UpdateResult
}

// NewItem wraps an update for submission.
func NewItem(u model.MapUpdate) *Item {
	return &Item{
		Update: u,
		reply:  make(chan model.UpdateResult, 1),
	}
}

// Reply delivers the result. Only the first call has an effect.
func (it *Item) Reply(r model.UpdateResult) {
	select {
	case it.reply <- r:
	default:
	}
}

// Wait blocks until the item is applied or ctx is done.
func (it *Item) Wait(ctx context.Context) (model.UpdateResult, error) {
	select {
	case r := <-it.reply:
		return r, nil
	case <-ctx.Done():
		return model.UpdateResult{}, ctx.Err()
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an item. It fails with ErrQueueFull or ErrQueueClosed
	// instead of blocking.
	Enqueue(ctx context.Context, it *Item) error

	// Dequeue returns a channel that receives items in submission order.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan *Item

	// Len returns the current number of queued items.
	Len(ctx context.Context) int

	// Close stops accepting items.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan *Item
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan *Item, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, it *Item) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return err
	}

	it.EnqueuedAt = time.Now()
	select {
	case q.items <- it:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.items))
		return nil
	default:
		metrics.RecordQueueRejected("full")
		return ErrQueueFull
	}
}

// Dequeue returns a channel that will receive items as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan *Item {
	out := make(chan *Item)
	go func() {
		defer close(out)
		for it := range q.items {
			select {
			case out <- it:
				metrics.RecordQueueDequeue()
				metrics.RecordQueueWaitTime(float64(time.Since(it.EnqueuedAt).Microseconds()) / 1000)
				metrics.UpdateQueueSize(len(q.items))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued items.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the maximum number of queued items.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue. Queued items are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
