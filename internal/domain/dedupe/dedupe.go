// Package dedupe remembers the outcome of recent map updates by id, so a
// retried request is answered with its original result instead of being
// applied a second time.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/sitescope/internal/domain/model"
)

const defaultMaxSize = 1024

// Results records applied update results by update id.
type Results interface {
	// Lookup returns the result recorded for id.
	Lookup(ctx context.Context, id string) (model.UpdateResult, bool)

	// Record stores res under id. The oldest entry is evicted once the
	// cache is full. Recording an id twice keeps the first result.
	Record(ctx context.Context, id string, res model.UpdateResult)

	Size() int64
}

// node is one entry of the insertion-ordered list.
type node struct {
	id   string
	next *node
}

func (n *node) reset() {
	n.id = ""
	n.next = nil
}

// inMemoryResults keeps at most maxSize results and evicts in insertion
// order. maxSize <= 0 keeps everything.
type inMemoryResults struct {
	mu       sync.Mutex
	results  map[string]model.UpdateResult
	oldest   *node
	newest   *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryResults creates an in-memory result cache.
func NewInMemoryResults(opts ...Option) Results {
	d := &inMemoryResults{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.results = make(map[string]model.UpdateResult)
	d.nodePool = sync.Pool{New: func() interface{} { return &node{} }}
	return d
}

func (d *inMemoryResults) Lookup(_ context.Context, id string) (model.UpdateResult, bool) {
	if id == "" {
		return model.UpdateResult{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	res, ok := d.results[id]
	if ok {
		res.Highlighted = append(model.Highlight{}, res.Highlighted...)
	}
	return res, ok
}

func (d *inMemoryResults) Record(_ context.Context, id string, res model.UpdateResult) {
	if id == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.results[id]; exists {
		return
	}
	if d.maxSize > 0 && len(d.results) >= d.maxSize {
		d.evictOldest()
	}

	res.Highlighted = append(model.Highlight{}, res.Highlighted...)
	d.results[id] = res

	n := d.nodePool.Get().(*node)
	n.id = id
	if d.newest == nil {
		d.oldest, d.newest = n, n
	} else {
		d.newest.next = n
		d.newest = n
	}
	d.size.Add(1)
}

// evictOldest drops the first recorded entry. Must be called with d.mu held.
func (d *inMemoryResults) evictOldest() {
	n := d.oldest
	if n == nil {
		return
	}
	d.oldest = n.next
	if d.oldest == nil {
		d.newest = nil
	}
	delete(d.results, n.id)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// Size returns the number of recorded results.
func (d *inMemoryResults) Size() int64 {
	return d.size.Load()
}
