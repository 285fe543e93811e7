// Package dedupe remembers answered response tickets so that a resubmitted
// answer is acknowledged instead of being scored twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 1024

// Deduper records seen ticket IDs to ensure at-most-once scoring.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Seen reports whether id was recorded without recording it.
	Seen(ctx context.Context, id string) bool

	// Unrecord forgets id so the response can be submitted again. Used when
	// the ticket was recorded but the controller rejected the answer.
	Unrecord(ctx context.Context, id string)

	// Reset forgets every ticket; called when a new session starts.
	Reset(ctx context.Context)

	Size() int64
}

type slot struct {
	id   string
	used bool
}

// ringDeduper keeps at most maxSize ticket IDs and evicts the oldest first.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> slot in ring
	ring    []slot
	next    int // slot the next id is written to
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int, d.maxSize)
	d.ring = make([]slot, d.maxSize)

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	// Slot is occupied once the ring has wrapped; evict its id.
	if old := d.ring[d.next]; old.used {
		delete(d.seen, old.id)
		d.size.Add(-1)
	}

	d.ring[d.next] = slot{id: id, used: true}
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.maxSize
	d.size.Add(1)
	return false
}

// Seen reports whether id is currently recorded.
func (d *ringDeduper) Seen(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, exists := d.seen[id]
	return exists
}

// Unrecord removes id from the seen set.
func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.ring[i] = slot{}
	d.size.Add(-1)
}

// Reset clears every recorded id.
func (d *ringDeduper) Reset(_ context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	clear(d.seen)
	clear(d.ring)
	d.next = 0
	d.size.Store(0)
}

// Size returns the current number of entries in the deduper.
func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
