package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/metrics"
)

// MemoryStore keeps the item bank in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items []model.Item
	byID  map[int]int // id -> index in items
	maxID int
}

// NewMemoryStore creates a store seeded with items. Items must be valid and
// their ids unique.
func NewMemoryStore(items ...model.Item) (*MemoryStore, error) {
	s := &MemoryStore{byID: make(map[int]int, len(items))}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, wrapInvalid(err)
		}
		if _, exists := s.byID[item.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		s.put(item)
	}
	s.publish()
	return s, nil
}

func (s *MemoryStore) put(item model.Item) {
	if len(s.items) == 0 || item.ID > s.maxID {
		s.maxID = item.ID
	}
	s.byID[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// publish exports the bank gauges. Must be called with s.mu held or before
// the store is shared.
func (s *MemoryStore) publish() {
	summary := summarize(s.items)
	metrics.UpdateBankSize(summary.Total)
	for domain, n := range summary.Domains {
		metrics.UpdateBankDomainSize(domain, n)
	}
}

// All returns a copy of every item in insertion order.
func (s *MemoryStore) All(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Item(nil), s.items...), nil
}

// Get returns the item with id.
func (s *MemoryStore) Get(ctx context.Context, id int) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	return s.items[i], nil
}

// Append assigns the next id to item and stores it.
func (s *MemoryStore) Append(ctx context.Context, item model.Item) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	if err := validateAppend(item); err != nil {
		return model.Item{}, err
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = 1
	if len(s.items) > 0 {
		item.ID = s.maxID + 1
	}
	s.put(item)
	s.publish()

	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	return item, nil
}

// Count returns the number of items.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Summary returns the total and per-domain item counts.
func (s *MemoryStore) Summary(ctx context.Context) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summarize(s.items), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
