package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/itemstore/pkg/metrics"
)

// MemStore is the in-memory, slice-backed Store.
//
// Items are kept in insertion order and every lookup is a linear scan keyed by
// id. A single RWMutex serializes mutations so the existence check in Create
// and the append that follows are atomic.
type MemStore struct {
	mu    sync.RWMutex
	items []Item
	seed  []Item
}

// DefaultSeed returns the records the registry starts with when no seed is configured.
func DefaultSeed() []Item {
	return []Item{
		{ID: 1, Name: "Laptop", Price: 3000, Description: strPtr("Gaming laptop")},
		{ID: 2, Name: "Phone", Price: 2000, Description: strPtr("Smartphone")},
	}
}

func strPtr(s string) *string { return &s }

// NewMemStore constructs a registry and loads the configured seed records.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{}
	for _, opt := range opts {
		opt(s)
	}

	s.items = make([]Item, 0, len(s.seed))
	for _, it := range s.seed {
		if s.indexOf(it.ID) >= 0 {
			continue
		}
		s.items = append(s.items, it.Clone())
	}
	s.seed = nil

	metrics.UpdateRegistryItems(len(s.items))
	return s
}

// indexOf returns the position of the first item with id, or -1. Callers hold the lock.
func (s *MemStore) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Create implements Store.Create.
func (s *MemStore) Create(_ context.Context, item Item) (Item, error) {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	if s.indexOf(item.ID) >= 0 {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "conflict")
		return Item{}, ErrConflict
	}
	s.items = append(s.items, item.Clone())
	n := len(s.items)
	s.mu.Unlock()

	metrics.UpdateRegistryItems(n)
	return item.Clone(), nil
}

// List implements Store.List.
func (s *MemStore) List(_ context.Context) []Item {
	start := time.Now()
	defer observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Get implements Store.Get.
func (s *MemStore) Get(_ context.Context, id int) (Item, error) {
	start := time.Now()
	defer observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Item{}, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

// Search implements Store.Search.
//
// Count is taken after filtering and before the limit is applied.
func (s *MemStore) Search(_ context.Context, query *string, limit *int) SearchResult {
	start := time.Now()
	defer observeQuery(start)

	s.mu.RLock()
	results := cloneAll(s.items)
	s.mu.RUnlock()

	if query != nil && *query != "" {
		needle := strings.ToLower(*query)
		filtered := results[:0]
		for _, it := range results {
			if strings.Contains(strings.ToLower(it.Name), needle) {
				filtered = append(filtered, it)
			}
		}
		results = filtered
	}

	count := len(results)
	if limit != nil {
		n := max(0, *limit)
		if n < len(results) {
			results = results[:n]
		}
	}

	var q *string
	if query != nil {
		q = strPtr(*query)
	}
	return SearchResult{Query: q, Count: count, Results: results}
}

// Update implements Store.Update.
func (s *MemStore) Update(_ context.Context, id int, newItem Item) (Item, error) {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Item{}, ErrNotFound
	}
	s.items[i] = newItem.Clone()
	return newItem.Clone(), nil
}

// Delete implements Store.Delete.
func (s *MemStore) Delete(_ context.Context, id int) (Item, error) {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "not_found")
		return Item{}, ErrNotFound
	}
	deleted := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	n := len(s.items)
	s.mu.Unlock()

	metrics.UpdateRegistryItems(n)
	return deleted, nil
}

// Count implements Store.Count.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cloneAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(sinceMs(start))
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(sinceMs(start))
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
