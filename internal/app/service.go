// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	repository "github.com/okian/itemstore/internal/adapters/repository"
	"github.com/okian/itemstore/internal/domain/model"
	"github.com/okian/itemstore/internal/domain/types"
	"github.com/okian/itemstore/pkg/logger"
	"github.com/okian/itemstore/pkg/metrics"
)

// ErrNotStarted is returned by item operations before Start or after Stop.
var ErrNotStarted = errors.New("service not started")

// Operation result labels recorded in metrics.
const (
	resultOK       = "ok"
	resultConflict = "conflict"
	resultNotFound = "not_found"
	resultError    = "error"
)

// Service owns the item registry and exposes it to the HTTP layer.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	seedItems []model.Item

	// State
	started bool

	// Operation counters reported by GetStats.
	creates atomic.Int64
	updates atomic.Int64
	deletes atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeedItems sets the records the registry is created with.
// A nil slice keeps the default seed; an empty slice starts the registry empty.
func WithSeedItems(items []model.Item) Option {
	return func(s *Service) {
		if items != nil {
			s.seedItems = items
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seedItems: repository.DefaultSeed(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the registry and loads the seed records.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting item service...")

	s.store = repository.NewMemStore(ctx, repository.WithSeed(s.seedItems))

	s.started = true
	s.logger.Info(ctx, "item service started",
		logger.Int("seedItems", len(s.seedItems)),
		logger.Int("items", s.store.Count(ctx)),
	)

	return nil
}

// Stop discards the registry. Nothing is persisted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping item service...",
		logger.Int("items", s.store.Count(context.Background())),
	)
	s.store = nil
	s.started = false
	metrics.UpdateRegistryItems(0)
	s.logger.Info(context.Background(), "item service stopped")
}

// registry returns the live store or ErrNotStarted.
func (s *Service) registry() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Create adds item to the registry. Returns repository.ErrConflict on a duplicate id.
func (s *Service) Create(ctx context.Context, item model.Item) (model.Item, error) {
	store, err := s.registry()
	if err != nil {
		return model.Item{}, err
	}

	created, err := store.Create(ctx, item)
	if err != nil {
		s.record(ctx, "create", err, logger.Int("id", item.ID))
		return model.Item{}, err
	}
	s.creates.Add(1)
	s.record(ctx, "create", nil, logger.Int("id", created.ID), logger.String("name", created.Name))
	return created, nil
}

// List returns every item in insertion order.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	store, err := s.registry()
	if err != nil {
		return nil, err
	}
	items := store.List(ctx)
	metrics.RecordRegistryOperation("list", resultOK)
	return items, nil
}

// Get returns the item stored under id. Returns repository.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, id int) (model.Item, error) {
	store, err := s.registry()
	if err != nil {
		return model.Item{}, err
	}
	item, err := store.Get(ctx, id)
	s.record(ctx, "get", err, logger.Int("id", id))
	return item, err
}

// Search filters items by name and truncates to limit.
func (s *Service) Search(ctx context.Context, query *string, limit *int) (types.SearchResult, error) {
	store, err := s.registry()
	if err != nil {
		return types.SearchResult{}, err
	}
	res := store.Search(ctx, query, limit)
	metrics.RecordRegistryOperation("search", resultOK)
	metrics.RecordSearchResults(res.Count)
	return res, nil
}

// Update replaces the item stored under id with newItem.
// Returns repository.ErrNotFound when absent.
func (s *Service) Update(ctx context.Context, id int, newItem model.Item) (model.Item, error) {
	store, err := s.registry()
	if err != nil {
		return model.Item{}, err
	}
	updated, err := store.Update(ctx, id, newItem)
	if err == nil {
		s.updates.Add(1)
		if newItem.ID != id {
			s.logger.Debug(ctx, "item id changed by update",
				logger.Int("pathID", id),
				logger.Int("newID", newItem.ID),
			)
		}
	}
	s.record(ctx, "update", err, logger.Int("id", id))
	return updated, err
}

// Delete removes the item stored under id and returns it wrapped for the API.
// Returns repository.ErrNotFound when absent.
func (s *Service) Delete(ctx context.Context, id int) (types.DeleteResult, error) {
	store, err := s.registry()
	if err != nil {
		return types.DeleteResult{}, err
	}
	deleted, err := store.Delete(ctx, id)
	if err != nil {
		s.record(ctx, "delete", err, logger.Int("id", id))
		return types.DeleteResult{}, err
	}
	s.deletes.Add(1)
	s.record(ctx, "delete", nil, logger.Int("id", id))
	return types.DeleteResult{Deleted: deleted}, nil
}

// record logs an operation outcome and counts it in metrics.
func (s *Service) record(ctx context.Context, op string, err error, fields ...logger.Field) {
	result := resultOK
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrConflict):
		result = resultConflict
	case errors.Is(err, repository.ErrNotFound):
		result = resultNotFound
	default:
		result = resultError
	}
	metrics.RecordRegistryOperation(op, result)

	fields = append(fields, logger.String("op", op), logger.String("result", result))
	if result == resultError {
		s.logger.Error(ctx, "item operation failed", append(fields, logger.Error(err))...)
		return
	}
	s.logger.Debug(ctx, "item operation", fields...)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"seedItems": len(s.seedItems),
		"creates":   s.creates.Load(),
		"updates":   s.updates.Load(),
		"deletes":   s.deletes.Load(),
	}

	if s.started {
		count := s.store.Count(context.Background())
		stats["items"] = count
		metrics.UpdateRegistryItems(count)
	}

	return stats
}
