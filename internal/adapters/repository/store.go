// Package repository defines the item registry interface and errors.
package repository

import (
	"context"

	"github.com/okian/itemstore/internal/domain/model"
	"github.com/okian/itemstore/internal/domain/types"
)

// Item is the record type held by the registry.
type Item = model.Item

// SearchResult is returned by Store.Search.
type SearchResult = types.SearchResult

// Store provides read/write access to the ordered item registry.
type Store interface {
	// Create appends item to the registry.
	// Returns ErrConflict if an item with the same id already exists.
	Create(ctx context.Context, item Item) (Item, error)

	// List returns every item in insertion order.
	List(ctx context.Context) []Item

	// Get returns the first item whose id matches.
	// Returns ErrNotFound if no item matches.
	Get(ctx context.Context, id int) (Item, error)

	// Search filters by a case-insensitive substring of the name when query is
	// non-empty and truncates to limit (clamped at zero) when limit is set.
	Search(ctx context.Context, query *string, limit *int) SearchResult

	// Update replaces the whole record stored under id with newItem.
	// newItem.ID is stored as given, even when it differs from id.
	// Returns ErrNotFound if no item matches.
	Update(ctx context.Context, id int, newItem Item) (Item, error)

	// Delete removes the item stored under id and returns it.
	// Returns ErrNotFound if no item matches.
	Delete(ctx context.Context, id int) (Item, error)

	// Count returns the number of items in the registry.
	Count(ctx context.Context) int
}
