// Package model contains domain models passed between layers.
package model

// Item is the single resource managed by the registry.
// Fields mirror the OpenAPI schema for /items.
type Item struct {
	ID          int     `json:"id"`          // caller-supplied, intended unique
	Name        string  `json:"name"`        // display name, searched case-insensitively
	Price       float64 `json:"price"`       // unit price
	Description *string `json:"description"` // optional; encoded as null when unset
}

// Clone returns a deep copy so callers never share the description pointer
// with the registry.
func (i Item) Clone() Item {
	if i.Description != nil {
		d := *i.Description
		i.Description = &d
	}
	return i
}

// StringPtr is a convenience for building items with a description.
func StringPtr(s string) *string { return &s }
