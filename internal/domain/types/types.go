// Package types contains common response types used across the application
package types

import "github.com/okian/itemstore/internal/domain/model"

// SearchResult is the response shape of GET /items/search.
type SearchResult struct {
	Query   *string      `json:"query"`
	Count   int          `json:"count"`
	Results []model.Item `json:"results"`
}

// DeleteResult wraps the record removed by DELETE /items/{item_id}.
type DeleteResult struct {
	Deleted model.Item `json:"deleted"`
}

// Message is a plain informational response.
type Message struct {
	Message string `json:"message"`
}
