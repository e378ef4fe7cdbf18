// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	repository "github.com/okian/itemstore/internal/adapters/repository"
	"github.com/okian/itemstore/internal/domain/model"
	"github.com/okian/itemstore/internal/domain/types"
	"github.com/okian/itemstore/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Create(ctx context.Context, item model.Item) (model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id int) (model.Item, error)
	Search(ctx context.Context, query *string, limit *int) (types.SearchResult, error)
	Update(ctx context.Context, id int, item model.Item) (model.Item, error)
	Delete(ctx context.Context, id int) (types.DeleteResult, error)
}

// Error codes carried in the "code" field of error bodies.
const (
	codeConflict   = "conflict"
	codeNotFound   = "not_found"
	codeValidation = "validation_error"
	codeTooLarge   = "payload_too_large"
	codeInternal   = "internal_error"
)

// Client-facing error details.
const (
	detailConflict = "Item with this id already exists"
	detailNotFound = "Item not found"
	welcomeMessage = "Welcome to the item store"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	itemsHandler  *ItemsHandler

	maxBodyBytes int64
	logger       logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for access logs and recovered panics.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		itemsHandler:  NewItemsHandler(deps),
		maxBodyBytes:  defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches middleware and all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(RequestID, AccessLog(s.logger), Recoverer(s.logger), BodyLimit(s.maxBodyBytes))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/", MetricsMiddleware(handleRoot, "root"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	h := s.itemsHandler
	for _, base := range []string{"/items", "/items/"} {
		r.Post(base, MetricsMiddleware(h.HandleCreate, "items"))
		r.Get(base, MetricsMiddleware(h.HandleList, "items"))
	}
	// Static segment wins over the item_id parameter in chi's tree.
	r.Get("/items/search", MetricsMiddleware(h.HandleSearch, "items_search"))
	r.Get("/items/{item_id}", MetricsMiddleware(h.HandleGet, "item"))
	r.Put("/items/{item_id}", MetricsMiddleware(h.HandleUpdate, "item"))
	r.Delete("/items/{item_id}", MetricsMiddleware(h.HandleDelete, "item"))
}

// Router returns a chi router with every route registered.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code   string       `json:"code"`
	Detail string       `json:"detail"`
	Errors []fieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Detail: msg})
}

func writeValidation(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Code:   codeValidation,
		Detail: summarize(errs),
		Errors: errs,
	})
}

// writeStoreError maps registry errors to their HTTP form.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusBadRequest, codeConflict, errors.New(detailConflict))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, errors.New(detailNotFound))
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, nil)
	}
}

// writeRequestError maps decode and validation failures to their HTTP form.
func writeRequestError(w http.ResponseWriter, err error) {
	var invalid *validationError
	switch {
	case errors.As(err, &invalid):
		writeValidation(w, invalid.fields)
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, ErrTooLarge)
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, nil)
	}
}
