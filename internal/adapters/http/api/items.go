package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ItemsHandler serves the /items resource.
type ItemsHandler struct {
	deps     Dependencies
	validate *validator.Validate
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps Dependencies) *ItemsHandler {
	return &ItemsHandler{deps: deps, validate: newValidator()}
}

// HandleCreate handles POST /items/.
func (h *ItemsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	item, err := decodeItem(r, h.validate)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	created, err := h.deps.Create(r.Context(), item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /items/.
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleSearch handles GET /items/search?q=&limit=.
func (h *ItemsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var query *string
	if values.Has("q") {
		q := values.Get("q")
		query = &q
	}

	var limit *int
	if values.Has("limit") {
		n, err := parseInt("limit", values.Get("limit"))
		if err != nil {
			writeRequestError(w, err)
			return
		}
		limit = &n
	}

	res, err := h.deps.Search(r.Context(), query, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGet handles GET /items/{item_id}.
func (h *ItemsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	item, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleUpdate handles PUT /items/{item_id}. The body id is stored as sent.
func (h *ItemsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	item, err := decodeItem(r, h.validate)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	updated, err := h.deps.Update(r.Context(), id, item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /items/{item_id}.
func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	res, err := h.deps.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// itemID parses the item_id path parameter, writing a 422 when it is not an integer.
func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := parseInt("item_id", chi.URLParam(r, "item_id"))
	if err != nil {
		writeRequestError(w, err)
		return 0, false
	}
	return id, true
}
