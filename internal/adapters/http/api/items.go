package api

import (
	"net/http"
	"strings"

	"github.com/okian/psychometrician/internal/adapters/repository"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
)

// ItemsHandler serves the item bank and generation endpoints.
type ItemsHandler struct {
	deps ItemDependencies
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps ItemDependencies) *ItemsHandler {
	return &ItemsHandler{deps: deps}
}

type itemsResponse struct {
	Summary repository.Summary `json:"summary"`
	Items   []model.Item       `json:"items"`
}

// HandleList handles GET /items.
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_items"
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	items, err := h.deps.Items(r.Context())
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	summary, err := h.deps.BankSummary(r.Context())
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Summary: summary, Items: items})
}

// HandleGenerate handles POST /items/generate. The body is optional; an
// empty body drafts an item for a random domain and difficulty.
func (h *ItemsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_item"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req generator.Request
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	status, err := h.deps.RequestGeneration(r.Context(), req)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	w.Header().Set("Location", "/items/generate/"+status.ID)
	writeJSON(w, http.StatusAccepted, status)
}

// HandleGenerationStatus handles GET /items/generate/{id}.
func (h *ItemsHandler) HandleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.generation_status"
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/items/generate/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}

	status, err := h.deps.GenerationStatus(r.Context(), id)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
