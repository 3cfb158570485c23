package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/service"
)

// TodoHandler serves the todo JSON API:
//
//	GET   /api/{ownerID}/lists
//	POST  /api/{ownerID}/lists
//	GET   /api/{ownerID}/lists/{slug}
//	PATCH /api/{ownerID}/lists/{slug}
//	GET   /api/{ownerID}/lists/{slug}/items
//	POST  /api/{ownerID}/lists/{slug}/items
//	GET   /api/{ownerID}/lists/{slug}/items/{itemID}
//	PATCH /api/{ownerID}/lists/{slug}/items/{itemID}
//
// The caller's identity comes from auth.OptionalAuth; anonymous requests
// see public lists only.
type TodoHandler struct {
	todos  *service.TodoService
	logger *slog.Logger
}

func NewTodoHandler(todos *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

func listPath(ownerID int64, slug string) string {
	return fmt.Sprintf("/api/%d/lists/%s", ownerID, slug)
}

func itemPath(ownerID int64, slug string, itemID int64) string {
	return fmt.Sprintf("%s/items/%d", listPath(ownerID, slug), itemID)
}

func (h *TodoHandler) HandleLists(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}

	lists, err := h.todos.Lists(r.Context(), auth.IdentityFromContext(r.Context()), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// HandleCreateList responds 201 with the new list and its URL in the
// Location header.
func (h *TodoHandler) HandleCreateList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.todos.CreateList(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, values)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", listPath(list.OwnerID, list.Slug))
	writeJSON(w, http.StatusCreated, list)
}

func (h *TodoHandler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.todos.GetList(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TodoHandler) HandlePatchList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.todos.PatchList(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, chi.URLParam(r, "slug"), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TodoHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.todos.Items(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TodoHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	item, err := h.todos.CreateItem(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, slug, values)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", itemPath(ownerID, slug, item.ID))
	writeJSON(w, http.StatusCreated, item)
}

func (h *TodoHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}
	itemID, err := idParam(r, "itemID", "item")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.todos.GetItem(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, chi.URLParam(r, "slug"), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *TodoHandler) HandlePatchItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := idParam(r, "ownerID", "user")
	if err != nil {
		writeError(w, err)
		return
	}
	itemID, err := idParam(r, "itemID", "item")
	if err != nil {
		writeError(w, err)
		return
	}
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.todos.PatchItem(r.Context(), auth.IdentityFromContext(r.Context()), ownerID, chi.URLParam(r, "slug"), itemID, values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
