package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"medialib/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Register mounts the JSON API under /api/v1.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/{kind}", h.List)
	mux.HandleFunc("POST /api/v1/{kind}", h.Create)
	mux.HandleFunc("GET /api/v1/{kind}/{id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/{kind}/{id}", h.Delete)
}

func (h *HTTPHandler) kind(w http.ResponseWriter, r *http.Request) (Kind, bool) {
	k, err := LookupKind(r.PathValue("kind"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Unknown kind", nil)
		return Kind{}, false
	}
	return k, true
}

func (h *HTTPHandler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
		return 0, false
	}
	return id, true
}

// List handles GET /api/v1/{kind}
// @Summary List catalog items
// @Description List items of a kind in rank order
// @Tags catalog
// @Produce json
// @Param kind path string true "books, magazines or films"
// @Param title query string false "Title substring"
// @Param year query int false "Exact year"
// @Param search query string false "Free-text term"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/v1/{kind} [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), k, ParseFilter(k, r.URL.Query()))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}

// Create handles POST /api/v1/{kind}
// @Summary Create a catalog item
// @Description The new item is ranked after every existing item of its kind
// @Tags catalog
// @Accept json
// @Produce json
// @Param kind path string true "books, magazines or films"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /api/v1/{kind} [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	in := Input{Fields: make(map[string]string, len(k.Fields)), Year: stringValue(body["year"])}
	for _, f := range k.Fields {
		in.Fields[f.Name] = stringValue(body[f.Name])
	}

	item, err := h.svc.Create(r.Context(), k, in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			details := make([]httpx.ErrorDetail, len(verr.Errors))
			for i, fe := range verr.Errors {
				details[i] = httpx.ErrorDetail{Field: fe.Field, Message: fe.Message}
			}
			httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid item", details)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, item)
}

// Get handles GET /api/v1/{kind}/{id}
// @Summary Get a catalog item
// @Tags catalog
// @Produce json
// @Param kind path string true "books, magazines or films"
// @Param id path int true "Item id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/v1/{kind}/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), k, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, item, nil)
}

// Delete handles DELETE /api/v1/{kind}/{id}
// @Summary Delete a catalog item
// @Description Remaining items of the kind are re-ranked without gaps
// @Tags catalog
// @Param kind path string true "books, magazines or films"
// @Param id path int true "Item id"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/v1/{kind}/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), k, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
