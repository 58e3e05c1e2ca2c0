// Package web serves the HTML pages for browsing and editing the catalog.
package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"medialib/internal/catalog"
)

type Handler struct {
	svc  *catalog.Service
	tmpl *Templates
	log  *zap.Logger
}

func NewHandler(svc *catalog.Service, tmpl *Templates, log *zap.Logger) *Handler {
	return &Handler{svc: svc, tmpl: tmpl, log: log}
}

type page struct {
	Kinds  []catalog.Kind
	Kind   catalog.Kind
	Items  []catalog.Item
	Query  url.Values
	Form   map[string]string
	Errors map[string]string
}

// Columns is the width of the item table.
func (p page) Columns() int {
	return len(p.Kind.Fields) + 3
}

// ListURL is the kind's list path with the active filters.
func (p page) ListURL() string {
	return listURL(p.Kind, p.Query)
}

func listURL(k catalog.Kind, q url.Values) string {
	if len(q) == 0 {
		return k.Path()
	}
	return k.Path() + "?" + q.Encode()
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.Handle("GET /static/", StaticHandler())

	for _, k := range catalog.Kinds() {
		mux.HandleFunc("GET "+k.Path(), h.list(k))
		mux.HandleFunc("POST "+k.Path(), h.create(k))
		mux.HandleFunc("GET /delete_"+k.Name+"/{id}", h.delete(k))
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", page{Kinds: catalog.Kinds()})
}

func (h *Handler) list(k catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := h.svc.List(r.Context(), k, catalog.ParseFilter(k, q))
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "list", page{Kinds: catalog.Kinds(), Kind: k, Items: items, Query: q})
	}
}

func (h *Handler) create(k catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		in := catalog.Input{Fields: make(map[string]string, len(k.Fields)), Year: r.PostForm.Get("year")}
		for _, f := range k.Fields {
			in.Fields[f.Name] = r.PostForm.Get(f.Name)
		}

		// filters ride along in the form action's query string
		q := r.URL.Query()
		_, err := h.svc.Create(r.Context(), k, in)
		var verr *catalog.ValidationError
		switch {
		case err == nil:
			http.Redirect(w, r, listURL(k, q), http.StatusSeeOther)
		case errors.As(err, &verr):
			items, err := h.svc.List(r.Context(), k, catalog.ParseFilter(k, q))
			if err != nil {
				h.serverError(w, r, err)
				return
			}
			form := make(map[string]string, len(in.Fields)+1)
			for name, v := range in.Fields {
				form[name] = v
			}
			form["year"] = in.Year
			h.render(w, r, http.StatusUnprocessableEntity, "list", page{
				Kinds:  catalog.Kinds(),
				Kind:   k,
				Items:  items,
				Query:  q,
				Form:   form,
				Errors: verr.Fields(),
			})
		default:
			h.serverError(w, r, err)
		}
	}
}

func (h *Handler) delete(k catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}

		if err := h.svc.Delete(r.Context(), k, id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			h.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, k.Path(), http.StatusFound)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	if err := h.tmpl.Render(w, status, name, data); err != nil {
		h.serverError(w, r, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("web request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
