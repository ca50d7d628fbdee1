package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/htx-sale/internal/sales"
)

// catalogHandler serves one catalog kind: /logos or /cards.
type catalogHandler struct {
	h    *Handler
	kind sales.CatalogKind
}

func (h *Handler) registerCatalog(r chi.Router) {
	for path, kind := range map[string]sales.CatalogKind{"/logos": sales.CatalogLogo, "/cards": sales.CatalogCard} {
		c := catalogHandler{h: h, kind: kind}
		r.Route(path, func(r chi.Router) {
			r.Get("/", c.list)
			r.Post("/", c.create)
			r.Put("/{id}", c.update)
			r.Delete("/{id}", c.delete)
		})
	}
}

func (c catalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := c.h.Store.ListCatalog(ctx, c.kind)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (c catalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var in sales.CatalogItem
	if !decodeJSON(w, r, &in) {
		return
	}
	in.HTX = strings.TrimSpace(in.HTX)
	in.Name = strings.TrimSpace(in.Name)
	if in.HTX == "" || in.Name == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	in.Kind = c.kind
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	created, err := c.h.Store.CreateCatalogItem(ctx, in, c.h.now())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c catalogHandler) update(w http.ResponseWriter, r *http.Request) {
	var p sales.CatalogPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	updated, err := c.h.Store.UpdateCatalogItem(ctx, c.kind, chi.URLParam(r, "id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c catalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := c.h.Store.DeleteCatalogItem(ctx, c.kind, chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
