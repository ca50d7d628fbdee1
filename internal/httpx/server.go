package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Mount wires every /api route onto r.
func Mount(r chi.Router, d Deps) {
	h := &Handler{
		Store:     d.Store,
		Cache:     d.Cache,
		Publisher: d.Publisher,
		Auth:      d.Auth,
		Service:   d.Service,
		now:       d.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/login/qr", h.loginQR)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(d.Auth))
			h.registerSales(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				h.registerCatalog(r)
				r.Route("/admin", h.registerAdmin)
			})
		})
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var stock *sales.StockError
	switch {
	case errors.As(err, &stock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   stock.Error(),
			"htx":     stock.HTX,
			"details": stock.Details,
		})
	case errors.Is(err, sales.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, sales.ErrUnknownHTX),
		errors.Is(err, billing.ErrMissingDriver),
		errors.Is(err, billing.ErrEmptySelection),
		errors.Is(err, billing.ErrNegativeQty),
		errors.Is(err, billing.ErrMissingAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sales.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
