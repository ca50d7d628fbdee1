package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

func (h *Handler) registerAdmin(r chi.Router) {
	r.Get("/inventory", h.listInventory)
	r.Put("/inventory", h.putInventory)
	r.Get("/pricing", h.getPricing)
	r.Put("/pricing", h.putPricing)

	r.Get("/sale_users", h.listSaleUsers)
	r.Post("/sale_users", h.createSaleUser)
	r.Put("/sale_users/{id}", h.updateSaleUser)
	r.Delete("/sale_users/{id}", h.deleteSaleUser)

	r.Get("/drivers", h.adminDrivers)
	r.Get("/bills", h.adminBills)
	r.Get("/revenue", h.revenue)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Store.ListInventory(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (h *Handler) putInventory(w http.ResponseWriter, r *http.Request) {
	var row sales.InventoryRow
	if !decodeJSON(w, r, &row) {
		return
	}
	row.Name = strings.TrimSpace(row.Name)
	if row.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	if row.LogoStock < 0 || row.CardStock < 0 || row.TShirtStock < 0 {
		writeError(w, http.StatusBadRequest, "stock must be non-negative")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	saved, err := h.Store.UpsertInventory(ctx, row)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) putPricing(w http.ResponseWriter, r *http.Request) {
	var p billing.PriceList
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Logo < 0 || p.Card < 0 || p.TShirt < 0 {
		writeError(w, http.StatusBadRequest, "prices must be non-negative")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	saved, err := h.Store.SavePricing(ctx, p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.Cache.InvalidatePricing(ctx)
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) listSaleUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	us, err := h.Store.ListSaleUsers(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(us))
}

func decodeSaleUser(w http.ResponseWriter, r *http.Request) (sales.SaleUser, bool) {
	var s sales.SaleUser
	if !decodeJSON(w, r, &s) {
		return s, false
	}
	s.Username = strings.TrimSpace(s.Username)
	s.FullName = strings.TrimSpace(s.FullName)
	s.Phone = strings.TrimSpace(s.Phone)
	if s.Username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return s, false
	}
	return s, true
}

func (h *Handler) createSaleUser(w http.ResponseWriter, r *http.Request) {
	s, ok := decodeSaleUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	created, err := h.Store.CreateSaleUser(ctx, s)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateSaleUser(w http.ResponseWriter, r *http.Request) {
	s, ok := decodeSaleUser(w, r)
	if !ok {
		return
	}
	s.ID = chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.Store.UpdateSaleUser(ctx, s)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteSaleUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.DeleteSaleUser(ctx, chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := h.Store.SearchDrivers(ctx, sales.DriverQuery{Any: strings.TrimSpace(r.URL.Query().Get("query"))})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds))
}

func (h *Handler) adminBills(w http.ResponseWriter, r *http.Request) {
	f, err := sales.ParseOrderFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeOrders(w, r, f)
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	f, err := sales.ParseOrderFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bills, err := h.Store.ListOrders(ctx, f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	prices, err := h.pricing(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billing.Aggregate(sales.Summaries(bills), prices))
}
