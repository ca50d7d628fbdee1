package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/billing"
	kafkax "github.com/ariefcatur/htx-sale/internal/kafka"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type UpBillResp struct {
	OrderID     string      `json:"id"`
	TotalAmount int         `json:"total_amount"`
	Idempotent  bool        `json:"idempotent"`
	Order       sales.Order `json:"order"`
}

func (h *Handler) registerSales(r chi.Router) {
	r.Get("/htx_list", h.listHTX)
	r.Get("/inventory/{htx}", h.getInventory)
	r.Get("/pricing", h.getPricing)
	r.Get("/search_driver", h.searchDriver)
	r.Post("/up_bill", h.upBill)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *Handler) listHTX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names, err := h.Store.ListCooperatives(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	htx := strings.TrimSpace(chi.URLParam(r, "htx"))
	if htx == "" {
		writeError(w, http.StatusBadRequest, "missing htx")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	row, err := h.Store.GetInventory(ctx, htx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) getPricing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.pricing(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) searchDriver(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dq := sales.DriverQuery{
		Name:         strings.TrimSpace(q.Get("name")),
		LicensePlate: strings.TrimSpace(q.Get("license_plate")),
		Phone:        strings.TrimSpace(q.Get("phone")),
	}
	if dq == (sales.DriverQuery{}) {
		writeJSON(w, http.StatusOK, []sales.Driver{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := h.Store.SearchDrivers(ctx, dq)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds))
}

func (h *Handler) upBill(w http.ResponseWriter, r *http.Request) {
	var in sales.NewOrder
	if !decodeJSON(w, r, &in) {
		return
	}
	in.HTX = strings.TrimSpace(in.HTX)
	if in.HTX == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = string(billing.PaymentTransfer)
	}
	if in.Method == "" {
		in.Method = billing.DeliveryPickup
	}
	if !in.Method.Valid() {
		writeError(w, http.StatusBadRequest, "invalid delivery_method")
		return
	}
	if !in.Method.NeedsAddress() {
		in.Address = ""
	}
	if err := in.Validate(); err != nil {
		writeErr(w, r, err)
		return
	}
	if c, ok := auth.FromContext(r.Context()); ok && (!c.IsAdmin() || in.SaleUsername == "") {
		in.SaleUsername = c.Username
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Fast path; the orders.draft_id unique column stays the source of truth.
	if in.DraftID != "" {
		if id, ok := h.Cache.OrderForDraft(ctx, in.DraftID); ok {
			if o, err := h.Store.GetOrder(ctx, id); err == nil {
				writeJSON(w, http.StatusOK, UpBillResp{OrderID: o.ID, TotalAmount: o.TotalAmount, Idempotent: true, Order: o})
				return
			}
		}
	}

	o, existed, err := h.Store.CreateOrderTx(ctx, in, h.now())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if in.DraftID != "" {
		h.Cache.RememberDraft(ctx, in.DraftID, o.ID)
	}
	h.Cache.SetOrder(ctx, o)

	if existed {
		writeJSON(w, http.StatusOK, UpBillResp{OrderID: o.ID, TotalAmount: o.TotalAmount, Idempotent: true, Order: o})
		return
	}
	h.publishBillCreated(r, o)
	logger.Info("bill created", "order_id", o.ID, "htx", o.HTX, "sale", o.SaleUsername, "total", o.TotalAmount)
	writeJSON(w, http.StatusCreated, UpBillResp{OrderID: o.ID, TotalAmount: o.TotalAmount, Order: o})
}

func (h *Handler) publishBillCreated(r *http.Request, o sales.Order) {
	if h.Publisher == nil {
		return
	}
	ev := sales.Envelope{
		EventID:       uuid.NewString(),
		EventType:     sales.EventBillCreated,
		EventVersion:  1,
		OccurredAt:    h.now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(sales.BillCreatedFrom(o)),
	}
	h.Publisher.Publish(sales.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(sales.EventBillCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	f, err := sales.ParseOrderFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c, ok := auth.FromContext(r.Context()); ok && !c.IsAdmin() {
		f.SaleUsername = c.Username
	}
	h.writeOrders(w, r, f)
}

func (h *Handler) writeOrders(w http.ResponseWriter, r *http.Request, f sales.OrderFilter) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ListOrders(ctx, f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if o, ok := h.Cache.Order(ctx, id); ok {
		writeJSON(w, http.StatusOK, o)
		return
	}
	o, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.Cache.SetOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
