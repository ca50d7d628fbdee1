package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

// APIError carries the server's {"error": ...} message. Details is set on
// insufficient stock.
type APIError struct {
	Status  int
	Message string
	Details []billing.Shortage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

type API struct {
	BaseURL string
	HTTP    *http.Client
	Session *Session
}

func NewAPI(baseURL string, s *Session) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Session: s,
	}
}

func (a *API) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := a.BaseURL + "/api" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Session != nil && a.Session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Session.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error   string             `json:"error"`
			Details []billing.Shortage `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error, Details: e.Details}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func (a *API) Login(ctx context.Context, username, password string) (Session, error) {
	var s auth.Session
	err := a.do(ctx, http.MethodPost, "/login", nil, map[string]string{"username": username, "password": password}, &s)
	return FromAuth(s), err
}

func (a *API) LoginQR(ctx context.Context, token string) (Session, error) {
	var s auth.Session
	err := a.do(ctx, http.MethodPost, "/login/qr", nil, map[string]string{"token": token}, &s)
	return FromAuth(s), err
}

func (a *API) Cooperatives(ctx context.Context) ([]string, error) {
	var out []string
	err := a.do(ctx, http.MethodGet, "/htx_list", nil, nil, &out)
	return out, err
}

func (a *API) Inventory(ctx context.Context, htx string) (sales.InventoryRow, error) {
	var out sales.InventoryRow
	err := a.do(ctx, http.MethodGet, "/inventory/"+url.PathEscape(htx), nil, nil, &out)
	return out, err
}

func (a *API) Pricing(ctx context.Context) (billing.PriceList, error) {
	var out billing.PriceList
	err := a.do(ctx, http.MethodGet, "/pricing", nil, nil, &out)
	return out, err
}

// SearchDriver queries one field: "driver_name", "license_plate" or "phone".
func (a *API) SearchDriver(ctx context.Context, field, value string) ([]sales.Driver, error) {
	param := field
	if field == "driver_name" {
		param = "name"
	}
	var out []sales.Driver
	err := a.do(ctx, http.MethodGet, "/search_driver", url.Values{param: {value}}, nil, &out)
	return out, err
}

type UpBillResult struct {
	OrderID     string      `json:"id"`
	TotalAmount int         `json:"total_amount"`
	Idempotent  bool        `json:"idempotent"`
	Order       sales.Order `json:"order"`
}

func (a *API) UpBill(ctx context.Context, in sales.NewOrder) (UpBillResult, error) {
	var out UpBillResult
	err := a.do(ctx, http.MethodPost, "/up_bill", nil, in, &out)
	return out, err
}

func (a *API) Orders(ctx context.Context, f sales.OrderFilter) ([]sales.Order, error) {
	var out []sales.Order
	err := a.do(ctx, http.MethodGet, "/orders", f.Values(), nil, &out)
	return out, err
}

func (a *API) Order(ctx context.Context, id string) (sales.Order, error) {
	var out sales.Order
	err := a.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Admin endpoints.

func (a *API) AdminInventory(ctx context.Context) ([]sales.InventoryRow, error) {
	var out []sales.InventoryRow
	err := a.do(ctx, http.MethodGet, "/admin/inventory", nil, nil, &out)
	return out, err
}

func (a *API) PutInventory(ctx context.Context, row sales.InventoryRow) (sales.InventoryRow, error) {
	var out sales.InventoryRow
	err := a.do(ctx, http.MethodPut, "/admin/inventory", nil, row, &out)
	return out, err
}

func (a *API) PutPricing(ctx context.Context, p billing.PriceList) (billing.PriceList, error) {
	var out billing.PriceList
	err := a.do(ctx, http.MethodPut, "/admin/pricing", nil, p, &out)
	return out, err
}

func (a *API) SaleUsers(ctx context.Context) ([]sales.SaleUser, error) {
	var out []sales.SaleUser
	err := a.do(ctx, http.MethodGet, "/admin/sale_users", nil, nil, &out)
	return out, err
}

func (a *API) CreateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	var out sales.SaleUser
	err := a.do(ctx, http.MethodPost, "/admin/sale_users", nil, s, &out)
	return out, err
}

func (a *API) UpdateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	var out sales.SaleUser
	err := a.do(ctx, http.MethodPut, "/admin/sale_users/"+url.PathEscape(s.ID), nil, s, &out)
	return out, err
}

func (a *API) DeleteSaleUser(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/admin/sale_users/"+url.PathEscape(id), nil, nil, nil)
}

func (a *API) Drivers(ctx context.Context, query string) ([]sales.Driver, error) {
	var out []sales.Driver
	err := a.do(ctx, http.MethodGet, "/admin/drivers", url.Values{"query": {query}}, nil, &out)
	return out, err
}

func (a *API) Bills(ctx context.Context, f sales.OrderFilter) ([]sales.Order, error) {
	var out []sales.Order
	err := a.do(ctx, http.MethodGet, "/admin/bills", f.Values(), nil, &out)
	return out, err
}

func (a *API) Revenue(ctx context.Context, f sales.OrderFilter) (billing.Report, error) {
	var out billing.Report
	err := a.do(ctx, http.MethodGet, "/admin/revenue", f.Values(), nil, &out)
	return out, err
}

func catalogPath(kind sales.CatalogKind) string {
	if kind == sales.CatalogCard {
		return "/cards"
	}
	return "/logos"
}

func (a *API) Catalog(ctx context.Context, kind sales.CatalogKind) ([]sales.CatalogItem, error) {
	var out []sales.CatalogItem
	err := a.do(ctx, http.MethodGet, catalogPath(kind), nil, nil, &out)
	return out, err
}

func (a *API) CreateCatalogItem(ctx context.Context, c sales.CatalogItem) (sales.CatalogItem, error) {
	var out sales.CatalogItem
	err := a.do(ctx, http.MethodPost, catalogPath(c.Kind), nil, c, &out)
	return out, err
}

func (a *API) UpdateCatalogItem(ctx context.Context, kind sales.CatalogKind, id string, p sales.CatalogPatch) (sales.CatalogItem, error) {
	var out sales.CatalogItem
	err := a.do(ctx, http.MethodPut, catalogPath(kind)+"/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

func (a *API) DeleteCatalogItem(ctx context.Context, kind sales.CatalogKind, id string) error {
	return a.do(ctx, http.MethodDelete, catalogPath(kind)+"/"+url.PathEscape(id), nil, nil, nil)
}
