package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type fakeAPI struct {
	coops     []string
	inventory map[string]sales.InventoryRow
	prices    billing.PriceList
	drivers   []sales.Driver
	orders    map[string]sales.Order
	saleUsers []sales.SaleUser
	bills     []sales.Order

	catalog   []sales.CatalogItem

	searches  []string
	submitted []sales.NewOrder
	upBillErr error
	putRows   []sales.InventoryRow
	filters   []sales.OrderFilter
}

func (f *fakeAPI) Cooperatives(context.Context) ([]string, error) { return f.coops, nil }

func (f *fakeAPI) Inventory(_ context.Context, htx string) (sales.InventoryRow, error) {
	row, ok := f.inventory[htx]
	if !ok {
		return row, &APIError{Status: http.StatusBadRequest, Message: "unknown htx"}
	}
	return row, nil
}

func (f *fakeAPI) Pricing(context.Context) (billing.PriceList, error) { return f.prices, nil }

func (f *fakeAPI) SearchDriver(_ context.Context, field, value string) ([]sales.Driver, error) {
	f.searches = append(f.searches, field+"="+value)
	return f.drivers, nil
}

func (f *fakeAPI) UpBill(_ context.Context, in sales.NewOrder) (UpBillResult, error) {
	f.submitted = append(f.submitted, in)
	if f.upBillErr != nil {
		return UpBillResult{}, f.upBillErr
	}
	o := in.DraftOrder(f.prices, time.Now())
	o.ID = "B-" + in.HTX + "-1"
	return UpBillResult{OrderID: o.ID, TotalAmount: o.TotalAmount, Order: o}, nil
}

func (f *fakeAPI) Order(_ context.Context, id string) (sales.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return o, &APIError{Status: http.StatusNotFound, Message: "not found"}
	}
	return o, nil
}

func (f *fakeAPI) AdminInventory(context.Context) ([]sales.InventoryRow, error) {
	var out []sales.InventoryRow
	for _, r := range f.inventory {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAPI) PutInventory(_ context.Context, row sales.InventoryRow) (sales.InventoryRow, error) {
	f.putRows = append(f.putRows, row)
	f.inventory[row.Name] = row
	return row, nil
}

func (f *fakeAPI) PutPricing(_ context.Context, p billing.PriceList) (billing.PriceList, error) {
	f.prices = p
	return p, nil
}

func (f *fakeAPI) SaleUsers(context.Context) ([]sales.SaleUser, error) { return f.saleUsers, nil }

func (f *fakeAPI) CreateSaleUser(_ context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	s.ID = "su-1"
	f.saleUsers = append(f.saleUsers, s)
	return s, nil
}

func (f *fakeAPI) UpdateSaleUser(_ context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	return s, nil
}

func (f *fakeAPI) DeleteSaleUser(context.Context, string) error { return nil }

func (f *fakeAPI) Drivers(context.Context, string) ([]sales.Driver, error) { return f.drivers, nil }

func (f *fakeAPI) Bills(context.Context, sales.OrderFilter) ([]sales.Order, error) { return f.bills, nil }

func (f *fakeAPI) Orders(_ context.Context, flt sales.OrderFilter) ([]sales.Order, error) {
	f.filters = append(f.filters, flt)
	var out []sales.Order
	for _, o := range f.bills {
		if flt.SaleUsername == "" || o.SaleUsername == flt.SaleUsername {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeAPI) Catalog(_ context.Context, kind sales.CatalogKind) ([]sales.CatalogItem, error) {
	var out []sales.CatalogItem
	for _, c := range f.catalog {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateCatalogItem(_ context.Context, c sales.CatalogItem) (sales.CatalogItem, error) {
	c.ID = fmt.Sprintf("L%d", len(f.catalog)+1)
	f.catalog = append(f.catalog, c)
	return c, nil
}

func (f *fakeAPI) UpdateCatalogItem(_ context.Context, _ sales.CatalogKind, id string, p sales.CatalogPatch) (sales.CatalogItem, error) {
	for i, c := range f.catalog {
		if c.ID != id {
			continue
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Quantity != nil {
			c.Quantity = *p.Quantity
		}
		if p.ImageURL != nil {
			c.ImageURL = *p.ImageURL
		}
		f.catalog[i] = c
		return c, nil
	}
	return sales.CatalogItem{}, &APIError{Status: http.StatusNotFound, Message: "not found"}
}

func (f *fakeAPI) DeleteCatalogItem(_ context.Context, _ sales.CatalogKind, id string) error {
	for i, c := range f.catalog {
		if c.ID == id {
			f.catalog = append(f.catalog[:i], f.catalog[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Message: "not found"}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		coops: []string{"MINH VY", "THANH VY"},
		inventory: map[string]sales.InventoryRow{
			"MINH VY":  {Name: "MINH VY", LogoStock: 5, CardStock: 5, TShirtStock: 5},
			"THANH VY": {Name: "THANH VY", LogoStock: 1, CardStock: 0, TShirtStock: 2},
		},
		prices: billing.DefaultPrices(),
		orders: map[string]sales.Order{},
	}
}

func newTestDashboard(t *testing.T, api *fakeAPI) *Dashboard {
	t.Helper()
	d := NewDashboard(api, Session{Token: "t", Username: "lan", Role: sales.RoleUser}, filepath.Join(t.TempDir(), "draft.json"))
	d.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	d.suffix = func() string { return "AB12" }
	require.NoError(t, d.Load(context.Background()))
	return d
}

func fillDriver(d *Dashboard) {
	d.Driver = billing.DriverFields{Name: "Tuan", LicensePlate: "51A-12345", Phone: "0901"}
}

func TestSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	want := Session{Token: "tok", Username: "admin", Role: sales.RoleAdmin}
	require.NoError(t, want.Save(path))
	got, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.IsAdmin())

	require.NoError(t, Clear(path))
	require.NoError(t, Clear(path))
	got, err = LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}

func TestLoadDraft_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDraft(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNoDraft)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0o600))
	_, err = LoadDraft(bad)
	assert.ErrorIs(t, err, ErrDraftMalformed)
	assert.True(t, IsDraftMissing(err))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"order":{}}`), 0o600))
	_, err = LoadDraft(empty)
	assert.ErrorIs(t, err, ErrDraftMalformed)
}

func TestDashboard_SwitchResetsAndClamps(t *testing.T) {
	api := newFakeAPI()
	d := newTestDashboard(t, api)
	assert.Equal(t, "MINH VY", d.HTX)

	for range 4 {
		d.Adjust(billing.Logo, +1)
	}
	d.Adjust(billing.Card, +1)
	assert.Equal(t, billing.Selection{Logo: 4, Card: 1}, d.Selection)
	assert.Equal(t, 1, d.Remaining(billing.Logo))
	assert.Equal(t, 250000, d.Total())

	require.NoError(t, d.SelectCooperative(context.Background(), "THANH VY"))
	assert.Equal(t, billing.Selection{}, d.Selection)
	assert.Equal(t, billing.Stock{Logo: 1, TShirt: 2}, d.Stock)

	d.Adjust(billing.Card, +1)
	assert.Zero(t, d.Selection.Card)

	// stock shrinking under the selection clamps it
	d.Adjust(billing.TShirt, +1)
	d.Adjust(billing.TShirt, +1)
	api.inventory["THANH VY"] = sales.InventoryRow{Name: "THANH VY", TShirtStock: 1}
	require.NoError(t, d.RefreshStock(context.Background()))
	assert.Equal(t, 1, d.Selection.TShirt)
}

func TestDashboard_Toggles(t *testing.T) {
	d := newTestDashboard(t, newFakeAPI())
	assert.Equal(t, billing.PaymentTransfer, d.Payment)
	d.TogglePayment()
	assert.Equal(t, billing.PaymentCash, d.Payment)

	d.ToggleDelivery()
	d.Delivery.Address = "12 Le Loi"
	d.ToggleDelivery()
	assert.Equal(t, billing.Delivery{Method: billing.DeliveryPickup}, d.Delivery)
}

func TestDashboard_DriverAutofill(t *testing.T) {
	api := newFakeAPI()
	api.drivers = []sales.Driver{{Name: "Tuan", LicensePlate: "51A-12345", Phone: "0901"}}
	d := newTestDashboard(t, api)

	require.NoError(t, d.SetDriverField(context.Background(), "phone", "090"))
	assert.Empty(t, api.searches)

	d.Driver.Name = "Tuấn Nguyễn"
	require.NoError(t, d.SetDriverField(context.Background(), "license_plate", "51A-1"))
	assert.Equal(t, []string{"license_plate=51A-1"}, api.searches)
	assert.Equal(t, billing.DriverFields{Name: "Tuấn Nguyễn", LicensePlate: "51A-1", Phone: "090"}, d.Driver)

	d.Driver.Phone = ""
	require.NoError(t, d.SetDriverField(context.Background(), "license_plate", "51A-12"))
	assert.Equal(t, "0901", d.Driver.Phone)

	assert.Error(t, d.SetDriverField(context.Background(), "email", "x"))
}

func TestDashboard_SaveOrderGate(t *testing.T) {
	api := newFakeAPI()
	d := newTestDashboard(t, api)

	_, err := d.SaveOrder(context.Background())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, billing.ErrMissingDriver)

	fillDriver(d)
	_, err = d.SaveOrder(context.Background())
	assert.ErrorIs(t, err, billing.ErrEmptySelection)

	d.Adjust(billing.Logo, +1)
	d.ToggleDelivery()
	_, err = d.ExportDraft()
	assert.ErrorIs(t, err, billing.ErrMissingAddress)

	assert.Empty(t, api.submitted)
}

func TestDashboard_SaveOrder(t *testing.T) {
	api := newFakeAPI()
	d := newTestDashboard(t, api)
	fillDriver(d)
	d.Adjust(billing.Logo, +1)
	d.Adjust(billing.Card, +1)

	api.upBillErr = errors.New("network down")
	_, err := d.SaveOrder(context.Background())
	require.Error(t, err)

	api.upBillErr = nil
	o, err := d.SaveOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100000, o.TotalAmount)

	require.Len(t, api.submitted, 2)
	assert.Equal(t, "B-MINH VY-20240102030405AB12", api.submitted[0].DraftID)
	assert.Equal(t, api.submitted[0].DraftID, api.submitted[1].DraftID)
	assert.Equal(t, "lan", api.submitted[1].SaleUsername)

	assert.Equal(t, billing.DriverFields{}, d.Driver)
	assert.Equal(t, billing.Selection{}, d.Selection)
	assert.Equal(t, "MINH VY", d.HTX)
	require.NotNil(t, d.LastOrder)
}

func TestBillView_DraftAndPersisted(t *testing.T) {
	api := newFakeAPI()
	d := newTestDashboard(t, api)
	fillDriver(d)
	d.Adjust(billing.Logo, +1)
	d.Adjust(billing.Logo, +1)
	d.Adjust(billing.TShirt, +1)

	dr, err := d.ExportDraft()
	require.NoError(t, err)
	assert.Equal(t, "B-MINH VY-20240102030405AB12", dr.Order.DraftID)

	v := NewBillView(api, d.draftPath)
	b, err := v.Load(context.Background(), "draft")
	require.NoError(t, err)
	assert.True(t, b.Draft)
	assert.Equal(t, 150000, b.Receipt.Total)
	require.Len(t, b.Receipt.Lines, 2)
	assert.Equal(t, billing.TShirt, b.Receipt.Lines[1].Item)

	api.orders["B-1"] = sales.Order{ID: "B-1", CardQty: 3, TotalAmount: 120000}
	b, err = v.Load(context.Background(), "B-1")
	require.NoError(t, err)
	assert.False(t, b.Draft)
	assert.Equal(t, 120000, b.Receipt.Total)
	assert.Equal(t, 150000, b.Receipt.Lines[0].Amount)

	_, err = NewBillView(api, filepath.Join(t.TempDir(), "none.json")).Load(context.Background(), "draft")
	assert.True(t, IsDraftMissing(err))
}

func TestAdmin(t *testing.T) {
	api := newFakeAPI()
	a := NewAdmin(api)
	ctx := context.Background()

	recs, err := a.Load(ctx, sales.KindInventory)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, sales.KindInventory, r.Kind())
	}

	a.AdjustStock("THANH VY", billing.Card, -1)
	assert.Zero(t, a.Stock["THANH VY"].Card)
	a.AdjustStock("THANH VY", billing.Card, +3)
	row, err := a.SaveInventory(ctx, "THANH VY")
	require.NoError(t, err)
	assert.Equal(t, 3, row.CardStock)

	row, err = a.ClearInventory(ctx, "MINH VY")
	require.NoError(t, err)
	assert.Equal(t, sales.InventoryRow{Name: "MINH VY"}, row)

	a.StepPrice(billing.Logo, +2)
	a.StepPrice(billing.Card, -60)
	require.NoError(t, a.SavePricing(ctx))
	assert.Equal(t, billing.PriceList{Logo: 52000, Card: 0, TShirt: 50000}, api.prices)

	api.bills = []sales.Order{
		{ID: "B-1", LogoQty: 1, TotalAmount: 0, PaymentMethod: "Chuyển khoản"},
		{ID: "B-2", TShirtQty: 2, TotalAmount: 90000, PaymentMethod: "tien mat"},
		{ID: "B-3", CardQty: 1, PaymentMethod: "voucher"},
	}
	rep, err := a.Revenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 52000+90000+0, rep.Total)
	assert.Equal(t, 52000, rep.Transfer)
	assert.Equal(t, 90000, rep.Cash)
	assert.Equal(t, 3, rep.Bills)

	recs, err = a.Load(ctx, sales.KindOrder)
	require.NoError(t, err)
	assert.Equal(t, "B-2", recs[1].Key())

	_, err = a.Load(ctx, sales.ResourceKind(99))
	assert.Error(t, err)
}

func TestAPI_BearerAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/login":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok", "role": "admin", "username": "admin"})
		case "/api/inventory/MINH VY":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
				return
			}
			_ = json.NewEncoder(w).Encode(sales.InventoryRow{Name: "MINH VY", LogoStock: 4})
		case "/api/up_bill":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":   "insufficient stock",
				"details": []billing.Shortage{{Item: billing.Card, Required: 2, Available: 1}},
			})
		case "/api/orders":
			_ = json.NewEncoder(w).Encode([]sales.Order{{ID: r.URL.Query().Get("sale_username")}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var s Session
	api := NewAPI(srv.URL+"/", &s)
	ctx := context.Background()

	_, err := api.Inventory(ctx, "MINH VY")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid token", apiErr.Message)

	s, err = api.Login(ctx, "admin", "pw")
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	row, err := api.Inventory(ctx, "MINH VY")
	require.NoError(t, err)
	assert.Equal(t, 4, row.LogoStock)

	_, err = api.UpBill(ctx, sales.NewOrder{HTX: "MINH VY"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, billing.Card, apiErr.Details[0].Item)

	orders, err := api.Orders(ctx, sales.OrderFilter{SaleUsername: "lan"})
	require.NoError(t, err)
	assert.Equal(t, "lan", orders[0].ID)

	err = api.DeleteSaleUser(ctx, "x")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestCatalog_CRUDKeepsItemsInSync(t *testing.T) {
	api := newFakeAPI()
	api.catalog = []sales.CatalogItem{{ID: "T1", Kind: sales.CatalogCard, HTX: "MINH VY", Name: "card"}}
	c := NewCatalog(api, sales.CatalogLogo)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	assert.Empty(t, c.Items, "other kinds are not listed")

	_, err := c.Create(ctx, "MINH VY", "  ", 1, "")
	assert.ErrorIs(t, err, ErrCatalogName)

	it, err := c.Create(ctx, " MINH VY ", " Lotus ", -3, "")
	require.NoError(t, err)
	assert.Equal(t, sales.CatalogLogo, it.Kind)
	assert.Equal(t, "Lotus", it.Name)
	assert.Zero(t, it.Quantity)

	_, err = c.SetQuantity(ctx, it.ID, 7)
	require.NoError(t, err)
	_, err = c.Rename(ctx, it.ID, "Lotus 2")
	require.NoError(t, err)
	require.Len(t, c.ForHTX("MINH VY"), 1)
	assert.Equal(t, "Lotus 2", c.Items[0].Name)
	assert.Equal(t, 7, c.Items[0].Quantity)

	require.NoError(t, c.Delete(ctx, it.ID))
	assert.Empty(t, c.Items)

	var apiErr *APIError
	assert.ErrorAs(t, c.Delete(ctx, it.ID), &apiErr)
}

func TestBillList_ScopedToSalesperson(t *testing.T) {
	api := newFakeAPI()
	api.bills = []sales.Order{
		{ID: "B-1", SaleUsername: "lan", LogoQty: 1, PaymentMethod: string(billing.PaymentCash)},
		{ID: "B-2", SaleUsername: "hoa", CardQty: 2, PaymentMethod: string(billing.PaymentTransfer)},
		{ID: "B-3", SaleUsername: "lan", TShirtQty: 1, TotalAmount: 40000, PaymentMethod: string(billing.PaymentTransfer)},
	}
	ctx := context.Background()

	assert.ErrorIs(t, NewBillList(api, Session{}).Load(ctx), ErrLoggedOut)

	bl := NewBillList(api, Session{Token: "t", Username: "lan", Role: sales.RoleUser})
	bl.Filter.SaleUsername = "hoa"
	require.NoError(t, bl.Load(ctx))
	assert.Equal(t, "lan", api.filters[len(api.filters)-1].SaleUsername)
	require.Len(t, bl.Bills, 2)

	rep, err := bl.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Bills)
	assert.Equal(t, billing.DefaultPrice+40000, rep.Total)
	assert.Equal(t, billing.DefaultPrice, rep.Cash)
	assert.Equal(t, 40000, rep.Transfer)

	admin := NewBillList(api, Session{Token: "t", Username: "admin", Role: sales.RoleAdmin})
	require.NoError(t, admin.Load(ctx))
	assert.Len(t, admin.Bills, 3)
}
