package httpx

import (
	"context"
	"sort"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type fakeStore struct {
	mu        sync.Mutex
	inventory map[string]sales.InventoryRow
	prices    billing.PriceList
	orders    map[string]sales.Order
	byDraft   map[string]string
	saleUsers map[string]sales.SaleUser
	drivers   []sales.Driver
	catalog   map[string]sales.CatalogItem

	createCalls int
	lastFilter  sales.OrderFilter
	lastDriverQ sales.DriverQuery
	seq         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		inventory: map[string]sales.InventoryRow{
			"MINH VY": {Name: "MINH VY", LogoStock: 3, CardStock: 2, TShirtStock: 1},
		},
		prices:    billing.DefaultPrices(),
		orders:    map[string]sales.Order{},
		byDraft:   map[string]string{},
		saleUsers: map[string]sales.SaleUser{},
		catalog:   map[string]sales.CatalogItem{},
	}
}

func (f *fakeStore) ListCooperatives(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.inventory {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) GetInventory(_ context.Context, htx string) (sales.InventoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.inventory[htx]
	if !ok {
		return row, sales.ErrUnknownHTX
	}
	return row, nil
}

func (f *fakeStore) ListInventory(context.Context) ([]sales.InventoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sales.InventoryRow
	for _, r := range f.inventory {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) UpsertInventory(_ context.Context, row sales.InventoryRow) (sales.InventoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.inventory[row.Name]; !ok {
		return row, sales.ErrUnknownHTX
	}
	f.inventory[row.Name] = row
	return row, nil
}

func (f *fakeStore) GetPricing(context.Context) (billing.PriceList, error) { return f.prices, nil }

func (f *fakeStore) SavePricing(_ context.Context, p billing.PriceList) (billing.PriceList, error) {
	f.prices = p
	return p, nil
}

func (f *fakeStore) SearchDrivers(_ context.Context, q sales.DriverQuery) ([]sales.Driver, error) {
	f.lastDriverQ = q
	return f.drivers, nil
}

func (f *fakeStore) CreateOrderTx(_ context.Context, in sales.NewOrder, now time.Time) (sales.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if id, ok := f.byDraft[in.DraftID]; ok && in.DraftID != "" {
		return f.orders[id], true, nil
	}
	row, ok := f.inventory[in.HTX]
	if !ok {
		return sales.Order{}, false, sales.ErrUnknownHTX
	}
	if short := billing.Shortages(row.Stock(), in.Selection()); len(short) > 0 {
		return sales.Order{}, false, &sales.StockError{HTX: in.HTX, Details: short}
	}
	f.inventory[in.HTX] = sales.InventoryFromStock(in.HTX, billing.Deduct(row.Stock(), in.Selection()))
	f.seq++
	o := in.DraftOrder(f.prices, now)
	o.ID = billing.MakeID("B", in.HTX, now, string(rune('A'+f.seq))+"000")
	f.orders[o.ID] = o
	if in.DraftID != "" {
		f.byDraft[in.DraftID] = o.ID
	}
	return o, false, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (sales.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return o, sales.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) ListOrders(_ context.Context, filter sales.OrderFilter) ([]sales.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	var out []sales.Order
	for _, o := range f.orders {
		if filter.SaleUsername != "" && o.SaleUsername != filter.SaleUsername {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) ListSaleUsers(context.Context) ([]sales.SaleUser, error) {
	var out []sales.SaleUser
	for _, s := range f.saleUsers {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) CreateSaleUser(_ context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	for _, u := range f.saleUsers {
		if u.Username == s.Username {
			return s, sales.ErrDuplicate
		}
	}
	s.ID = "su-" + s.Username
	f.saleUsers[s.ID] = s
	return s, nil
}

func (f *fakeStore) UpdateSaleUser(_ context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	if _, ok := f.saleUsers[s.ID]; !ok {
		return s, sales.ErrNotFound
	}
	f.saleUsers[s.ID] = s
	return s, nil
}

func (f *fakeStore) DeleteSaleUser(_ context.Context, id string) error {
	if _, ok := f.saleUsers[id]; !ok {
		return sales.ErrNotFound
	}
	delete(f.saleUsers, id)
	return nil
}

func (f *fakeStore) ListCatalog(_ context.Context, kind sales.CatalogKind) ([]sales.CatalogItem, error) {
	var out []sales.CatalogItem
	for _, c := range f.catalog {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCatalogItem(_ context.Context, c sales.CatalogItem, now time.Time) (sales.CatalogItem, error) {
	if _, ok := f.inventory[c.HTX]; !ok {
		return c, sales.ErrUnknownHTX
	}
	c.ID = sales.NewID("L", c.HTX, now)
	f.catalog[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCatalogItem(_ context.Context, kind sales.CatalogKind, id string, p sales.CatalogPatch) (sales.CatalogItem, error) {
	c, ok := f.catalog[id]
	if !ok || c.Kind != kind {
		return c, sales.ErrNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Quantity != nil {
		c.Quantity = *p.Quantity
	}
	f.catalog[id] = c
	return c, nil
}

func (f *fakeStore) DeleteCatalogItem(_ context.Context, kind sales.CatalogKind, id string) error {
	c, ok := f.catalog[id]
	if !ok || c.Kind != kind {
		return sales.ErrNotFound
	}
	delete(f.catalog, id)
	return nil
}

type fakeCache struct {
	prices      *billing.PriceList
	orders      map[string]sales.Order
	drafts      map[string]string
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{orders: map[string]sales.Order{}, drafts: map[string]string{}}
}

func (c *fakeCache) Pricing(context.Context) (billing.PriceList, bool) {
	if c.prices == nil {
		return billing.PriceList{}, false
	}
	return *c.prices, true
}

func (c *fakeCache) SetPricing(_ context.Context, p billing.PriceList) { c.prices = &p }
func (c *fakeCache) InvalidatePricing(context.Context)                 { c.prices = nil; c.invalidated++ }

func (c *fakeCache) Order(_ context.Context, id string) (sales.Order, bool) {
	o, ok := c.orders[id]
	return o, ok
}

func (c *fakeCache) SetOrder(_ context.Context, o sales.Order) { c.orders[o.ID] = o }

func (c *fakeCache) OrderForDraft(_ context.Context, draftID string) (string, bool) {
	id, ok := c.drafts[draftID]
	return id, ok
}

func (c *fakeCache) RememberDraft(_ context.Context, draftID, orderID string) {
	c.drafts[draftID] = orderID
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}
