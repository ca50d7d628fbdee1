package client

import (
	"context"
	"fmt"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type AdminAPI interface {
	AdminInventory(ctx context.Context) ([]sales.InventoryRow, error)
	PutInventory(ctx context.Context, row sales.InventoryRow) (sales.InventoryRow, error)
	Pricing(ctx context.Context) (billing.PriceList, error)
	PutPricing(ctx context.Context, p billing.PriceList) (billing.PriceList, error)
	SaleUsers(ctx context.Context) ([]sales.SaleUser, error)
	CreateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error)
	UpdateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error)
	DeleteSaleUser(ctx context.Context, id string) error
	Drivers(ctx context.Context, query string) ([]sales.Driver, error)
	Bills(ctx context.Context, f sales.OrderFilter) ([]sales.Order, error)
}

// Admin backs the admin panel tabs. Inventory and prices are edited as local
// drafts and only written on Save.
type Admin struct {
	api AdminAPI

	Prices      billing.PriceList
	Stock       map[string]billing.Stock
	Filter      sales.OrderFilter
	DriverQuery string
	Bills       []sales.Order
}

func NewAdmin(api AdminAPI) *Admin {
	return &Admin{api: api, Prices: billing.DefaultPrices(), Stock: map[string]billing.Stock{}}
}

// Load fetches the rows behind one tab.
func (a *Admin) Load(ctx context.Context, kind sales.ResourceKind) ([]sales.Record, error) {
	switch kind {
	case sales.KindInventory:
		rows, err := a.api.AdminInventory(ctx)
		if err != nil {
			return nil, err
		}
		a.Stock = make(map[string]billing.Stock, len(rows))
		for _, r := range rows {
			a.Stock[r.Name] = r.Stock()
		}
		return sales.Records(rows), nil
	case sales.KindDriver:
		ds, err := a.api.Drivers(ctx, a.DriverQuery)
		if err != nil {
			return nil, err
		}
		return sales.Records(ds), nil
	case sales.KindSaleUser:
		us, err := a.api.SaleUsers(ctx)
		if err != nil {
			return nil, err
		}
		return sales.Records(us), nil
	case sales.KindOrder:
		bills, err := a.api.Bills(ctx, a.Filter)
		if err != nil {
			return nil, err
		}
		a.Bills = bills
		return sales.Records(bills), nil
	}
	return nil, fmt.Errorf("unknown resource kind %s", kind)
}

func (a *Admin) LoadPricing(ctx context.Context) error {
	p, err := a.api.Pricing(ctx)
	if err != nil {
		return err
	}
	a.Prices = p
	return nil
}

// AdjustStock moves one item of a cooperative's draft stock, never below 0.
func (a *Admin) AdjustStock(htx string, it billing.Item, delta int) {
	s := a.Stock[htx]
	a.Stock[htx] = s.With(it, max(0, s.Get(it)+delta))
}

func (a *Admin) SetStock(htx string, it billing.Item, n int) {
	a.Stock[htx] = a.Stock[htx].With(it, max(0, n))
}

func (a *Admin) SaveInventory(ctx context.Context, htx string) (sales.InventoryRow, error) {
	row, err := a.api.PutInventory(ctx, sales.InventoryFromStock(htx, a.Stock[htx]))
	if err != nil {
		return row, err
	}
	a.Stock[htx] = row.Stock()
	return row, nil
}

// ClearInventory zeroes a cooperative's stock and saves it.
func (a *Admin) ClearInventory(ctx context.Context, htx string) (sales.InventoryRow, error) {
	a.Stock[htx] = billing.Stock{}
	return a.SaveInventory(ctx, htx)
}

// StepPrice moves a price by whole steps of billing.PriceStep.
func (a *Admin) StepPrice(it billing.Item, steps int) {
	a.Prices = a.Prices.Step(it, steps)
}

func (a *Admin) SavePricing(ctx context.Context) error {
	p, err := a.api.PutPricing(ctx, a.Prices)
	if err != nil {
		return err
	}
	a.Prices = p
	return nil
}

func (a *Admin) CreateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	return a.api.CreateSaleUser(ctx, s)
}

func (a *Admin) UpdateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error) {
	return a.api.UpdateSaleUser(ctx, s)
}

func (a *Admin) DeleteSaleUser(ctx context.Context, id string) error {
	return a.api.DeleteSaleUser(ctx, id)
}

// Revenue reloads the filtered bills and aggregates them with the current prices.
func (a *Admin) Revenue(ctx context.Context) (billing.Report, error) {
	if _, err := a.Load(ctx, sales.KindOrder); err != nil {
		return billing.Report{}, err
	}
	return billing.Aggregate(sales.Summaries(a.Bills), a.Prices), nil
}
