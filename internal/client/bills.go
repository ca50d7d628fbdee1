package client

import (
	"context"
	"errors"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

var ErrLoggedOut = errors.New("not logged in")

type BillListAPI interface {
	Orders(ctx context.Context, f sales.OrderFilter) ([]sales.Order, error)
	Pricing(ctx context.Context) (billing.PriceList, error)
}

// BillList is a salesperson's own bill history. The server scopes
// non-admin callers to their username; the filter is pinned here too.
type BillList struct {
	api     BillListAPI
	session Session

	Filter sales.OrderFilter
	Bills  []sales.Order
}

func NewBillList(api BillListAPI, s Session) *BillList {
	return &BillList{api: api, session: s}
}

func (b *BillList) Load(ctx context.Context) error {
	if !b.session.LoggedIn() {
		return ErrLoggedOut
	}
	f := b.Filter
	if !b.session.IsAdmin() {
		f.SaleUsername = b.session.Username
	}
	bills, err := b.api.Orders(ctx, f)
	if err != nil {
		return err
	}
	b.Bills = bills
	return nil
}

// Summary totals the loaded bills at the current prices.
func (b *BillList) Summary(ctx context.Context) (billing.Report, error) {
	prices, err := b.api.Pricing(ctx)
	if err != nil {
		return billing.Report{}, err
	}
	return billing.Aggregate(sales.Summaries(b.Bills), prices), nil
}
