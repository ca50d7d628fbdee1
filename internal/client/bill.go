package client

import (
	"context"
	"errors"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type BillAPI interface {
	Order(ctx context.Context, id string) (sales.Order, error)
	Pricing(ctx context.Context) (billing.PriceList, error)
}

type Bill struct {
	Order   sales.Order
	Receipt billing.Receipt
	Draft   bool
}

type BillView struct {
	api       BillAPI
	draftPath string
}

func NewBillView(api BillAPI, draftPath string) *BillView {
	return &BillView{api: api, draftPath: draftPath}
}

// Load shows a persisted order, or the cached draft for the id "draft".
// A missing or malformed draft surfaces as ErrNoDraft / ErrDraftMalformed.
func (v *BillView) Load(ctx context.Context, id string) (Bill, error) {
	if id == billing.DraftToken {
		d, err := LoadDraft(v.draftPath)
		if err != nil {
			return Bill{}, err
		}
		o := d.AsOrder()
		return Bill{Order: o, Receipt: billing.BuildReceipt(o.Selection(), d.Prices, o.TotalAmount), Draft: true}, nil
	}

	o, err := v.api.Order(ctx, id)
	if err != nil {
		return Bill{}, err
	}
	prices, err := v.api.Pricing(ctx)
	if err != nil {
		prices = billing.DefaultPrices()
	}
	return Bill{Order: o, Receipt: billing.BuildReceipt(o.Selection(), prices, o.TotalAmount)}, nil
}

// IsDraftMissing reports whether err means there is no usable draft to show.
func IsDraftMissing(err error) bool {
	return errors.Is(err, ErrNoDraft) || errors.Is(err, ErrDraftMalformed)
}
