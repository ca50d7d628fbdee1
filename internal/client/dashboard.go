package client

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

// ValidationError means the order gate refused locally; nothing was sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid order: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Driver autofill only fires once a field holds more than this many characters.
const autofillMinLen = 3

type DashboardAPI interface {
	Cooperatives(ctx context.Context) ([]string, error)
	Inventory(ctx context.Context, htx string) (sales.InventoryRow, error)
	Pricing(ctx context.Context) (billing.PriceList, error)
	SearchDriver(ctx context.Context, field, value string) ([]sales.Driver, error)
	UpBill(ctx context.Context, in sales.NewOrder) (UpBillResult, error)
}

// Dashboard owns the salesperson's order form.
type Dashboard struct {
	api       DashboardAPI
	session   Session
	draftPath string
	now       func() time.Time
	suffix    func() string

	Cooperatives []string
	HTX          string
	Stock        billing.Stock
	Prices       billing.PriceList
	Selection    billing.Selection
	Driver       billing.DriverFields
	Payment      billing.PaymentMethod
	Delivery     billing.Delivery
	Details      string
	LastOrder    *sales.Order

	// draftID is kept across a failed save so a retry is idempotent.
	draftID string
}

func NewDashboard(api DashboardAPI, s Session, draftPath string) *Dashboard {
	return &Dashboard{
		api:       api,
		session:   s,
		draftPath: draftPath,
		now:       time.Now,
		suffix:    billing.RandomSuffix,
		Payment:   billing.PaymentTransfer,
		Delivery:  billing.Delivery{Method: billing.DeliveryPickup},
	}
}

// Load fetches cooperatives and prices and selects the first cooperative.
// Each part is loaded even if another fails; missing data stays zero.
func (d *Dashboard) Load(ctx context.Context) error {
	var errs []error
	coops, err := d.api.Cooperatives(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("cooperatives: %w", err))
	} else {
		d.Cooperatives = coops
	}
	if p, err := d.api.Pricing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	} else {
		d.Prices = p
	}
	if d.HTX == "" && len(d.Cooperatives) > 0 {
		if err := d.SelectCooperative(ctx, d.Cooperatives[0]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SelectCooperative switches the active cooperative: the selection resets
// and stock is reloaded.
func (d *Dashboard) SelectCooperative(ctx context.Context, htx string) error {
	d.HTX = htx
	d.Selection = billing.Selection{}
	d.Stock = billing.Stock{}
	d.draftID = ""
	return d.RefreshStock(ctx)
}

// RefreshStock reloads stock for the active cooperative and clamps the selection to it.
func (d *Dashboard) RefreshStock(ctx context.Context) error {
	if d.HTX == "" {
		return nil
	}
	row, err := d.api.Inventory(ctx, d.HTX)
	if err != nil {
		return fmt.Errorf("inventory %s: %w", d.HTX, err)
	}
	d.Stock = row.Stock()
	d.Selection = billing.Clamp(d.Stock, d.Selection)
	return nil
}

func (d *Dashboard) Adjust(it billing.Item, delta int) {
	d.Selection = billing.Adjust(d.Stock, d.Selection, it, delta)
}

func (d *Dashboard) Remaining(it billing.Item) int {
	return billing.Remaining(d.Stock, d.Selection, it)
}

func (d *Dashboard) Total() int {
	return billing.Total(d.Selection, d.Prices)
}

func (d *Dashboard) TogglePayment()  { d.Payment = d.Payment.Toggle() }
func (d *Dashboard) ToggleDelivery() { d.Delivery = d.Delivery.Toggle() }

// SetDriverField updates one driver field ("driver_name", "license_plate" or
// "phone"). Once the value is long enough the first matching driver fills
// the fields that are still empty.
func (d *Dashboard) SetDriverField(ctx context.Context, field, value string) error {
	switch field {
	case "driver_name":
		d.Driver.Name = value
	case "license_plate":
		d.Driver.LicensePlate = value
	case "phone":
		d.Driver.Phone = value
	default:
		return fmt.Errorf("unknown driver field %q", field)
	}
	if utf8.RuneCountInString(value) <= autofillMinLen {
		return nil
	}
	matches, err := d.api.SearchDriver(ctx, field, value)
	if err != nil || len(matches) == 0 {
		return err
	}
	m := matches[0]
	if d.Driver.Name == "" {
		d.Driver.Name = m.Name
	}
	if d.Driver.LicensePlate == "" {
		d.Driver.LicensePlate = m.LicensePlate
	}
	if d.Driver.Phone == "" {
		d.Driver.Phone = m.Phone
	}
	return nil
}

func (d *Dashboard) Valid() bool {
	return d.validate() == nil
}

func (d *Dashboard) validate() error {
	if err := billing.Validate(d.Driver, d.Selection, d.Delivery.Method, d.Delivery.Address); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func (d *Dashboard) order() sales.NewOrder {
	if d.draftID == "" {
		d.draftID = billing.MakeDraftID(d.HTX, d.now(), d.suffix())
	}
	return sales.NewOrder{
		HTX:           d.HTX,
		DriverFields:  d.Driver,
		LogoQty:       d.Selection.Logo,
		CardQty:       d.Selection.Card,
		TShirtQty:     d.Selection.TShirt,
		PaymentMethod: string(d.Payment),
		Delivery:      d.Delivery,
		Details:       d.Details,
		SaleUsername:  d.session.Username,
		DraftID:       d.draftID,
	}
}

// SaveOrder submits the form. On success the driver fields, note and
// selection reset and stock is reloaded; the cooperative stays.
func (d *Dashboard) SaveOrder(ctx context.Context) (sales.Order, error) {
	if err := d.validate(); err != nil {
		return sales.Order{}, err
	}
	res, err := d.api.UpBill(ctx, d.order())
	if err != nil {
		return sales.Order{}, err
	}
	o := res.Order
	d.LastOrder = &o
	d.draftID = ""
	d.Driver = billing.DriverFields{}
	d.Details = ""
	d.Delivery = billing.Delivery{Method: d.Delivery.Method}
	d.Selection = billing.Selection{}
	return o, d.RefreshStock(ctx)
}

// ExportDraft caches the form as a draft bill without contacting the server.
// It is previewed through the "draft" bill id.
func (d *Dashboard) ExportDraft() (Draft, error) {
	if err := d.validate(); err != nil {
		return Draft{}, err
	}
	dr := Draft{Order: d.order(), Prices: d.Prices, CreatedAt: d.now()}
	if err := SaveDraft(d.draftPath, dr); err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return dr, nil
}
