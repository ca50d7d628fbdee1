package sales

import (
	"time"

	"github.com/ariefcatur/htx-sale/internal/billing"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	QRToken      string
	Role         Role
}

type Cooperative struct {
	Name string `json:"name"`
}

type InventoryRow struct {
	Name        string `json:"name"`
	LogoStock   int    `json:"logo_stock"`
	CardStock   int    `json:"card_stock"`
	TShirtStock int    `json:"tshirt_stock"`
}

func (r InventoryRow) Stock() billing.Stock {
	return billing.Stock{Logo: r.LogoStock, Card: r.CardStock, TShirt: r.TShirtStock}
}

func InventoryFromStock(htx string, s billing.Stock) InventoryRow {
	return InventoryRow{Name: htx, LogoStock: s.Logo, CardStock: s.Card, TShirtStock: s.TShirt}
}

type Driver struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LicensePlate string `json:"license_plate"`
	Phone        string `json:"phone"`
	HTX          string `json:"htx"`
}

type SaleUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type Order struct {
	ID              string    `json:"id"`
	HTX             string    `json:"htx"`
	DriverID        string    `json:"driver_id"`
	Driver          Driver    `json:"driver"`
	SaleUsername    string    `json:"sale_username"`
	SaleName        string    `json:"sale_name,omitempty"`
	LogoQty         int       `json:"logo_qty"`
	CardQty         int       `json:"card_qty"`
	TShirtQty       int       `json:"tshirt_qty"`
	TotalAmount     int       `json:"total_amount"`
	PaymentMethod   string    `json:"payment_method"`
	DeliveryMethod  string    `json:"delivery_method"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	Details         string    `json:"details,omitempty"`
	DraftID         string    `json:"draft_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (o Order) Selection() billing.Selection {
	return billing.Selection{Logo: o.LogoQty, Card: o.CardQty, TShirt: o.TShirtQty}
}

func (o Order) Summary() billing.BillSummary {
	return billing.BillSummary{Selection: o.Selection(), TotalAmount: o.TotalAmount, PaymentMethod: o.PaymentMethod}
}

// Summaries maps orders to what revenue aggregation needs.
func Summaries(orders []Order) []billing.BillSummary {
	out := make([]billing.BillSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Summary())
	}
	return out
}

// NewOrder is the up_bill payload. It is also what the client caches as a
// draft before the server has seen it.
type NewOrder struct {
	HTX string `json:"htx"`
	billing.DriverFields
	LogoQty       int    `json:"logo_qty"`
	CardQty       int    `json:"card_qty"`
	TShirtQty     int    `json:"tshirt_qty"`
	PaymentMethod string `json:"payment_method"`
	billing.Delivery
	Details      string `json:"details"`
	SaleUsername string `json:"sale_username"`
	DraftID      string `json:"draft_id,omitempty"`
}

func (n NewOrder) Selection() billing.Selection {
	return billing.Selection{Logo: n.LogoQty, Card: n.CardQty, TShirt: n.TShirtQty}
}

func (n NewOrder) Validate() error {
	return billing.Validate(n.DriverFields, n.Selection(), n.Method, n.Address)
}

// DraftOrder turns an unsaved payload into an Order shaped value for preview.
func (n NewOrder) DraftOrder(prices billing.PriceList, now time.Time) Order {
	return Order{
		ID:  n.DraftID,
		HTX: n.HTX,
		Driver: Driver{
			Name:         n.Name,
			LicensePlate: n.LicensePlate,
			Phone:        n.Phone,
			HTX:          n.HTX,
		},
		SaleUsername:    n.SaleUsername,
		LogoQty:         n.LogoQty,
		CardQty:         n.CardQty,
		TShirtQty:       n.TShirtQty,
		TotalAmount:     billing.Total(n.Selection(), prices),
		PaymentMethod:   n.PaymentMethod,
		DeliveryMethod:  string(n.Method),
		DeliveryAddress: n.Address,
		Details:         n.Details,
		DraftID:         n.DraftID,
		CreatedAt:       now,
	}
}

type CatalogKind string

const (
	CatalogLogo CatalogKind = "logo"
	CatalogCard CatalogKind = "card"
)

func (k CatalogKind) idPrefix() string {
	if k == CatalogCard {
		return "T"
	}
	return "L"
}

type CatalogItem struct {
	ID       string      `json:"id"`
	Kind     CatalogKind `json:"kind"`
	HTX      string      `json:"htx"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	ImageURL string      `json:"image_url,omitempty"`
}

// CatalogPatch carries optional fields of a catalog update.
type CatalogPatch struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
	ImageURL *string `json:"image_url"`
}
