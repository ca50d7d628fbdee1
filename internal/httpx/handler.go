package httpx

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

// Store is the persistence surface the handlers need; *sales.Repo satisfies it.
type Store interface {
	ListCooperatives(ctx context.Context) ([]string, error)
	GetInventory(ctx context.Context, htx string) (sales.InventoryRow, error)
	ListInventory(ctx context.Context) ([]sales.InventoryRow, error)
	UpsertInventory(ctx context.Context, row sales.InventoryRow) (sales.InventoryRow, error)

	GetPricing(ctx context.Context) (billing.PriceList, error)
	SavePricing(ctx context.Context, p billing.PriceList) (billing.PriceList, error)

	SearchDrivers(ctx context.Context, q sales.DriverQuery) ([]sales.Driver, error)

	CreateOrderTx(ctx context.Context, in sales.NewOrder, now time.Time) (sales.Order, bool, error)
	GetOrder(ctx context.Context, id string) (sales.Order, error)
	ListOrders(ctx context.Context, f sales.OrderFilter) ([]sales.Order, error)

	ListSaleUsers(ctx context.Context) ([]sales.SaleUser, error)
	CreateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error)
	UpdateSaleUser(ctx context.Context, s sales.SaleUser) (sales.SaleUser, error)
	DeleteSaleUser(ctx context.Context, id string) error

	ListCatalog(ctx context.Context, kind sales.CatalogKind) ([]sales.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, c sales.CatalogItem, now time.Time) (sales.CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, kind sales.CatalogKind, id string, p sales.CatalogPatch) (sales.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, kind sales.CatalogKind, id string) error
}

// Cache is best effort; *redisx.Cache satisfies it.
type Cache interface {
	Pricing(ctx context.Context) (billing.PriceList, bool)
	SetPricing(ctx context.Context, p billing.PriceList)
	InvalidatePricing(ctx context.Context)
	Order(ctx context.Context, id string) (sales.Order, bool)
	SetOrder(ctx context.Context, o sales.Order)
	OrderForDraft(ctx context.Context, draftID string) (string, bool)
	RememberDraft(ctx context.Context, draftID, orderID string)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Authenticator interface {
	auth.Verifier
	Login(ctx context.Context, username, password string) (auth.Session, error)
	LoginQR(ctx context.Context, qrToken string) (auth.Session, error)
}

type Deps struct {
	Store     Store
	Cache     Cache
	Publisher Publisher
	Auth      Authenticator
	Service   string
	Now       func() time.Time
}

type Handler struct {
	Store     Store
	Cache     Cache
	Publisher Publisher
	Auth      Authenticator
	Service   string

	now func() time.Time
}

func (h *Handler) pricing(ctx context.Context) (billing.PriceList, error) {
	if p, ok := h.Cache.Pricing(ctx); ok {
		return p, nil
	}
	p, err := h.Store.GetPricing(ctx)
	if err != nil {
		return p, err
	}
	h.Cache.SetPricing(ctx, p)
	return p, nil
}
