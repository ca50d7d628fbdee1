package client

import (
	"context"
	"errors"
	"strings"

	"github.com/ariefcatur/htx-sale/internal/sales"
)

var ErrCatalogName = errors.New("catalog item needs a cooperative and a name")

type CatalogAPI interface {
	Catalog(ctx context.Context, kind sales.CatalogKind) ([]sales.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, c sales.CatalogItem) (sales.CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, kind sales.CatalogKind, id string, p sales.CatalogPatch) (sales.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, kind sales.CatalogKind, id string) error
}

// Catalog backs the logo and card design lists. Items mirrors the server
// after every successful call.
type Catalog struct {
	api  CatalogAPI
	kind sales.CatalogKind

	Items []sales.CatalogItem
}

func NewCatalog(api CatalogAPI, kind sales.CatalogKind) *Catalog {
	return &Catalog{api: api, kind: kind}
}

func (c *Catalog) Kind() sales.CatalogKind { return c.kind }

func (c *Catalog) Load(ctx context.Context) error {
	items, err := c.api.Catalog(ctx, c.kind)
	if err != nil {
		return err
	}
	c.Items = items
	return nil
}

// Create adds an item for a cooperative. Quantity is clamped at 0.
func (c *Catalog) Create(ctx context.Context, htx, name string, qty int, imageURL string) (sales.CatalogItem, error) {
	htx, name = strings.TrimSpace(htx), strings.TrimSpace(name)
	if htx == "" || name == "" {
		return sales.CatalogItem{}, ErrCatalogName
	}
	it, err := c.api.CreateCatalogItem(ctx, sales.CatalogItem{
		Kind: c.kind, HTX: htx, Name: name, Quantity: max(0, qty), ImageURL: strings.TrimSpace(imageURL),
	})
	if err != nil {
		return it, err
	}
	c.Items = append(c.Items, it)
	return it, nil
}

func (c *Catalog) Rename(ctx context.Context, id, name string) (sales.CatalogItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sales.CatalogItem{}, ErrCatalogName
	}
	return c.update(ctx, id, sales.CatalogPatch{Name: &name})
}

func (c *Catalog) SetQuantity(ctx context.Context, id string, qty int) (sales.CatalogItem, error) {
	qty = max(0, qty)
	return c.update(ctx, id, sales.CatalogPatch{Quantity: &qty})
}

func (c *Catalog) SetImage(ctx context.Context, id, imageURL string) (sales.CatalogItem, error) {
	imageURL = strings.TrimSpace(imageURL)
	return c.update(ctx, id, sales.CatalogPatch{ImageURL: &imageURL})
}

func (c *Catalog) update(ctx context.Context, id string, p sales.CatalogPatch) (sales.CatalogItem, error) {
	it, err := c.api.UpdateCatalogItem(ctx, c.kind, id, p)
	if err != nil {
		return it, err
	}
	if i := c.index(id); i >= 0 {
		c.Items[i] = it
	}
	return it, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteCatalogItem(ctx, c.kind, id); err != nil {
		return err
	}
	if i := c.index(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	return nil
}

// ForHTX lists the loaded items of one cooperative.
func (c *Catalog) ForHTX(htx string) []sales.CatalogItem {
	var out []sales.CatalogItem
	for _, it := range c.Items {
		if it.HTX == htx {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) index(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
