// Package billing holds the order arithmetic shared by the service and the client:
// selection clamping against stock, totals, the order validity gate, draft ids,
// receipt lines and revenue aggregation. Nothing here does I/O.
package billing

import "fmt"

type Item string

const (
	Logo   Item = "logo"
	Card   Item = "card"
	TShirt Item = "tshirt"
)

// Items is the display order used by receipts and reports.
var Items = []Item{Logo, Card, TShirt}

func ParseItem(s string) (Item, error) {
	switch Item(s) {
	case Logo, Card, TShirt:
		return Item(s), nil
	}
	return "", fmt.Errorf("unknown item %q", s)
}

// Quantities is a per-item count. Missing data is simply zero.
type Quantities struct {
	Logo   int `json:"logo"`
	Card   int `json:"card"`
	TShirt int `json:"tshirt"`
}

// Stock is what a cooperative has available; Selection is what the salesperson picked.
type (
	Stock     = Quantities
	Selection = Quantities
)

func (q Quantities) Get(it Item) int {
	switch it {
	case Logo:
		return q.Logo
	case Card:
		return q.Card
	case TShirt:
		return q.TShirt
	}
	return 0
}

// With returns a copy of q with item set to n.
func (q Quantities) With(it Item, n int) Quantities {
	switch it {
	case Logo:
		q.Logo = n
	case Card:
		q.Card = n
	case TShirt:
		q.TShirt = n
	}
	return q
}

func (q Quantities) IsZero() bool {
	return q.Logo <= 0 && q.Card <= 0 && q.TShirt <= 0
}

// Add sums two quantity sets item by item.
func (q Quantities) Add(o Quantities) Quantities {
	return Quantities{Logo: q.Logo + o.Logo, Card: q.Card + o.Card, TShirt: q.TShirt + o.TShirt}
}

// DefaultPrice applies to every item the server has no price for.
const DefaultPrice = 50000

// PriceStep is the +/- increment used by the admin pricing editor.
const PriceStep = 1000

type PriceList struct {
	Logo   int `json:"logo_price"`
	Card   int `json:"card_price"`
	TShirt int `json:"tshirt_price"`
}

func DefaultPrices() PriceList {
	return PriceList{Logo: DefaultPrice, Card: DefaultPrice, TShirt: DefaultPrice}
}

func (p PriceList) Price(it Item) int {
	switch it {
	case Logo:
		return p.Logo
	case Card:
		return p.Card
	case TShirt:
		return p.TShirt
	}
	return 0
}

// WithPrice sets one price, never below zero.
func (p PriceList) WithPrice(it Item, v int) PriceList {
	v = max(0, v)
	switch it {
	case Logo:
		p.Logo = v
	case Card:
		p.Card = v
	case TShirt:
		p.TShirt = v
	}
	return p
}

// Step moves one price by steps*PriceStep, clamped at zero.
func (p PriceList) Step(it Item, steps int) PriceList {
	return p.WithPrice(it, p.Price(it)+steps*PriceStep)
}
