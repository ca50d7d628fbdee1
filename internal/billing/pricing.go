package billing

import (
	"errors"
	"strings"
)

// Total is Σ sel[k]*prices[k].
func Total(sel Selection, prices PriceList) int {
	total := 0
	for _, it := range Items {
		total += LineAmount(sel, prices, it)
	}
	return total
}

func LineAmount(sel Selection, prices PriceList, it Item) int {
	return max(0, sel.Get(it)) * prices.Price(it)
}

type DriverFields struct {
	Name         string `json:"driver_name"`
	LicensePlate string `json:"license_plate"`
	Phone        string `json:"phone"`
}

func (d DriverFields) complete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.LicensePlate) != "" &&
		strings.TrimSpace(d.Phone) != ""
}

var (
	ErrMissingDriver  = errors.New("driver name, license plate and phone are required")
	ErrEmptySelection = errors.New("select at least one item")
	ErrNegativeQty    = errors.New("quantities must not be negative")
	ErrMissingAddress = errors.New("delivery address is required")
)

// Validate is the single gate in front of both "save order" and "export bill".
func Validate(d DriverFields, sel Selection, method DeliveryMethod, address string) error {
	if !d.complete() {
		return ErrMissingDriver
	}
	if sel.Logo < 0 || sel.Card < 0 || sel.TShirt < 0 {
		return ErrNegativeQty
	}
	if sel.IsZero() {
		return ErrEmptySelection
	}
	if method.NeedsAddress() && strings.TrimSpace(address) == "" {
		return ErrMissingAddress
	}
	return nil
}

func IsOrderValid(d DriverFields, sel Selection, method DeliveryMethod, address string) bool {
	return Validate(d, sel, method, address) == nil
}
