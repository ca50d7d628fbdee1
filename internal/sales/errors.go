package sales

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/htx-sale/internal/billing"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownHTX        = errors.New("unknown htx")
	ErrDuplicate         = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError lists the items that could not be reserved.
type StockError struct {
	HTX     string
	Details []billing.Shortage
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock at %s: %d item(s) short", e.HTX, len(e.Details))
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
