package sales

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/htx-sale/internal/billing"
)

const (
	EventBillCreated = "BillCreated"
	EventStockLow    = "StockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "htx-sale-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id or htx
	Payload       json.RawMessage `json:"payload"`
}

type BillCreatedPayload struct {
	OrderID       string             `json:"order_id"`
	HTX           string             `json:"htx"`
	SaleUsername  string             `json:"sale_username"`
	DriverName    string             `json:"driver_name"`
	Items         billing.Quantities `json:"items"`
	TotalAmount   int                `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
}

func BillCreatedFrom(o Order) BillCreatedPayload {
	return BillCreatedPayload{
		OrderID:       o.ID,
		HTX:           o.HTX,
		SaleUsername:  o.SaleUsername,
		DriverName:    o.Driver.Name,
		Items:         o.Selection(),
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
	}
}

type StockLowPayload struct {
	HTX       string       `json:"htx"`
	Item      billing.Item `json:"item"`
	Available int          `json:"available"`
	Threshold int          `json:"threshold"`
}
