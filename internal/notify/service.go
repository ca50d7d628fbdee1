package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/htx-sale/internal/billing"
	kafkax "github.com/ariefcatur/htx-sale/internal/kafka"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type InventoryReader interface {
	GetInventory(ctx context.Context, htx string) (sales.InventoryRow, error)
}

// Deduper marks events as handled. Forget undoes a mark when handling failed.
type Deduper interface {
	FirstSeen(ctx context.Context, service, eventID string) (bool, error)
	Forget(ctx context.Context, service, eventID string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Inventory   InventoryReader
	Dedup       Deduper
	StockLow    Publisher // publish htx.stock.low
	ServiceName string
	Threshold   int

	now func() time.Time
}

// HandleBillCreated is installed as the consumer handler for htx.bill.created.
func (s *Service) HandleBillCreated(ctx context.Context, m kafkago.Message) error {
	var env sales.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message: nothing to retry
		logger.Warn("drop undecodable event", "offset", m.Offset, "err", err)
		return nil
	}
	if env.EventType != sales.EventBillCreated {
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, s.ServiceName, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		return nil
	}

	p, err := kafkax.UnwrapPayload[sales.BillCreatedPayload](env.Payload)
	if err != nil {
		logger.Warn("drop bill event", "event_id", env.EventID, "err", err)
		return nil
	}

	logger.Info("new bill",
		"order_id", p.OrderID, "htx", p.HTX, "sale", p.SaleUsername,
		"driver", p.DriverName, "total", p.TotalAmount, "payment", p.PaymentMethod)

	row, err := s.Inventory.GetInventory(ctx, p.HTX)
	if err != nil {
		if ferr := s.Dedup.Forget(ctx, s.ServiceName, env.EventID); ferr != nil {
			logger.Warn("release dedup mark", "event_id", env.EventID, "err", ferr)
		}
		return fmt.Errorf("inventory %s: %w", p.HTX, err)
	}
	for _, low := range LowItems(row.Stock(), s.Threshold) {
		s.publishStockLow(p.HTX, low, env.TraceID)
	}
	return nil
}

func (s *Service) publishStockLow(htx string, low billing.Shortage, trace string) {
	payload := sales.StockLowPayload{HTX: htx, Item: low.Item, Available: low.Available, Threshold: s.Threshold}
	ev := sales.Envelope{
		EventID:       uuid.NewString(),
		EventType:     sales.EventStockLow,
		EventVersion:  1,
		OccurredAt:    s.clock().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: htx,
		Payload:       kafkax.MustMarshal(payload),
	}
	logger.Warn("low stock", "htx", htx, "item", low.Item, "available", low.Available)
	s.StockLow.Publish(sales.PartitionKey(htx), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(sales.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// LowItems lists the items whose stock is at or below threshold, in item order.
// Required carries the threshold. A non-positive threshold disables the check.
func LowItems(stock billing.Stock, threshold int) []billing.Shortage {
	if threshold <= 0 {
		return nil
	}
	var out []billing.Shortage
	for _, it := range billing.Items {
		if n := stock.Get(it); n <= threshold {
			out = append(out, billing.Shortage{Item: it, Required: threshold, Available: n})
		}
	}
	return out
}
