package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/htx-sale/internal/billing"
	kafkax "github.com/ariefcatur/htx-sale/internal/kafka"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

type fakeInventory struct {
	rows  map[string]sales.InventoryRow
	err   error
	calls int
}

func (f *fakeInventory) GetInventory(_ context.Context, htx string) (sales.InventoryRow, error) {
	f.calls++
	if f.err != nil {
		return sales.InventoryRow{}, f.err
	}
	row, ok := f.rows[htx]
	if !ok {
		return sales.InventoryRow{}, sales.ErrUnknownHTX
	}
	return row, nil
}

type fakeDedup struct {
	seen map[string]bool
	err  error
}

func (f *fakeDedup) FirstSeen(_ context.Context, service, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	k := service + ":" + id
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func (f *fakeDedup) Forget(_ context.Context, service, id string) error {
	delete(f.seen, service+":"+id)
	return nil
}

type published struct {
	key     string
	value   []byte
	headers []kafkago.Header
}

type fakePublisher struct{ msgs []published }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.msgs = append(f.msgs, published{key: string(key), value: value, headers: headers})
}

func newService(rows map[string]sales.InventoryRow) (*Service, *fakeInventory, *fakePublisher) {
	inv := &fakeInventory{rows: rows}
	pub := &fakePublisher{}
	s := &Service{
		Inventory:   inv,
		Dedup:       &fakeDedup{seen: map[string]bool{}},
		StockLow:    pub,
		ServiceName: "htx-notifier",
		Threshold:   5,
		now:         func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return s, inv, pub
}

func billMessage(t *testing.T, eventID, htx string) kafkago.Message {
	t.Helper()
	env := sales.Envelope{
		EventID:      eventID,
		EventType:    sales.EventBillCreated,
		EventVersion: 1,
		Payload: kafkax.MustMarshal(sales.BillCreatedPayload{
			OrderID: "B-" + htx, HTX: htx, Items: billing.Quantities{Logo: 1}, TotalAmount: 50000,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestLowItems(t *testing.T) {
	got := LowItems(billing.Stock{Logo: 5, Card: 6, TShirt: 0}, 5)
	require.Len(t, got, 2)
	assert.Equal(t, billing.Logo, got[0].Item)
	assert.Equal(t, 5, got[0].Available)
	assert.Equal(t, billing.TShirt, got[1].Item)

	assert.Empty(t, LowItems(billing.Stock{}, 0))
}

func TestHandleBillCreated_PublishesStockLow(t *testing.T) {
	s, _, pub := newService(map[string]sales.InventoryRow{
		"MINH VY": {Name: "MINH VY", LogoStock: 2, CardStock: 40, TShirtStock: 10},
	})

	require.NoError(t, s.HandleBillCreated(context.Background(), billMessage(t, "ev-1", "MINH VY")))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "MINH VY", pub.msgs[0].key)

	var env sales.Envelope
	require.NoError(t, json.Unmarshal(pub.msgs[0].value, &env))
	assert.Equal(t, sales.EventStockLow, env.EventType)
	assert.Equal(t, "MINH VY", env.CorrelationID)

	p, err := kafkax.UnwrapPayload[sales.StockLowPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, sales.StockLowPayload{HTX: "MINH VY", Item: billing.Logo, Available: 2, Threshold: 5}, p)
}

func TestHandleBillCreated_DuplicateEventIgnored(t *testing.T) {
	s, inv, pub := newService(map[string]sales.InventoryRow{
		"MINH VY": {Name: "MINH VY"},
	})
	msg := billMessage(t, "ev-1", "MINH VY")

	require.NoError(t, s.HandleBillCreated(context.Background(), msg))
	require.NoError(t, s.HandleBillCreated(context.Background(), msg))
	assert.Equal(t, 1, inv.calls)
	assert.Len(t, pub.msgs, 3)
}

func TestHandleBillCreated_SkipsOtherEvents(t *testing.T) {
	s, inv, pub := newService(nil)
	env := sales.Envelope{EventID: "x", EventType: sales.EventStockLow}

	require.NoError(t, s.HandleBillCreated(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)}))
	require.NoError(t, s.HandleBillCreated(context.Background(), kafkago.Message{Value: []byte("{not json")}))
	assert.Zero(t, inv.calls)
	assert.Empty(t, pub.msgs)
}

func TestHandleBillCreated_RetriesOnInfraError(t *testing.T) {
	s, _, _ := newService(nil)
	s.Dedup = &fakeDedup{err: errors.New("redis down")}
	assert.Error(t, s.HandleBillCreated(context.Background(), billMessage(t, "ev-1", "MINH VY")))

	s, _, _ = newService(nil)
	err := s.HandleBillCreated(context.Background(), billMessage(t, "ev-2", "NOPE"))
	assert.ErrorIs(t, err, sales.ErrUnknownHTX)
}

func TestHandleBillCreated_RedeliveryAfterFailureIsHandled(t *testing.T) {
	s, inv, pub := newService(map[string]sales.InventoryRow{
		"MINH VY": {Name: "MINH VY", LogoStock: 1, CardStock: 40, TShirtStock: 40},
	})
	msg := billMessage(t, "ev-1", "MINH VY")

	inv.err = errors.New("db down")
	require.Error(t, s.HandleBillCreated(context.Background(), msg))
	assert.Empty(t, pub.msgs)

	inv.err = nil
	require.NoError(t, s.HandleBillCreated(context.Background(), msg))
	assert.Equal(t, 2, inv.calls)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "MINH VY", pub.msgs[0].key)

	// once handled, the event stays deduplicated
	require.NoError(t, s.HandleBillCreated(context.Background(), msg))
	assert.Equal(t, 2, inv.calls)
}
