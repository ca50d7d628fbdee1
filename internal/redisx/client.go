package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Cache is a best-effort layer in front of postgres; a miss or a redis error
// just means "ask the database".
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) getJSON(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *Cache) Pricing(ctx context.Context) (billing.PriceList, bool) {
	var p billing.PriceList
	ok := c.getJSON(ctx, KeyPricing, &p)
	return p, ok
}

func (c *Cache) SetPricing(ctx context.Context, p billing.PriceList) {
	b, _ := json.Marshal(p)
	_ = c.rdb.Set(ctx, KeyPricing, b, TTLPricing).Err()
}

func (c *Cache) InvalidatePricing(ctx context.Context) {
	_ = c.rdb.Del(ctx, KeyPricing).Err()
}

func (c *Cache) Order(ctx context.Context, id string) (sales.Order, bool) {
	var o sales.Order
	ok := c.getJSON(ctx, fmt.Sprintf(KeyOrder, id), &o)
	return o, ok
}

func (c *Cache) SetOrder(ctx context.Context, o sales.Order) {
	b, _ := json.Marshal(o)
	_ = c.rdb.Set(ctx, fmt.Sprintf(KeyOrder, o.ID), b, TTLOrderCache).Err()
}

func (c *Cache) OrderForDraft(ctx context.Context, draftID string) (string, bool) {
	id, err := c.rdb.Get(ctx, fmt.Sprintf(KeyIdemUpBill, draftID)).Result()
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (c *Cache) RememberDraft(ctx context.Context, draftID, orderID string) {
	_ = c.rdb.Set(ctx, fmt.Sprintf(KeyIdemUpBill, draftID), orderID, TTLIdempotency).Err()
}

// FirstSeen marks an event as handled and reports whether this call was the first.
func (c *Cache) FirstSeen(ctx context.Context, service, eventID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, eventID), "1", TTLDedup).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}

// Forget releases a FirstSeen mark so a redelivered event is handled again.
func (c *Cache) Forget(ctx context.Context, service, eventID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, eventID)).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
