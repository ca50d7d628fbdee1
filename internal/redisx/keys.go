package redisx

import "time"

const (
	// Price list snapshot: pricing -> {"logo_price":..,"card_price":..,"tshirt_price":..}
	KeyPricing = "pricing"

	// Order read cache: order:{order_id} -> order JSON
	KeyOrder = "order:%s"

	// Draft idempotency: idem:up_bill:{draft_id} -> order_id
	KeyIdemUpBill = "idem:up_bill:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLPricing     = 10 * time.Minute
	TTLOrderCache  = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
