package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/htx-sale/internal/billing"
)

// CreateOrderTx reserves stock and records the order in one transaction.
//   - a known draft_id returns the existing order (existed=true)
//   - the cooperative's inventory row is locked FOR UPDATE; any shortage
//     aborts with *StockError and nothing is written
//   - the driver is matched on (name, plate, phone) or created
//   - the total is priced from the pricing table, never from the client
func (r *Repo) CreateOrderTx(ctx context.Context, in NewOrder, now time.Time) (o Order, existed bool, err error) {
	if in.DraftID != "" {
		var id string
		err = r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE draft_id=$1`, in.DraftID).Scan(&id)
		if err == nil {
			o, err = r.GetOrder(ctx, id)
			return o, true, err
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return o, false, err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return o, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stock billing.Stock
	err = tx.QueryRow(ctx, `SELECT logo_stock, card_stock, tshirt_stock FROM inventory WHERE htx=$1 FOR UPDATE`, in.HTX).
		Scan(&stock.Logo, &stock.Card, &stock.TShirt)
	if errors.Is(err, pgx.ErrNoRows) {
		return o, false, ErrUnknownHTX
	}
	if err != nil {
		return o, false, err
	}

	sel := in.Selection()
	if short := billing.Shortages(stock, sel); len(short) > 0 {
		return o, false, &StockError{HTX: in.HTX, Details: short}
	}
	left := billing.Deduct(stock, sel)
	ct, err := tx.Exec(ctx, `UPDATE inventory SET logo_stock=$2, card_stock=$3, tshirt_stock=$4, updated_at=now() WHERE htx=$1`,
		in.HTX, left.Logo, left.Card, left.TShirt)
	if err != nil {
		return o, false, err
	}
	if ct.RowsAffected() != 1 {
		return o, false, fmt.Errorf("reserve stock for %s: no row updated", in.HTX)
	}

	prices, err := getPricing(ctx, tx)
	if err != nil {
		return o, false, err
	}

	var driverID string
	err = tx.QueryRow(ctx, `
		INSERT INTO drivers(id, name, license_plate, phone, htx) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (name, license_plate, phone) DO UPDATE SET name=EXCLUDED.name
		RETURNING id`,
		NewID("D", in.HTX, now), in.Name, in.LicensePlate, in.Phone, in.HTX).Scan(&driverID)
	if err != nil {
		return o, false, fmt.Errorf("upsert driver: %w", err)
	}

	o = in.DraftOrder(prices, now)
	o.ID = NewID("B", in.HTX, now)
	o.DriverID = driverID
	o.Driver.ID = driverID

	var draftID any
	if in.DraftID != "" {
		draftID = in.DraftID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, htx, driver_id, sale_username, logo_qty, card_qty, tshirt_qty, total_amount,
		                   payment_method, delivery_method, delivery_address, details, draft_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		o.ID, o.HTX, o.DriverID, o.SaleUsername, o.LogoQty, o.CardQty, o.TShirtQty, o.TotalAmount,
		o.PaymentMethod, o.DeliveryMethod, o.DeliveryAddress, o.Details, draftID, o.CreatedAt)
	if isUniqueViolation(err) && in.DraftID != "" {
		// lost a race with the same draft; hand back the winner
		_ = tx.Rollback(ctx)
		var id string
		if err := r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE draft_id=$1`, in.DraftID).Scan(&id); err != nil {
			return o, false, err
		}
		o, err = r.GetOrder(ctx, id)
		return o, true, err
	}
	if err != nil {
		return o, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return o, false, err
	}
	return o, false, nil
}
