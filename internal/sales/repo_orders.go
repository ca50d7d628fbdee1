package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const orderSelect = `
	SELECT o.id, o.htx, o.driver_id, d.name, d.license_plate, d.phone, d.htx,
	       o.sale_username, COALESCE(s.full_name,''),
	       o.logo_qty, o.card_qty, o.tshirt_qty, o.total_amount,
	       o.payment_method, o.delivery_method, o.delivery_address, o.details,
	       COALESCE(o.draft_id,''), o.created_at
	FROM orders o
	JOIN drivers d ON d.id = o.driver_id
	LEFT JOIN sale_users s ON s.username = o.sale_username`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.HTX, &o.DriverID, &o.Driver.Name, &o.Driver.LicensePlate, &o.Driver.Phone, &o.Driver.HTX,
		&o.SaleUsername, &o.SaleName,
		&o.LogoQty, &o.CardQty, &o.TShirtQty, &o.TotalAmount,
		&o.PaymentMethod, &o.DeliveryMethod, &o.DeliveryAddress, &o.Details,
		&o.DraftID, &o.CreatedAt)
	o.Driver.ID = o.DriverID
	return o, err
}

func (r *Repo) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// ListOrders returns matching orders, newest first.
func (r *Repo) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	where, args := f.where()
	rows, err := r.DB.Query(ctx, orderSelect+where+` ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
