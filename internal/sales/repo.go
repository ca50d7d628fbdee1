package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/htx-sale/internal/billing"
)

type Repo struct{ DB *pgxpool.Pool }

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewID builds {prefix}-{htx}-{timestamp}{suffix} ids for server records.
func NewID(prefix, htx string, now time.Time) string {
	return billing.MakeID(prefix, htx, now, billing.RandomSuffix())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repo) ListCooperatives(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT name FROM cooperatives ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *Repo) CooperativeExists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM cooperatives WHERE name=$1)`, name).Scan(&ok)
	return ok, err
}

func (r *Repo) GetInventory(ctx context.Context, htx string) (InventoryRow, error) {
	row := InventoryRow{Name: htx}
	err := r.DB.QueryRow(ctx, `SELECT logo_stock, card_stock, tshirt_stock FROM inventory WHERE htx=$1`, htx).
		Scan(&row.LogoStock, &row.CardStock, &row.TShirtStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return row, ErrUnknownHTX
	}
	return row, err
}

// ListInventory returns one row per cooperative, zero stock when none was set.
func (r *Repo) ListInventory(ctx context.Context) ([]InventoryRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.name, COALESCE(i.logo_stock,0), COALESCE(i.card_stock,0), COALESCE(i.tshirt_stock,0)
		FROM cooperatives c LEFT JOIN inventory i ON i.htx = c.name
		ORDER BY c.position, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryRow
	for rows.Next() {
		var x InventoryRow
		if err := rows.Scan(&x.Name, &x.LogoStock, &x.CardStock, &x.TShirtStock); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// UpsertInventory overwrites one cooperative's stock. Negative values are stored as 0.
func (r *Repo) UpsertInventory(ctx context.Context, row InventoryRow) (InventoryRow, error) {
	row.LogoStock = max(0, row.LogoStock)
	row.CardStock = max(0, row.CardStock)
	row.TShirtStock = max(0, row.TShirtStock)

	ok, err := r.CooperativeExists(ctx, row.Name)
	if err != nil {
		return row, err
	}
	if !ok {
		return row, ErrUnknownHTX
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO inventory(htx, logo_stock, card_stock, tshirt_stock)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (htx) DO UPDATE
		SET logo_stock=EXCLUDED.logo_stock, card_stock=EXCLUDED.card_stock,
		    tshirt_stock=EXCLUDED.tshirt_stock, updated_at=now()`,
		row.Name, row.LogoStock, row.CardStock, row.TShirtStock)
	return row, err
}

func (r *Repo) GetPricing(ctx context.Context) (billing.PriceList, error) {
	return getPricing(ctx, r.DB)
}

func getPricing(ctx context.Context, q querier) (billing.PriceList, error) {
	var p billing.PriceList
	err := q.QueryRow(ctx, `SELECT logo_price, card_price, tshirt_price FROM pricing WHERE id=1`).
		Scan(&p.Logo, &p.Card, &p.TShirt)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.DefaultPrices(), nil
	}
	return p, err
}

func (r *Repo) SavePricing(ctx context.Context, p billing.PriceList) (billing.PriceList, error) {
	p = billing.PriceList{Logo: max(0, p.Logo), Card: max(0, p.Card), TShirt: max(0, p.TShirt)}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO pricing(id, logo_price, card_price, tshirt_price) VALUES (1,$1,$2,$3)
		ON CONFLICT (id) DO UPDATE
		SET logo_price=EXCLUDED.logo_price, card_price=EXCLUDED.card_price,
		    tshirt_price=EXCLUDED.tshirt_price, updated_at=now()`,
		p.Logo, p.Card, p.TShirt)
	return p, err
}
