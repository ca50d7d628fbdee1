package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (r *Repo) ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, kind, htx, name, quantity, COALESCE(image_url,'')
	                              FROM catalog_items WHERE kind=$1 ORDER BY htx, name`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogItem
	for rows.Next() {
		var c CatalogItem
		if err := rows.Scan(&c.ID, &c.Kind, &c.HTX, &c.Name, &c.Quantity, &c.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CreateCatalogItem(ctx context.Context, c CatalogItem, now time.Time) (CatalogItem, error) {
	ok, err := r.CooperativeExists(ctx, c.HTX)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, ErrUnknownHTX
	}
	c.ID = NewID(c.Kind.idPrefix(), c.HTX, now)
	c.Quantity = max(0, c.Quantity)
	_, err = r.DB.Exec(ctx, `INSERT INTO catalog_items(id, kind, htx, name, quantity, image_url)
	                        VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))`,
		c.ID, string(c.Kind), c.HTX, c.Name, c.Quantity, c.ImageURL)
	return c, err
}

func (r *Repo) getCatalogItem(ctx context.Context, kind CatalogKind, id string) (CatalogItem, error) {
	var c CatalogItem
	err := r.DB.QueryRow(ctx, `SELECT id, kind, htx, name, quantity, COALESCE(image_url,'')
	                           FROM catalog_items WHERE id=$1 AND kind=$2`, id, string(kind)).
		Scan(&c.ID, &c.Kind, &c.HTX, &c.Name, &c.Quantity, &c.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// UpdateCatalogItem applies only the fields present in p.
func (r *Repo) UpdateCatalogItem(ctx context.Context, kind CatalogKind, id string, p CatalogPatch) (CatalogItem, error) {
	c, err := r.getCatalogItem(ctx, kind, id)
	if err != nil {
		return c, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Quantity != nil {
		c.Quantity = max(0, *p.Quantity)
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	_, err = r.DB.Exec(ctx, `UPDATE catalog_items SET name=$2, quantity=$3, image_url=NULLIF($4,'') WHERE id=$1`,
		c.ID, c.Name, c.Quantity, c.ImageURL)
	return c, err
}

func (r *Repo) DeleteCatalogItem(ctx context.Context, kind CatalogKind, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM catalog_items WHERE id=$1 AND kind=$2`, id, string(kind))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
