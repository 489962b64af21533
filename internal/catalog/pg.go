package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG resolves products from the catalog database.
type PG struct{ DB *pgxpool.Pool }

func (r *PG) Resolve(ctx context.Context, id string) (Product, bool, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price, old_price, category, image, rating, in_stock
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.OldPrice, &p.Category, &p.Image, &p.Rating, &p.InStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

func (r *PG) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price, old_price, category, image, rating, in_stock
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.OldPrice, &p.Category, &p.Image, &p.Rating, &p.InStock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
