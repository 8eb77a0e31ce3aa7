package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads the menu from the menu_items table.
type PGSource struct{ DB *pgxpool.Pool }

func (p *PGSource) Items(ctx context.Context) ([]MenuItem, error) {
	rows, err := p.DB.Query(ctx, `
		SELECT id, name, description, price, image, rating::float8, cook_time,
		       category, is_popular, is_vegetarian, is_spicy
		FROM menu_items
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Image, &m.Rating,
			&m.CookTime, &m.Category, &m.IsPopular, &m.IsVegetarian, &m.IsSpicy); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// SeedIfEmpty inserts items when the table has no rows yet.
func (p *PGSource) SeedIfEmpty(ctx context.Context, items []MenuItem) (bool, error) {
	var n int
	if err := p.DB.QueryRow(ctx, `SELECT count(*) FROM menu_items`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, m := range items {
		batch.Queue(`
			INSERT INTO menu_items(id, name, description, price, image, rating, cook_time,
			                       category, is_popular, is_vegetarian, is_spicy)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (id) DO NOTHING`,
			m.ID, m.Name, m.Description, m.Price.String(), m.Image, m.Rating, m.CookTime,
			m.Category, m.IsPopular, m.IsVegetarian, m.IsSpicy)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
