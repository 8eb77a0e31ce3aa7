package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS menu_items (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	price         NUMERIC(10,2) NOT NULL CHECK (price > 0),
	image         TEXT NOT NULL DEFAULT '',
	rating        NUMERIC(2,1) NOT NULL DEFAULT 0,
	cook_time     TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL,
	is_popular    BOOLEAN NOT NULL DEFAULT false,
	is_vegetarian BOOLEAN NOT NULL DEFAULT false,
	is_spicy      BOOLEAN NOT NULL DEFAULT false
);
`

// Migrate creates the tables the storefront needs. Idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
