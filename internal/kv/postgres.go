package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores entries in kv_entries (see postgres.Migrate).
type Postgres struct{ DB *pgxpool.Pool }

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := p.DB.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.DB.Exec(ctx, `
		INSERT INTO kv_entries(key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.DB.Exec(ctx, `DELETE FROM kv_entries WHERE key=$1`, key)
	return err
}
