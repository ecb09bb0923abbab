package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresKV stores sections in the resume_sections table created by the
// migrations. The pool is shared and closed by its owner.
type PostgresKV struct {
	pool *pgxpool.Pool
}

func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

func (r *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT value::text FROM resume_sections WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO resume_sections (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value))
	return err
}

func (r *PostgresKV) Close() error { return nil }
