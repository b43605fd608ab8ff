package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresKV keeps the store in a single kv_store table, for devices that
// already run a local database.
type PostgresKV struct {
	db *sqlx.DB
}

// OpenPostgresKV connects and makes sure the table exists.
func OpenPostgresKV(ctx context.Context, dsn string) (*PostgresKV, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	kv := NewPostgresKV(db)
	if err := kv.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

func NewPostgresKV(db *sqlx.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("store: create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresKV) Close() error {
	return p.db.Close()
}
