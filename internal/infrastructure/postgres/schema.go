package postgres

import (
	"context"
	"fmt"
)

// schema DDL idempotente. Las líneas de pedido se guardan como JSONB en la fila del pedido.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		code          TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		price         NUMERIC(14,2) NOT NULL DEFAULT 0,
		points        INTEGER NOT NULL DEFAULT 0,
		stock         INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		initial_stock INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		points        INTEGER NOT NULL DEFAULT 0,
		created_by    TEXT NOT NULL DEFAULT '',
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (lower(email))`,

	`CREATE TABLE IF NOT EXISTS sales (
		id         TEXT PRIMARY KEY,
		party      TEXT NOT NULL,
		party_id   TEXT NOT NULL DEFAULT '',
		items      JSONB NOT NULL,
		total      NUMERIC(14,2) NOT NULL,
		points     INTEGER NOT NULL DEFAULT 0,
		status     TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_party_id ON sales (party_id)`,

	`CREATE TABLE IF NOT EXISTS purchases (
		id         TEXT PRIMARY KEY,
		party      TEXT NOT NULL,
		party_id   TEXT NOT NULL DEFAULT '',
		items      JSONB NOT NULL,
		total      NUMERIC(14,2) NOT NULL,
		points     INTEGER NOT NULL DEFAULT 0,
		status     TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_created_at ON purchases (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS stock_history (
		id           TEXT PRIMARY KEY,
		product_code TEXT NOT NULL REFERENCES products (code),
		change       INTEGER NOT NULL CHECK (change <> 0),
		reason       TEXT NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		created_by   TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_history_product ON stock_history (product_code, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_history_created_at ON stock_history (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS stock_outbox (
		id           TEXT PRIMARY KEY,
		entry_id     TEXT NOT NULL,
		product_code TEXT NOT NULL,
		change       INTEGER NOT NULL,
		stock_after  INTEGER NOT NULL,
		reason       TEXT NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		occurred_at  TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_outbox_pending ON stock_outbox (occurred_at) WHERE published_at IS NULL`,
}

// EnsureSchema crea tablas e índices si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
