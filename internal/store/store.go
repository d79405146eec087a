package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the shared pgx pool with the persistence operations of the
// tracker: transactions, categories and categorization rules.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for components that manage their own
// connections (the re-categorization job).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// EnsureSchema creates the tables on first start. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			category_id TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT 'expense',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS category_rules (
			rule_id     TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			pattern     TEXT NOT NULL,
			field       TEXT NOT NULL DEFAULT 'description',
			priority    INT  NOT NULL DEFAULT 0,
			is_active   BOOLEAN NOT NULL DEFAULT true,
			learned     BOOLEAN NOT NULL DEFAULT false,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id     TEXT PRIMARY KEY,
			batch_id           TEXT NOT NULL,
			filename           TEXT,
			txn_date           DATE NOT NULL,
			description        TEXT NOT NULL,
			txn_type           TEXT,
			amount             DOUBLE PRECISION NOT NULL,
			category_id        TEXT NOT NULL DEFAULT 'other',
			source             TEXT NOT NULL DEFAULT 'import',
			is_manually_edited BOOLEAN NOT NULL DEFAULT false,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_category_rules_pattern ON category_rules (pattern) WHERE learned`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
