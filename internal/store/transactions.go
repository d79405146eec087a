package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transaction is the materialized entity produced from a ParsedRow plus its
// categorization result. Amount is signed: positive for credits, negative
// for debits.
type Transaction struct {
	ID               string    `json:"transaction_id"`
	BatchID          string    `json:"batch_id"`
	Filename         string    `json:"filename,omitempty"`
	Date             string    `json:"date"` // ISO YYYY-MM-DD
	Description      string    `json:"description"`
	Type             string    `json:"type"`
	Amount           float64   `json:"amount"`
	CategoryID       string    `json:"category_id"`
	Source           string    `json:"source"` // import | manual
	IsManuallyEdited bool      `json:"is_manually_edited"`
	CreatedAt        time.Time `json:"created_at"`
}

// InsertTransactions bulk-inserts an import batch with CopyFrom.
func (s *Store) InsertTransactions(ctx context.Context, txns []Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(txns))
	for i, t := range txns {
		rows[i] = []interface{}{
			t.ID, t.BatchID, t.Filename, t.Date, t.Description, t.Type,
			t.Amount, t.CategoryID, t.Source, t.IsManuallyEdited,
		}
	}
	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"transactions"},
		[]string{"transaction_id", "batch_id", "filename", "txn_date", "description", "txn_type", "amount", "category_id", "source", "is_manually_edited"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to stage transactions: %w", err)
	}
	return nil
}

const transactionColumns = `
	transaction_id, batch_id, COALESCE(filename, ''), to_char(txn_date, 'YYYY-MM-DD'),
	description, COALESCE(txn_type, ''), amount, category_id, source, is_manually_edited, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.BatchID, &t.Filename, &t.Date, &t.Description, &t.Type,
		&t.Amount, &t.CategoryID, &t.Source, &t.IsManuallyEdited, &t.CreatedAt)
	return t, err
}

// GetTransaction fetches one transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return &t, nil
}

// ListTransactions returns transactions newest first, optionally paginated.
// A nil limit returns everything.
func (s *Store) ListTransactions(ctx context.Context, limit, offset *int) ([]Transaction, error) {
	return s.listWhere(ctx, "", limit, offset)
}

// ListUncategorized returns transactions still carrying the fallback
// category and not yet touched by the user.
func (s *Store) ListUncategorized(ctx context.Context, limit, offset *int) ([]Transaction, error) {
	return s.listWhere(ctx, `WHERE category_id = 'other' AND is_manually_edited = false`, limit, offset)
}

func (s *Store) listWhere(ctx context.Context, where string, limit, offset *int) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + where + ` ORDER BY txn_date DESC, created_at DESC`
	args := []interface{}{}
	if limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransactionCategory applies a user correction. The manual-edit flag
// keeps the re-categorization job away from rows the user already decided.
func (s *Store) UpdateTransactionCategory(ctx context.Context, id, categoryID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET category_id = $2, is_manually_edited = true
		WHERE transaction_id = $1`, id, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}
