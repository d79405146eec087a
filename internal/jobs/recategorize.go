package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/logger"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

// categoryUpdate is one transaction that gained a category this run.
type categoryUpdate struct {
	txnID      string
	categoryID string
}

// ProcessUncategorizedTransactions re-runs the rule engine over every stored
// transaction still on the fallback category and not manually edited. Rules
// learned or created since the original import get a chance to claim them.
// batchSize bounds how many rows are fetched and bulk-updated at a time.
// Returns how many transactions gained a category.
func ProcessUncategorizedTransactions(st *store.Store, batchSize int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	startTime := time.Now()

	// Bulk updates go through database/sql + pq.Array; build the connection
	// from the shared pool's config.
	cfg := st.Pool().Config().ConnConfig
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return 0, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	var totalCount int
	err = sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = 'other' AND is_manually_edited = false`).
		Scan(&totalCount)
	if err != nil {
		return 0, fmt.Errorf("failed to count uncategorized transactions: %w", err)
	}
	if totalCount == 0 {
		logger.GlobalLogger.LogAudit("Re-categorization: nothing uncategorized")
		return 0, nil
	}
	logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization: %d uncategorized transactions to process", totalCount))

	// One rule snapshot for the whole run; corrections made while the job
	// runs are picked up next time.
	snap, err := st.LoadRuleSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load rule snapshot: %w", err)
	}
	engine := categorize.NewEngine(snap)

	offset := 0
	totalProcessed := 0
	totalCategorized := 0

	for {
		rows, err := sqlDB.QueryContext(ctx, `
			SELECT transaction_id, description, COALESCE(txn_type, ''), amount
			FROM transactions
			WHERE category_id = 'other' AND is_manually_edited = false
			ORDER BY txn_date DESC
			LIMIT $1 OFFSET $2`, batchSize, offset)
		if err != nil {
			return totalCategorized, fmt.Errorf("failed to query uncategorized batch at offset %d: %w", offset, err)
		}

		type txnRow struct {
			id          string
			description string
			txnType     string
			amount      float64
		}
		var txns []txnRow
		for rows.Next() {
			var tr txnRow
			if err := rows.Scan(&tr.id, &tr.description, &tr.txnType, &tr.amount); err != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization: failed to scan row: %v", err))
				continue
			}
			txns = append(txns, tr)
		}
		rows.Close()

		if len(txns) == 0 {
			break
		}

		updates := make([]categoryUpdate, 0, len(txns))
		for _, tr := range txns {
			totalProcessed++
			category := engine.Categorize(tr.description, tr.txnType, tr.amount < 0)
			if category != categorize.FallbackCategoryID {
				updates = append(updates, categoryUpdate{txnID: tr.id, categoryID: category})
				totalCategorized++
			}
		}

		if len(updates) > 0 {
			if err := bulkUpdateCategories(ctx, sqlDB, updates); err != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization: bulk update failed at offset %d, falling back to row updates: %v", offset, err))
				for _, u := range updates {
					_, err := sqlDB.ExecContext(ctx,
						`UPDATE transactions SET category_id = $1 WHERE transaction_id = $2`,
						u.categoryID, u.txnID)
					if err != nil {
						logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization: failed to update %s: %v", u.txnID, err))
					}
				}
			}
		}

		// Categorized rows leave the WHERE clause, so only advance past the
		// ones that stayed uncategorized.
		offset += len(txns) - len(updates)
		if len(txns) < batchSize {
			break
		}
	}

	duration := time.Since(startTime)
	summary := fmt.Sprintf("Re-categorization completed: %d/%d matched, %d remain uncategorized (%v)",
		totalCategorized, totalProcessed, totalProcessed-totalCategorized, duration.Round(time.Millisecond))
	logger.GlobalLogger.LogAudit(summary)
	log.Println(summary)
	return totalCategorized, nil
}

// bulkUpdateCategories applies a batch in one UPDATE via unnest.
func bulkUpdateCategories(ctx context.Context, db *sql.DB, updates []categoryUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	txnIDs := make([]string, len(updates))
	categoryIDs := make([]string, len(updates))
	for i, u := range updates {
		txnIDs[i] = u.txnID
		categoryIDs[i] = u.categoryID
	}
	_, err := db.ExecContext(ctx, `
		UPDATE transactions AS t
		SET category_id = u.category_id
		FROM (
			SELECT unnest($1::text[]) AS txn_id, unnest($2::text[]) AS category_id
		) AS u
		WHERE t.transaction_id = u.txn_id`,
		pq.Array(txnIDs), pq.Array(categoryIDs))
	return err
}
