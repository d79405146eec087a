package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
)

// LoadRuleSnapshot reads all active stored rules and user categories and
// merges them with the built-in defaults. Called at the start of every
// categorization pass so rule writes from earlier corrections are visible.
func (s *Store) LoadRuleSnapshot(ctx context.Context) (categorize.Snapshot, error) {
	defaults, err := categorize.LoadDefaults()
	if err != nil {
		return categorize.Snapshot{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT rule_id, category_id, pattern, field, priority, is_active, learned, created_at
		FROM category_rules
		WHERE is_active = true
		ORDER BY priority DESC, created_at DESC`)
	if err != nil {
		return categorize.Snapshot{}, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()

	var stored []categorize.Rule
	for rows.Next() {
		var r categorize.Rule
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.Pattern, &r.Field, &r.Priority, &r.IsActive, &r.Learned, &r.CreatedAt); err != nil {
			return categorize.Snapshot{}, fmt.Errorf("failed to scan rule: %w", err)
		}
		stored = append(stored, r)
	}
	if err := rows.Err(); err != nil {
		return categorize.Snapshot{}, err
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		return categorize.Snapshot{}, err
	}

	return categorize.NewSnapshot(defaults, stored, cats), nil
}

// FindLearnedRuleByPattern returns the learned rule with the exact stored
// pattern, or nil when none exists.
func (s *Store) FindLearnedRuleByPattern(ctx context.Context, pattern string) (*categorize.Rule, error) {
	var r categorize.Rule
	err := s.pool.QueryRow(ctx, `
		SELECT rule_id, category_id, pattern, field, priority, is_active, learned, created_at
		FROM category_rules
		WHERE learned = true AND pattern = $1
		ORDER BY created_at DESC
		LIMIT 1`, pattern).
		Scan(&r.ID, &r.CategoryID, &r.Pattern, &r.Field, &r.Priority, &r.IsActive, &r.Learned, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up learned rule: %w", err)
	}
	return &r, nil
}

// InsertLearnedRule persists a freshly derived rule.
func (s *Store) InsertLearnedRule(ctx context.Context, r categorize.Rule) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO category_rules (rule_id, category_id, pattern, field, priority, is_active, learned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7)`,
		r.ID, r.CategoryID, r.Pattern, r.Field, r.Priority, r.IsActive, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert learned rule: %w", err)
	}
	return nil
}

// ReinforceLearnedRule re-points an existing learned rule at a (possibly
// new) category and raises its priority, refreshing created_at so recency
// tie-breaks favor it.
func (s *Store) ReinforceLearnedRule(ctx context.Context, id, categoryID string, priority int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE category_rules
		SET category_id = $2, priority = $3, is_active = true, created_at = now()
		WHERE rule_id = $1 AND learned = true`,
		id, categoryID, priority)
	if err != nil {
		return fmt.Errorf("failed to reinforce rule %s: %w", id, err)
	}
	return nil
}

// MaxLearnedPriority returns the highest priority among learned rules, or 0
// when none exist yet.
func (s *Store) MaxLearnedPriority(ctx context.Context) (int, error) {
	var max int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(priority), 0) FROM category_rules WHERE learned = true`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read learned priorities: %w", err)
	}
	return max, nil
}

// CreateRule persists a user-defined rule.
func (s *Store) CreateRule(ctx context.Context, r categorize.Rule) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO category_rules (rule_id, category_id, pattern, field, priority, is_active, learned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now())`,
		r.ID, r.CategoryID, r.Pattern, r.Field, r.Priority, r.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// SetRuleActive enables or disables a rule without deleting it.
func (s *Store) SetRuleActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE category_rules SET is_active = $2 WHERE rule_id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to toggle rule %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s not found", id)
	}
	return nil
}

// ListRules returns every stored rule, newest first.
func (s *Store) ListRules(ctx context.Context) ([]categorize.Rule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rule_id, category_id, pattern, field, priority, is_active, learned, created_at
		FROM category_rules
		ORDER BY priority DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var out []categorize.Rule
	for rows.Next() {
		var r categorize.Rule
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.Pattern, &r.Field, &r.Priority, &r.IsActive, &r.Learned, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateCategory persists a user-defined category.
func (s *Store) CreateCategory(ctx context.Context, c categorize.Category) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (category_id, name, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (category_id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind`,
		c.ID, c.Name, c.Kind)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListCategories returns the user-defined categories.
func (s *Store) ListCategories(ctx context.Context) ([]categorize.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT category_id, name, kind FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []categorize.Category
	for rows.Next() {
		var c categorize.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
