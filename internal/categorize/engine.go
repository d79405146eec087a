package categorize

import (
	"log"
	"sort"
	"strings"
)

// Snapshot is the rule set an Engine works from: built-in defaults merged
// with the active learned and user rules as loaded from the store at the
// start of a categorization pass. Engines never read ambient state; a fresh
// snapshot must be loaded to see later rule writes.
type Snapshot struct {
	Rules      []Rule
	Categories map[string]Category
	Types      []TypeKeywords
}

// NewSnapshot merges stored rules and categories over the built-in defaults.
func NewSnapshot(d Defaults, stored []Rule, storedCategories []Category) Snapshot {
	cats := make(map[string]Category, len(d.Categories)+len(storedCategories))
	for _, c := range d.Categories {
		cats[c.ID] = c
	}
	for _, c := range storedCategories {
		cats[c.ID] = c
	}

	rules := make([]Rule, 0, len(d.Rules)+len(stored))
	rules = append(rules, d.Rules...)
	rules = append(rules, stored...)

	return Snapshot{Rules: rules, Categories: cats, Types: d.Types}
}

// CategoryList returns the merged categories sorted by id.
func (s Snapshot) CategoryList() []Category {
	out := make([]Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Engine assigns categories and transaction types from one rule snapshot.
// For a fixed snapshot, Categorize is deterministic.
type Engine struct {
	rules      []Rule
	categories map[string]Category
	types      []TypeKeywords
}

// NewEngine compiles and orders the snapshot's rules: active only, priority
// descending, most recently created first among equals. Rules with invalid
// patterns degrade to substring matching with a logged diagnostic.
func NewEngine(snap Snapshot) *Engine {
	rules := make([]Rule, 0, len(snap.Rules))
	for _, r := range snap.Rules {
		if !r.IsActive {
			continue
		}
		if err := r.compile(); err != nil {
			log.Printf("[CATEGORIZE] %v; falling back to substring match", err)
		}
		rules = append(rules, r)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].CreatedAt.After(rules[j].CreatedAt)
	})
	return &Engine{rules: rules, categories: snap.Categories, types: snap.Types}
}

// Categorize returns the category id for a transaction. isExpense restricts
// candidates to categories of the matching polarity, so an expense never
// lands in an income-only category or vice versa. The first matching rule in
// priority order wins; no match falls back to FallbackCategoryID.
func (e *Engine) Categorize(description, txnType string, isExpense bool) string {
	desc := Normalize(description)
	typ := Normalize(txnType)

	for _, r := range e.rules {
		if !e.polarityAllows(r.CategoryID, isExpense) {
			continue
		}
		if r.Matches(desc, typ) {
			return r.CategoryID
		}
	}
	return FallbackCategoryID
}

// DetectType assigns a coarse transaction-type label from the description.
// This is metadata independent of categorization.
func (e *Engine) DetectType(description string) string {
	desc := Normalize(description)
	for _, t := range e.types {
		for _, kw := range t.Keywords {
			if strings.Contains(desc, kw) {
				return t.Type
			}
		}
	}
	return "other"
}

// Categories exposes the snapshot's category table.
func (e *Engine) Categories() map[string]Category {
	return e.categories
}

func (e *Engine) polarityAllows(categoryID string, isExpense bool) bool {
	c, ok := e.categories[categoryID]
	if !ok {
		// Unknown categories (e.g. user-created after this snapshot) are not
		// polarity-restricted.
		return true
	}
	switch c.Kind {
	case KindExpense:
		return isExpense
	case KindIncome:
		return !isExpense
	default:
		return true
	}
}
