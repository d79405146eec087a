package categorize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Field names the transaction attribute a rule matches against.
type Field string

const (
	FieldDescription Field = "description"
	FieldType        Field = "type"
)

// CategoryKind is the polarity of a category. Expense and income categories
// are disjoint; "any" categories match either side.
type CategoryKind string

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
	KindAny     CategoryKind = "any"
)

// FallbackCategoryID is assigned when no rule matches.
const FallbackCategoryID = "other"

// Learned rules start above this floor so they always outrank built-ins.
const LearnedPriorityFloor = 1000

// Category is a spending or income category.
type Category struct {
	ID   string       `json:"id" yaml:"id"`
	Name string       `json:"name" yaml:"name"`
	Kind CategoryKind `json:"kind" yaml:"kind"`
}

// Rule is one pattern-to-category association. Pattern is stored as portable
// text and compiled once at snapshot load; rules whose pattern is not a
// valid regexp degrade to literal substring matching.
type Rule struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Pattern    string    `json:"pattern"`
	Field      Field     `json:"field"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"is_active"`
	Learned    bool      `json:"learned"`
	CreatedAt  time.Time `json:"created_at"`

	re *regexp.Regexp
}

// compile validates and caches the matcher. Case-insensitivity comes from
// matching over already-normalized text, so the pattern itself is lowered.
func (r *Rule) compile() error {
	re, err := regexp.Compile(strings.ToLower(r.Pattern))
	if err != nil {
		return fmt.Errorf("rule %s: invalid pattern %q: %w", r.ID, r.Pattern, err)
	}
	r.re = re
	return nil
}

// Matches reports whether the rule hits the given normalized description or
// type text.
func (r *Rule) Matches(description, txnType string) bool {
	target := description
	if r.Field == FieldType {
		target = txnType
	}
	if target == "" {
		return false
	}
	if r.re != nil {
		return r.re.MatchString(target)
	}
	return strings.Contains(target, strings.ToLower(r.Pattern))
}

var reSpaces = regexp.MustCompile(`\s+`)

// Normalize folds text the way every matcher sees it: lower-cased with runs
// of whitespace collapsed to single spaces.
func Normalize(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ToLower(s), " "))
}
