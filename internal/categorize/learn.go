package categorize

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RuleStore is the persistence boundary for learned rules. A write made
// through it must be visible to the next snapshot load.
type RuleStore interface {
	FindLearnedRuleByPattern(ctx context.Context, pattern string) (*Rule, error)
	InsertLearnedRule(ctx context.Context, r Rule) error
	ReinforceLearnedRule(ctx context.Context, id, categoryID string, priority int) error
	MaxLearnedPriority(ctx context.Context) (int, error)
}

// Correction is the pre-correction state of a transaction whose category the
// user just changed.
type Correction struct {
	Description        string
	TxnType            string
	IsExpense          bool
	PreviousCategoryID string
}

// Learner turns user corrections into persisted categorization rules.
type Learner struct {
	store RuleStore
}

func NewLearner(store RuleStore) *Learner {
	return &Learner{store: store}
}

// LearnFromCorrection derives a rule from a corrected transaction so future
// imports of the same merchant auto-assign the corrected category. Learning
// is additive: nothing is ever deleted here, and a repeated correction for
// the same pattern reinforces the existing rule instead of stacking
// duplicates. Failures are logged and swallowed; a broken derivation must
// never block the user's edit from being saved.
func (l *Learner) LearnFromCorrection(ctx context.Context, c Correction, newCategoryID string) {
	pattern := DerivePattern(c.Description)
	if pattern == "" {
		log.Printf("[LEARN] no stable pattern derivable from %q; skipping", c.Description)
		return
	}

	maxPriority, err := l.store.MaxLearnedPriority(ctx)
	if err != nil {
		log.Printf("[LEARN] failed to read learned rule priorities: %v", err)
		return
	}
	priority := maxPriority + 1
	if priority < LearnedPriorityFloor {
		priority = LearnedPriorityFloor
	}

	existing, err := l.store.FindLearnedRuleByPattern(ctx, pattern)
	if err != nil {
		log.Printf("[LEARN] lookup failed for pattern %q: %v", pattern, err)
		return
	}
	if existing != nil {
		// Same merchant corrected again: move the rule to the new category
		// and bump it above every other learned rule.
		if err := l.store.ReinforceLearnedRule(ctx, existing.ID, newCategoryID, priority); err != nil {
			log.Printf("[LEARN] failed to reinforce rule %s: %v", existing.ID, err)
		}
		return
	}

	rule := Rule{
		ID:         uuid.New().String(),
		CategoryID: newCategoryID,
		Pattern:    pattern,
		Field:      FieldDescription,
		Priority:   priority,
		IsActive:   true,
		Learned:    true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.store.InsertLearnedRule(ctx, rule); err != nil {
		log.Printf("[LEARN] failed to persist rule for pattern %q: %v", pattern, err)
	}
}

var (
	reDigits   = regexp.MustCompile(`\d`)
	reDateLike = regexp.MustCompile(`^\d{1,4}[/.\-]\d{1,2}([/.\-]\d{1,4})?$`)
)

// maxPatternTokens caps the derived pattern length. The leading tokens of a
// bank label carry the merchant; the tail carries references and dates.
const maxPatternTokens = 3

// DerivePattern extracts a durable matching pattern from a transaction
// description: the leading run of alphabetic tokens, with reference numbers,
// dates and other numeric noise dropped so the pattern generalizes across
// repeat transactions of the same merchant. Returns "" when nothing stable
// remains. The result is regexp-quoted so the stored pattern matches
// literally.
func DerivePattern(description string) string {
	var kept []string
	for _, tok := range strings.Fields(Normalize(description)) {
		if reDateLike.MatchString(tok) {
			continue
		}
		if countDigits(tok) >= 3 || isMostlyDigits(tok) {
			continue
		}
		if len([]rune(tok)) < 2 {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == maxPatternTokens {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return regexp.QuoteMeta(strings.Join(kept, " "))
}

func countDigits(s string) int {
	return len(reDigits.FindAllString(s, -1))
}

func isMostlyDigits(s string) bool {
	n := len([]rune(s))
	if n == 0 {
		return true
	}
	return countDigits(s)*2 > n
}
