package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuleStore is an in-memory RuleStore for learner tests.
type fakeRuleStore struct {
	rules      []Rule
	findErr    error
	insertErr  error
	maxPrioErr error
}

func (f *fakeRuleStore) FindLearnedRuleByPattern(ctx context.Context, pattern string) (*Rule, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.rules {
		if f.rules[i].Learned && f.rules[i].Pattern == pattern {
			return &f.rules[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRuleStore) InsertLearnedRule(ctx context.Context, r Rule) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rules = append(f.rules, r)
	return nil
}

func (f *fakeRuleStore) ReinforceLearnedRule(ctx context.Context, id, categoryID string, priority int) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules[i].CategoryID = categoryID
			f.rules[i].Priority = priority
			return nil
		}
	}
	return errors.New("rule not found")
}

func (f *fakeRuleStore) MaxLearnedPriority(ctx context.Context) (int, error) {
	if f.maxPrioErr != nil {
		return 0, f.maxPrioErr
	}
	max := 0
	for _, r := range f.rules {
		if r.Learned && r.Priority > max {
			max = r.Priority
		}
	}
	return max, nil
}

func TestDerivePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CARTE CARREFOUR PARIS 05/03", "carte carrefour paris"},
		{"PRLV SEPA NETFLIX REF 829131", "prlv sepa netflix"},
		{"VIR M DUPONT", "vir dupont"},
		{"12/03/2024 CARTE LIDL", "carte lidl"},
		{"829131 12345", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DerivePattern(tt.in), "DerivePattern(%q)", tt.in)
	}
}

func TestDerivePatternQuotesMetaChars(t *testing.T) {
	got := DerivePattern("H&M PARIS")
	assert.Equal(t, "h&m paris", got)

	got = DerivePattern("CANAL+ ABONNEMENT")
	assert.Equal(t, `canal\+ abonnement`, got)
}

func TestLearnFromCorrectionCreatesRule(t *testing.T) {
	st := &fakeRuleStore{}
	l := NewLearner(st)

	l.LearnFromCorrection(context.Background(), Correction{
		Description:        "CARTE CARREFOUR PARIS 05/03",
		IsExpense:          true,
		PreviousCategoryID: "other",
	}, "groceries")

	require.Len(t, st.rules, 1)
	r := st.rules[0]
	assert.Equal(t, "groceries", r.CategoryID)
	assert.Equal(t, "carte carrefour paris", r.Pattern)
	assert.Equal(t, FieldDescription, r.Field)
	assert.True(t, r.Learned)
	assert.True(t, r.IsActive)
	assert.GreaterOrEqual(t, r.Priority, LearnedPriorityFloor)
}

func TestLearnedRuleOutranksBuiltins(t *testing.T) {
	st := &fakeRuleStore{}
	l := NewLearner(st)
	l.LearnFromCorrection(context.Background(), Correction{
		Description: "CARTE CARREFOUR PARIS",
		IsExpense:   true,
	}, "restaurants")

	d, err := LoadDefaults()
	require.NoError(t, err)
	e := NewEngine(NewSnapshot(d, st.rules, nil))

	// The builtin groceries rule also matches, but the learned rule wins.
	assert.Equal(t, "restaurants", e.Categorize("CARTE CARREFOUR PARIS", "", true))
}

func TestLearnFromCorrectionReinforcesExisting(t *testing.T) {
	st := &fakeRuleStore{}
	l := NewLearner(st)
	ctx := context.Background()

	l.LearnFromCorrection(ctx, Correction{Description: "CARTE CARREFOUR PARIS"}, "groceries")
	require.Len(t, st.rules, 1)

	// Same merchant corrected again toward another category: no duplicate,
	// the existing rule is re-pointed and bumped.
	l.LearnFromCorrection(ctx, Correction{Description: "CARTE CARREFOUR PARIS 9912"}, "shopping")
	require.Len(t, st.rules, 1)
	assert.Equal(t, "shopping", st.rules[0].CategoryID)
	assert.Equal(t, LearnedPriorityFloor+1, st.rules[0].Priority)
}

func TestLearnFromCorrectionNoStablePattern(t *testing.T) {
	st := &fakeRuleStore{}
	l := NewLearner(st)
	l.LearnFromCorrection(context.Background(), Correction{Description: "829131 12345"}, "groceries")
	assert.Empty(t, st.rules)
}

func TestLearnFromCorrectionSwallowsStoreErrors(t *testing.T) {
	ctx := context.Background()

	// Failures never panic and never create rules.
	st := &fakeRuleStore{findErr: errors.New("db down")}
	NewLearner(st).LearnFromCorrection(ctx, Correction{Description: "CARTE LIDL"}, "groceries")
	assert.Empty(t, st.rules)

	st = &fakeRuleStore{insertErr: errors.New("db down")}
	NewLearner(st).LearnFromCorrection(ctx, Correction{Description: "CARTE LIDL"}, "groceries")
	assert.Empty(t, st.rules)

	st = &fakeRuleStore{maxPrioErr: errors.New("db down")}
	NewLearner(st).LearnFromCorrection(ctx, Correction{Description: "CARTE LIDL"}, "groceries")
	assert.Empty(t, st.rules)
}

func TestLearnedPrioritiesGrow(t *testing.T) {
	st := &fakeRuleStore{}
	l := NewLearner(st)
	ctx := context.Background()

	l.LearnFromCorrection(ctx, Correction{Description: "CARTE LIDL"}, "groceries")
	l.LearnFromCorrection(ctx, Correction{Description: "CARTE FNAC"}, "shopping")
	require.Len(t, st.rules, 2)
	assert.Equal(t, LearnedPriorityFloor, st.rules[0].Priority)
	assert.Equal(t, LearnedPriorityFloor+1, st.rules[1].Priority)
}
