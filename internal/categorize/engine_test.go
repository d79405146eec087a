package categorize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	d, err := LoadDefaults()
	require.NoError(t, err)
	return NewEngine(NewSnapshot(d, nil, nil))
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)
	assert.NotEmpty(t, d.Categories)
	assert.NotEmpty(t, d.Rules)
	assert.NotEmpty(t, d.Types)

	var fallbackSeen bool
	for _, c := range d.Categories {
		if c.ID == FallbackCategoryID {
			fallbackSeen = true
			assert.Equal(t, KindAny, c.Kind)
		}
	}
	assert.True(t, fallbackSeen, "fallback category must ship with the defaults")
}

func TestCategorizeBuiltins(t *testing.T) {
	e := defaultEngine(t)
	tests := []struct {
		desc      string
		isExpense bool
		want      string
	}{
		{"CARTE 05/03 CARREFOUR PARIS", true, "groceries"},
		{"PRLV SEPA NETFLIX", true, "utilities"},
		{"VIR SEPA SALAIRE MARS", false, "salary"},
		{"RETRAIT DAB 06/03 PARIS", true, "cash"},
		{"PAIEMENT CB PHARMACIE CENTRALE", true, "health"},
		{"something nobody has a rule for", true, FallbackCategoryID},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Categorize(tt.desc, "", tt.isExpense), "Categorize(%q)", tt.desc)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	e := defaultEngine(t)
	first := e.Categorize("CARTE CARREFOUR", "", true)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Categorize("CARTE CARREFOUR", "", true))
	}
}

func TestCategorizePolarityRestriction(t *testing.T) {
	e := defaultEngine(t)
	// "salaire" only matches the income-only salary category; as an expense
	// the rule is skipped and the fallback applies.
	assert.Equal(t, "salary", e.Categorize("VIREMENT SALAIRE", "", false))
	assert.Equal(t, FallbackCategoryID, e.Categorize("VIREMENT SALAIRE", "", true))

	// Expense-only categories never claim income rows.
	assert.Equal(t, "groceries", e.Categorize("CARREFOUR", "", true))
	assert.Equal(t, FallbackCategoryID, e.Categorize("CARREFOUR", "", false))
}

func TestCategorizeTypeFieldRules(t *testing.T) {
	e := defaultEngine(t)
	assert.Equal(t, "cash", e.Categorize("OP 123456", "RETRAIT", true))
}

func TestCategorizePriorityOrder(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	now := time.Now().UTC()
	stored := []Rule{
		{ID: "low", CategoryID: "shopping", Pattern: "carrefour", Field: FieldDescription, Priority: 10, IsActive: true, CreatedAt: now},
		{ID: "high", CategoryID: "leisure", Pattern: "carrefour", Field: FieldDescription, Priority: 2000, IsActive: true, CreatedAt: now},
	}
	e := NewEngine(NewSnapshot(d, stored, nil))
	assert.Equal(t, "leisure", e.Categorize("CARREFOUR MARKET", "", true))
}

func TestCategorizeRecencyBreaksPriorityTies(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	stored := []Rule{
		{ID: "old", CategoryID: "shopping", Pattern: "boutique", Field: FieldDescription, Priority: 1000, IsActive: true, CreatedAt: older},
		{ID: "new", CategoryID: "leisure", Pattern: "boutique", Field: FieldDescription, Priority: 1000, IsActive: true, CreatedAt: newer},
	}
	e := NewEngine(NewSnapshot(d, stored, nil))
	assert.Equal(t, "leisure", e.Categorize("BOUTIQUE DU COIN", "", true))
}

func TestCategorizeInactiveRulesIgnored(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	stored := []Rule{
		{ID: "off", CategoryID: "leisure", Pattern: "zzzunique", Field: FieldDescription, Priority: 5000, IsActive: false, CreatedAt: time.Now()},
	}
	e := NewEngine(NewSnapshot(d, stored, nil))
	assert.Equal(t, FallbackCategoryID, e.Categorize("ZZZUNIQUE", "", true))
}

func TestCategorizeInvalidPatternFallsBackToSubstring(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	stored := []Rule{
		{ID: "bad", CategoryID: "leisure", Pattern: "foo[bar", Field: FieldDescription, Priority: 5000, IsActive: true, CreatedAt: time.Now()},
	}
	e := NewEngine(NewSnapshot(d, stored, nil))
	assert.Equal(t, "leisure", e.Categorize("xx FOO[BAR yy", "", true))
	assert.Equal(t, FallbackCategoryID, e.Categorize("foobar", "", true))
}

func TestCategorizeUnknownCategoryNotPolarityRestricted(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	stored := []Rule{
		{ID: "custom", CategoryID: "my-custom", Pattern: "spécial", Field: FieldDescription, Priority: 5000, IsActive: true, CreatedAt: time.Now()},
	}
	e := NewEngine(NewSnapshot(d, stored, nil))
	assert.Equal(t, "my-custom", e.Categorize("OPÉRATION SPÉCIAL", "", true))
	assert.Equal(t, "my-custom", e.Categorize("OPÉRATION SPÉCIAL", "", false))
}

func TestSnapshotUserCategoriesOverrideDefaults(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	snap := NewSnapshot(d, nil, []Category{{ID: "groceries", Name: "Alimentation", Kind: KindAny}})
	assert.Equal(t, "Alimentation", snap.Categories["groceries"].Name)
	assert.Equal(t, KindAny, snap.Categories["groceries"].Kind)
}

func TestDetectType(t *testing.T) {
	e := defaultEngine(t)
	tests := []struct {
		desc string
		want string
	}{
		{"CARTE 05/03 CARREFOUR", "card"},
		{"VIREMENT SALAIRE", "transfer"},
		{"PRLV SEPA EDF", "direct_debit"},
		{"CHEQUE 1234567", "check"},
		{"RETRAIT DAB PARIS", "withdrawal"},
		{"no keyword here", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.DetectType(tt.desc), "DetectType(%q)", tt.desc)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "carte carrefour paris", Normalize("  CARTE   Carrefour\tPARIS "))
	assert.Equal(t, "", Normalize("   "))
}
