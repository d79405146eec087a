package statements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/ingest"
)

func testEngine(t *testing.T) *categorize.Engine {
	t.Helper()
	d, err := categorize.LoadDefaults()
	require.NoError(t, err)
	return categorize.NewEngine(categorize.NewSnapshot(d, nil, nil))
}

func TestMaterialize(t *testing.T) {
	csv := strings.Join([]string{
		"Date;Libellé;Débit;Crédit",
		"05/03/2024;CARTE CARREFOUR PARIS;42,50;",
		"06/03/2024;VIR SEPA SALAIRE MARS;;1500,00",
	}, "\n")
	res, err := ingest.ParseStatement("releve.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	txns := materialize(res, testEngine(t), "batch-1")
	require.Len(t, txns, 2)

	assert.NotEmpty(t, txns[0].ID)
	assert.NotEqual(t, txns[0].ID, txns[1].ID)
	assert.Equal(t, "batch-1", txns[0].BatchID)
	assert.Equal(t, "releve.csv", txns[0].Filename)
	assert.Equal(t, "import", txns[0].Source)

	assert.Equal(t, -42.5, txns[0].Amount)
	assert.Equal(t, "groceries", txns[0].CategoryID)
	assert.Equal(t, "card", txns[0].Type)

	assert.Equal(t, 1500.0, txns[1].Amount)
	assert.Equal(t, "salary", txns[1].CategoryID)
	assert.Equal(t, "transfer", txns[1].Type)
}

func TestMaterializeKeepsExplicitType(t *testing.T) {
	csv := strings.Join([]string{
		"Date;Type;Libellé;Montant",
		"05/03/2024;CHEQUE;LOYER MARS;-800,00",
	}, "\n")
	res, err := ingest.ParseStatement("releve.csv", strings.NewReader(csv))
	require.NoError(t, err)

	txns := materialize(res, testEngine(t), "b")
	require.Len(t, txns, 1)
	// The statement's own type column wins over keyword detection.
	assert.Equal(t, "CHEQUE", txns[0].Type)
	assert.Equal(t, "housing", txns[0].CategoryID)
}

func TestMaterializeEmptyResult(t *testing.T) {
	res := &ingest.ParseResult{Filename: "empty.csv"}
	assert.Empty(t, materialize(res, testEngine(t), "b"))
}
