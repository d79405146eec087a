package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/sheet"
)

func TestParseStatementCSVEndToEnd(t *testing.T) {
	csv := strings.Join([]string{
		"Relevé de compte;;;",
		";;;",
		"Date;Libellé;Débit;Crédit",
		"05/03/2024;CARTE CARREFOUR;42,50;",
		"06/03/2024;VIREMENT SALAIRE;;1500,00",
	}, "\n")

	res, err := ParseStatement("releve.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, 0, res.Mapping.Date)
	assert.Equal(t, 1, res.Mapping.Description)
	assert.Equal(t, 2, res.Mapping.Debit)
	assert.Equal(t, 3, res.Mapping.Credit)

	assert.Equal(t, "2024-03-05", res.Rows[0].Date)
	assert.Equal(t, "CARTE CARREFOUR", res.Rows[0].Description)
	assert.Equal(t, -42.5, res.Rows[0].Amount())
	assert.Equal(t, 1500.0, res.Rows[1].Amount())
}

func TestParseSheetTooFewRows(t *testing.T) {
	res := ParseSheet("tiny.csv", sheet.FromStrings([][]string{
		{"Date", "Libellé", "Montant"},
	}))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "file", res.Errors[0].Field)
	assert.Empty(t, res.Rows)
}

func TestParseSheetExactlyTwoRows(t *testing.T) {
	res := ParseSheet("min.csv", sheet.FromStrings([][]string{
		{"Date", "Libellé", "Montant"},
		{"05/03/2024", "CARTE A", "-10,00"},
	}))
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2024-03-05", res.Rows[0].Date)
}

func TestParseSheetRowErrorsCarryAbsoluteIndexes(t *testing.T) {
	res := ParseSheet("err.csv", sheet.FromStrings([][]string{
		{"Titre du relevé", "", ""},
		{"Date", "Libellé", "Montant"},
		{"not a date", "CARTE A", "-10,00"},
		{"06/03/2024", "CARTE B", "-20,00"},
	}))
	require.Len(t, res.Errors, 1)
	// Row index 2 in the source sheet, right after the header at index 1.
	assert.Equal(t, 2, res.Errors[0].Row)
	require.Len(t, res.Rows, 1)
}

func TestParseStatementUnsupportedExtension(t *testing.T) {
	_, err := ParseStatement("statement.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, sheet.ErrUnsupportedFormat)
}
