package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		in   string
		kind CellKind
	}{
		{"", KindEmpty},
		{"   ", KindEmpty},
		{"42", KindNumber},
		{"-12.5", KindNumber},
		{"CARTE 12/03 CARREFOUR", KindText},
		{"12/03/2024", KindText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, classifyCell(tt.in).Kind(), "classifyCell(%q)", tt.in)
	}
}

func TestClassifyCellKeepsOriginalText(t *testing.T) {
	c := classifyCell(" 42.50 ")
	v, ok := c.Number()
	require.True(t, ok)
	assert.Equal(t, 42.5, v)
	assert.Equal(t, " 42.50 ", c.String())
}

func TestDecodeCSVSemicolon(t *testing.T) {
	csv := "Date;Libellé;Débit;Crédit\n05/03/2024;CARTE CARREFOUR;42,50;\n"
	sheet, err := Decode("releve.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, sheet, 2)
	assert.Equal(t, "Libellé", sheet[0][1].String())
	assert.Equal(t, "42,50", sheet[1][2].String())
}

func TestDecodeCSVComma(t *testing.T) {
	csv := "Date,Description,Amount\n2024-03-05,Salary,1500.00\n"
	sheet, err := Decode("export.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, sheet, 2)

	v, ok := sheet[1][2].Number()
	require.True(t, ok)
	assert.Equal(t, 1500.0, v)
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode("statement.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFromStringsRaggedRows(t *testing.T) {
	sheet := FromStrings([][]string{
		{"a", "b", "c"},
		{"only one"},
		{},
	})
	require.Len(t, sheet, 3)
	assert.Len(t, sheet[1], 1)
	assert.Empty(t, sheet[2])
}
