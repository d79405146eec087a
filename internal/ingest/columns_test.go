package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapColumnsFrenchHeaders(t *testing.T) {
	m := MapColumns([]string{"Date", "Libellé", "Débit", "Crédit"})
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 1, m.Description)
	assert.Equal(t, 2, m.Debit)
	assert.Equal(t, 3, m.Credit)
	assert.Equal(t, -1, m.Amount)
	assert.Equal(t, -1, m.Type)
}

func TestMapColumnsEnglishSingleAmount(t *testing.T) {
	m := MapColumns([]string{"Transaction Date", "Description", "Amount"})
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 1, m.Description)
	assert.Equal(t, 2, m.Amount)
	assert.Equal(t, -1, m.Debit)
}

func TestMapColumnsPrioritizedPatterns(t *testing.T) {
	// "date opération" must win the date slot over the bare "date de valeur".
	m := MapColumns([]string{"Date de valeur", "Date opération", "Libellé", "Montant"})
	assert.Equal(t, 1, m.Date)
}

func TestMapColumnsNoColumnReuse(t *testing.T) {
	// A single "Montant" header must not serve both amount and a later field.
	m := MapColumns([]string{"Date", "Montant", "Libellé"})
	assert.Equal(t, 1, m.Amount)
	assert.Equal(t, 2, m.Description)
}

func TestMapColumnsPositionalFallbackWide(t *testing.T) {
	m := MapColumns([]string{"c1", "c2", "c3", "c4", "c5"})
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 3, m.Debit)
	assert.Equal(t, 4, m.Credit)
}

func TestMapColumnsPositionalFallbackThreeColumns(t *testing.T) {
	m := MapColumns([]string{"c1", "c2", "c3"})
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 2, m.Amount)
	assert.Equal(t, -1, m.Debit)
	assert.Equal(t, -1, m.Credit)
}

func TestMapColumnsTypeDetection(t *testing.T) {
	m := MapColumns([]string{"Date", "Type d'opération", "Libellé", "Montant"})
	assert.Equal(t, 1, m.Type)
	assert.Equal(t, 2, m.Description)
}
