package ingest

import "strings"

// fieldPatterns lists, per semantic field in evaluation order, the header
// patterns tried against every header cell. Within a field the earlier
// pattern wins; a header column claimed by one field is never reused by a
// later one.
var fieldPatterns = []struct {
	field    string
	patterns []string
}{
	{"date", []string{
		"date opération", "date operation", "date de l'opération",
		"transaction date", "date comptable", "date",
	}},
	{"type", []string{
		"type d'opération", "type operation", "nature", "type",
	}},
	{"description", []string{
		"libellé", "libelle", "label", "description", "narration",
		"détail", "detail", "motif", "communication",
	}},
	{"debit", []string{
		"débit", "debit", "retrait", "withdrawal", "sortie",
	}},
	{"credit", []string{
		"crédit", "credit", "dépôt", "depot", "deposit", "entrée", "entree",
	}},
	{"amount", []string{
		"montant", "amount", "somme", "valeur",
	}},
}

// MapColumns maps header text to semantic column indexes. Pattern matching
// is case-insensitive substring over trimmed headers; positional fallbacks
// cover exports whose headers match nothing:
//   - date always resolves, defaulting to column 0;
//   - with none of debit/credit/amount mapped, a sheet of >=4 columns is
//     assumed to end in a debit/credit pair, and a 3-column sheet to end in
//     a single signed amount column.
func MapColumns(headers []string) ColumnMapping {
	m := unmappedColumns()
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}

	claimed := make(map[int]bool)
	assign := func(field string, idx int) {
		claimed[idx] = true
		switch field {
		case "date":
			m.Date = idx
		case "type":
			m.Type = idx
		case "description":
			m.Description = idx
		case "debit":
			m.Debit = idx
		case "credit":
			m.Credit = idx
		case "amount":
			m.Amount = idx
		}
	}

	for _, fp := range fieldPatterns {
	patterns:
		for _, pat := range fp.patterns {
			for idx, h := range norm {
				if claimed[idx] || h == "" {
					continue
				}
				if strings.Contains(h, pat) {
					assign(fp.field, idx)
					break patterns
				}
			}
		}
	}

	if m.Date < 0 {
		m.Date = 0
	}
	if m.Debit < 0 && m.Credit < 0 && m.Amount < 0 {
		switch n := len(headers); {
		case n >= 4:
			m.Debit = n - 2
			m.Credit = n - 1
		case n == 3:
			m.Amount = n - 1
		}
	}
	return m
}
