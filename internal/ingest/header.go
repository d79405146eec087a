package ingest

import (
	"strings"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/sheet"
)

// headerScanLimit bounds how deep into the sheet the locator looks. Bank
// exports put titles, account info and export timestamps above the real
// header, but never more than a handful of rows of it.
const headerScanLimit = 10

// minHeaderCells is the minimum number of non-empty cells for a row to be a
// header candidate at all.
const minHeaderCells = 3

// headerKeywordGroups is the banking header vocabulary, French and English
// variants together. Each group counts once no matter how many of its
// keywords appear.
var headerKeywordGroups = [][]string{
	{"date"},
	{"libellé", "libelle", "label", "description", "narration"},
	{"montant", "amount"},
	{"débit", "debit", "retrait", "withdrawal"},
	{"crédit", "credit", "dépôt", "deposit"},
	{"opération", "operation"},
	{"valeur", "value date"},
	{"type"},
	{"solde", "balance"},
	{"référence", "reference"},
}

// LocateHeader returns the zero-based index of the row holding the column
// headers. Greedy first-match: the first row within the scan limit that has
// enough non-empty cells and hits at least two distinct keyword groups wins.
// A wrong guess surfaces later as row-level parse errors, never as a hard
// failure here.
func LocateHeader(s sheet.RawSheet) int {
	limit := len(s)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	firstDense := -1
	for i := 0; i < limit; i++ {
		filled := 0
		var b strings.Builder
		for _, c := range s[i] {
			if c.IsEmpty() {
				continue
			}
			filled++
			b.WriteString(strings.ToLower(c.String()))
			b.WriteByte(' ')
		}
		if filled < minHeaderCells {
			continue
		}
		if firstDense < 0 {
			firstDense = i
		}

		joined := b.String()
		groups := 0
		for _, group := range headerKeywordGroups {
			for _, kw := range group {
				if strings.Contains(joined, kw) {
					groups++
					break
				}
			}
		}
		if groups >= 2 {
			return i
		}
	}

	if firstDense >= 0 {
		return firstDense
	}
	return 0
}
