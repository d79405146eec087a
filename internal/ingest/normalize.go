package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/sheet"
)

// Spreadsheet serial dates count days from this epoch.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var (
	reNumericDMY = regexp.MustCompile(`^(\d{1,2})([/\-.])(\d{1,2})([/\-.])(\d{2}|\d{4})$`)
	reISODate    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})([T ].*)?$`)
	reYMDSlash   = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	reFrenchDate = regexp.MustCompile(`^(\d{1,2})\s+([\p{L}]+)\.?\s+(\d{4})$`)
)

// frenchMonths maps French month prefixes to month numbers. Longer prefixes
// are tried before the 3-letter ones so juin/juillet stay distinct.
var frenchMonths = map[string]time.Month{
	"janv": time.January, "jan": time.January,
	"févr": time.February, "fevr": time.February, "fév": time.February, "fev": time.February,
	"mars": time.March, "mar": time.March,
	"avri": time.April, "avr": time.April,
	"mai": time.May,
	"juin": time.June,
	"juil": time.July,
	"jui":  time.June,
	"août": time.August, "aout": time.August, "aoû": time.August, "aou": time.August,
	"sept": time.September, "sep": time.September,
	"octo": time.October, "oct": time.October,
	"nove": time.November, "nov": time.November,
	"déce": time.December, "dece": time.December, "déc": time.December, "dec": time.December,
}

// genericLayouts is the last-resort set once every explicit pattern failed.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// parseDate converts one date cell to ISO YYYY-MM-DD. Priority: typed date
// values, spreadsheet serial numbers, then the textual pattern list with
// day-first layouts and the two-digit year pivot at 50 (>50 means 19xx).
func parseDate(c sheet.Cell) (string, error) {
	if t, ok := c.Date(); ok {
		return t.Format("2006-01-02"), nil
	}
	if v, ok := c.Number(); ok {
		if v < 1 || v > 200000 {
			return "", fmt.Errorf("numeric value %v is not a plausible serial date", v)
		}
		return serialEpoch.AddDate(0, 0, int(v)).Format("2006-01-02"), nil
	}

	s := strings.TrimSpace(c.String())
	if s == "" {
		return "", fmt.Errorf("empty date cell")
	}

	if m := reNumericDMY.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		day, month := atoi(m[1]), atoi(m[3])
		year := atoi(m[5])
		if len(m[5]) == 2 {
			year = pivotYear(year)
		}
		return isoDate(year, month, day)
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		return isoDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reYMDSlash.FindStringSubmatch(s); m != nil {
		return isoDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reFrenchDate.FindStringSubmatch(s); m != nil {
		if month, ok := frenchMonth(m[2]); ok {
			return isoDate(atoi(m[3]), int(month), atoi(m[1]))
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format: %q", s)
}

// pivotYear expands a two-digit year: >50 lands in the 1900s, the rest in
// the 2000s.
func pivotYear(y int) int {
	if y > 50 {
		return 1900 + y
	}
	return 2000 + y
}

func frenchMonth(token string) (time.Month, bool) {
	runes := []rune(strings.ToLower(token))
	for _, l := range []int{4, 3} {
		if len(runes) < l {
			continue
		}
		if m, ok := frenchMonths[string(runes[:l])]; ok {
			return m, true
		}
	}
	return 0, false
}

func isoDate(year, month, day int) (string, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", fmt.Errorf("invalid calendar date %04d-%02d-%02d", year, month, day)
	}
	return t.Format("2006-01-02"), nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

var (
	// Trailing non-digits (currency symbols) may follow the decimal part.
	reFrenchDecimal = regexp.MustCompile(`,\d{1,2}\D*$`)
	reAmountNoise   = regexp.MustCompile(`[^0-9.\-]`)
	reWhitespace    = regexp.MustCompile(`[\s\x{00a0}\x{202f}]+`)
)

// parseAmount converts an amount cell to a float. Numeric cells pass
// through. Textual cells go through locale cleanup: a trailing decimal comma
// marks the French convention (dots are thousands separators), whitespace
// and currency symbols are stripped, and any extra dots collapse so the last
// one stays the decimal point. Unparseable values become 0 without raising a
// row error; flooding the error list with formatting noise helps nobody.
func parseAmount(c sheet.Cell) float64 {
	if v, ok := c.Number(); ok {
		return v
	}
	s := strings.TrimSpace(c.String())
	if s == "" {
		return 0
	}

	if reFrenchDecimal.MatchString(s) {
		s = reWhitespace.ReplaceAllString(s, "")
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = reWhitespace.ReplaceAllString(s, "")
	}
	s = reAmountNoise.ReplaceAllString(s, "")

	if n := strings.Count(s, "."); n > 1 {
		last := strings.LastIndexByte(s, '.')
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// NormalizeRows converts the data rows following the header into ParsedRows.
// rowOffset is the absolute sheet index of the first data row, so ParseError
// rows point back at the source file. It never fails outright: a bad date
// drops that row with an error, everything else degrades in place.
func NormalizeRows(headers []string, rows sheet.RawSheet, m ColumnMapping, rowOffset int) ([]ParsedRow, []ParseError) {
	parsed := make([]ParsedRow, 0, len(rows))
	var errs []ParseError

	for i, row := range rows {
		if rowIsEmpty(row) {
			continue
		}
		absRow := rowOffset + i

		dateCell := cellAt(row, m.Date)
		date, err := parseDate(dateCell)
		if err != nil {
			errs = append(errs, ParseError{
				Row:     absRow,
				Field:   "date",
				Message: err.Error(),
				Value:   dateCell.String(),
			})
			continue
		}

		var debit, credit float64
		if m.Amount >= 0 {
			amount := parseAmount(cellAt(row, m.Amount))
			if amount < 0 {
				debit = -amount
			} else {
				credit = amount
			}
		} else {
			if m.Debit >= 0 {
				debit = abs(parseAmount(cellAt(row, m.Debit)))
			}
			if m.Credit >= 0 {
				credit = abs(parseAmount(cellAt(row, m.Credit)))
			}
		}

		typ := strings.TrimSpace(cellAt(row, m.Type).String())
		desc := resolveDescription(row, m, typ, date)

		parsed = append(parsed, ParsedRow{
			Date:        date,
			Type:        typ,
			Description: desc,
			Debit:       debit,
			Credit:      credit,
			Raw:         rawCells(headers, row),
		})
	}
	return parsed, errs
}

// resolveDescription picks the row label: the description column, then the
// type column, then any leftover textual cells joined together, and as a
// last resort a generated placeholder carrying the date.
func resolveDescription(row []sheet.Cell, m ColumnMapping, typ, date string) string {
	if desc := strings.TrimSpace(cellAt(row, m.Description).String()); desc != "" {
		return desc
	}
	if typ != "" {
		return typ
	}

	mapped := map[int]bool{m.Date: true, m.Debit: true, m.Credit: true, m.Amount: true}
	var parts []string
	for j, c := range row {
		if mapped[j] || c.IsEmpty() {
			continue
		}
		if _, numeric := c.Number(); numeric {
			continue
		}
		if v := strings.TrimSpace(c.String()); len([]rune(v)) > 2 {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " - ")
	}
	return "Transaction du " + date
}

func rawCells(headers []string, row []sheet.Cell) map[string]string {
	raw := make(map[string]string, len(row))
	for j, c := range row {
		if c.IsEmpty() {
			continue
		}
		key := fmt.Sprintf("column_%d", j)
		if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
			key = headers[j]
		}
		raw[key] = c.String()
	}
	return raw
}

func rowIsEmpty(row []sheet.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func cellAt(row []sheet.Cell, idx int) sheet.Cell {
	if idx < 0 || idx >= len(row) {
		return sheet.EmptyCell()
	}
	return row[idx]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
