package ingest

import "fmt"

// ColumnMapping assigns semantic meaning to zero-based column indexes of a
// statement sheet. -1 marks a field the mapper could not place.
type ColumnMapping struct {
	Date        int `json:"date"`
	Type        int `json:"type"`
	Description int `json:"description"`
	Debit       int `json:"debit"`
	Credit      int `json:"credit"`
	Amount      int `json:"amount"`
}

func unmappedColumns() ColumnMapping {
	return ColumnMapping{Date: -1, Type: -1, Description: -1, Debit: -1, Credit: -1, Amount: -1}
}

// ParsedRow is one statement row normalized to typed form. Debit and Credit
// are both non-negative; Raw keeps the original cells keyed by header text
// for audit.
type ParsedRow struct {
	Date        string            `json:"date"` // ISO YYYY-MM-DD
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Debit       float64           `json:"debit"`
	Credit      float64           `json:"credit"`
	Raw         map[string]string `json:"raw"`
}

// Amount is the signed value of the row: positive for credits, negative for
// debits.
func (p ParsedRow) Amount() float64 {
	return p.Credit - p.Debit
}

// ParseError is a non-fatal defect attached to one row and field. Parsing
// continues for every other row.
type ParseError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, field %s: %s (value %q)", e.Row, e.Field, e.Message, e.Value)
}

// ParseResult is the complete outcome of one statement import attempt.
type ParseResult struct {
	Rows     []ParsedRow   `json:"rows"`
	Headers  []string      `json:"headers"`
	Errors   []ParseError  `json:"errors"`
	Mapping  ColumnMapping `json:"detected_mapping"`
	Filename string        `json:"filename"`
}
