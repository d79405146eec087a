package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the closed set of cell value variants produced by
// spreadsheet decoding. Downstream code switches on the kind instead of
// inspecting interface{} values.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindNumber
	KindText
	KindDate
)

// Cell is a single decoded spreadsheet cell. The original textual rendering
// is always preserved for audit output.
type Cell struct {
	kind CellKind
	num  float64
	text string
	date time.Time
}

func EmptyCell() Cell {
	return Cell{kind: KindEmpty}
}

func NumberCell(v float64) Cell {
	return Cell{kind: KindNumber, num: v, text: strconv.FormatFloat(v, 'f', -1, 64)}
}

func TextCell(s string) Cell {
	return Cell{kind: KindText, text: s}
}

func DateCell(t time.Time) Cell {
	return Cell{kind: KindDate, date: t, text: t.Format("2006-01-02")}
}

func (c Cell) Kind() CellKind {
	return c.kind
}

func (c Cell) IsEmpty() bool {
	return c.kind == KindEmpty || strings.TrimSpace(c.text) == ""
}

// String returns the cell as originally rendered by the source file.
func (c Cell) String() string {
	return c.text
}

// Number returns the numeric value and whether the cell is numeric.
func (c Cell) Number() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Date returns the typed date value and whether the cell carries one.
func (c Cell) Date() (time.Time, bool) {
	if c.kind != KindDate {
		return time.Time{}, false
	}
	return c.date, true
}

// RawSheet is the immutable decoded form of the first worksheet: rows of
// cells in source order, ragged widths allowed.
type RawSheet [][]Cell

// classifyCell turns a raw string cell into its variant. Plain numbers become
// KindNumber (with the original text kept); everything else non-blank stays
// text. Typed dates only come from decoders that produce them natively.
func classifyCell(s string) Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return EmptyCell()
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		c := NumberCell(v)
		c.text = s
		return c
	}
	return TextCell(s)
}

// FromStrings builds a RawSheet from already-stringified rows, classifying
// each cell. Used by the CSV/XLSX/XLS decoders and by tests.
func FromStrings(rows [][]string) RawSheet {
	out := make(RawSheet, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = classifyCell(v)
		}
		out[i] = cells
	}
	return out
}
