package ingest

import (
	"io"
	"strings"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/sheet"
)

// ParseStatement runs the full ingestion pipeline over one statement file:
// decode the first sheet, locate the header row, map columns, normalize the
// data rows. The caller always gets a complete ParseResult; row defects land
// in Errors, and only an undecodable file is reported as a hard error.
func ParseStatement(filename string, r io.Reader) (*ParseResult, error) {
	raw, err := sheet.Decode(filename, r)
	if err != nil {
		return nil, err
	}
	return ParseSheet(filename, raw), nil
}

// ParseSheet is ParseStatement for an already-decoded sheet.
func ParseSheet(filename string, raw sheet.RawSheet) *ParseResult {
	res := &ParseResult{Filename: filename, Mapping: unmappedColumns()}

	if len(raw) < 2 {
		res.Errors = append(res.Errors, ParseError{
			Row:     0,
			Field:   "file",
			Message: "statement must contain a header row and at least one data row",
			Value:   filename,
		})
		return res
	}

	headerIdx := LocateHeader(raw)
	headers := make([]string, len(raw[headerIdx]))
	for i, c := range raw[headerIdx] {
		headers[i] = strings.TrimSpace(c.String())
	}
	res.Headers = headers
	res.Mapping = MapColumns(headers)

	res.Rows, res.Errors = NormalizeRows(headers, raw[headerIdx+1:], res.Mapping, headerIdx+1)
	return res
}
