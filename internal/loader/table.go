// Package loader reads CGM and insulin pump exports into typed records.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// naTokens are cell values treated as missing in addition to blank cells
var naTokens = map[string]bool{
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
}

// IsMissing reports whether a raw cell holds no value
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || naTokens[s]
}

// Table is a raw CSV export held as text
type Table struct {
	Header []string
	Rows   [][]string
	Lines  []int // Source line of each row, for error messages
}

// ReadTable reads a CSV export whose first record is the header
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	// Exports pad short rows inconsistently
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading CSV header: empty input")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.Rows = append(t.Rows, record)
		t.Lines = append(t.Lines, line)
	}

	return t, nil
}

// Cell returns the value at row i, column j, or "" when the row is short
func (t *Table) Cell(i, j int) string {
	if j < len(t.Rows[i]) {
		return t.Rows[i][j]
	}
	return ""
}

// PruneEmpty returns a copy of the table without columns that have no
// non-missing value in any row, along with the names of the dropped columns
func (t *Table) PruneEmpty() (*Table, []string) {
	keep := make([]int, 0, len(t.Header))
	var dropped []string
	for j, name := range t.Header {
		hasValue := false
		for i := range t.Rows {
			if !IsMissing(t.Cell(i, j)) {
				hasValue = true
				break
			}
		}
		if hasValue {
			keep = append(keep, j)
		} else {
			dropped = append(dropped, name)
		}
	}

	out := &Table{
		Header: make([]string, len(keep)),
		Rows:   make([][]string, len(t.Rows)),
		Lines:  t.Lines,
	}
	for k, j := range keep {
		out.Header[k] = t.Header[j]
	}
	for i := range t.Rows {
		row := make([]string, len(keep))
		for k, j := range keep {
			row[k] = t.Cell(i, j)
		}
		out.Rows[i] = row
	}

	return out, dropped
}
