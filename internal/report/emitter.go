// Package report writes metric rows in the result file format: one
// comma-separated line per epoch, manual first, no header.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// FormatValue renders a percentage as the shortest decimal that round-trips,
// keeping a ".0" suffix on whole numbers and writing NaN as "nan"
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ParseValue is the inverse of FormatValue
func ParseValue(s string) (float64, error) {
	switch s {
	case "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

// FormatRow renders the 18 values of a row
func FormatRow(row models.MetricRow) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}

// ParseRow reads a row written by FormatRow
func ParseRow(fields []string) (models.MetricRow, error) {
	var row models.MetricRow
	if len(fields) != len(row) {
		return row, fmt.Errorf("expected %d values, got %d", len(row), len(fields))
	}
	for i, f := range fields {
		v, err := ParseValue(strings.TrimSpace(f))
		if err != nil {
			return row, fmt.Errorf("value %d: %w", i+1, err)
		}
		row[i] = v
	}
	return row, nil
}

// Write emits the manual and auto rows
func Write(w io.Writer, manual, auto models.MetricRow) error {
	writer := csv.NewWriter(w)
	for _, row := range []models.MetricRow{manual, auto} {
		if err := writer.Write(FormatRow(row)); err != nil {
			return fmt.Errorf("writing metric row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}

// Read parses a result file back into its manual and auto rows
func Read(r io.Reader) (manual, auto models.MetricRow, err error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return manual, auto, fmt.Errorf("reading report: %w", err)
	}
	if len(records) != 2 {
		return manual, auto, fmt.Errorf("expected 2 rows, got %d", len(records))
	}
	if manual, err = ParseRow(records[0]); err != nil {
		return manual, auto, fmt.Errorf("manual row: %w", err)
	}
	if auto, err = ParseRow(records[1]); err != nil {
		return manual, auto, fmt.Errorf("auto row: %w", err)
	}
	return manual, auto, nil
}
