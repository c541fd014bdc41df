package loader

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// CGMData is a cleaned CGM export
type CGMData struct {
	Readings       []models.GlucoseReading
	DroppedColumns []string
	DroppedRows    int // Rows without a sensor glucose value
}

// LoadCGM reads a CGM export, dropping empty columns and rows without a
// sensor glucose value
func LoadCGM(r io.Reader) (*CGMData, error) {
	raw, err := ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading CGM export: %w", err)
	}

	table, dropped := raw.PruneEmpty()
	proj, err := CGMSchema.Project(table)
	if err != nil {
		return nil, err
	}

	data := &CGMData{DroppedColumns: dropped}
	for i := range table.Rows {
		cell := proj.Get(table, i, colGlucose)
		if IsMissing(cell) {
			data.DroppedRows++
			continue
		}

		glucose, err := parseGlucose(cell)
		if err != nil {
			return nil, &ParseError{Source: CGMSchema.Source, Line: table.Lines[i], Field: colGlucose, Value: cell, Err: err}
		}

		date, clock := proj.Get(table, i, colDate), proj.Get(table, i, colTime)
		ts, err := ParseTimestamp(date, clock)
		if err != nil {
			return nil, &ParseError{Source: CGMSchema.Source, Line: table.Lines[i], Field: "timestamp", Value: date + " " + clock, Err: err}
		}

		data.Readings = append(data.Readings, models.NewGlucoseReading(ts, glucose))
	}

	return data, nil
}

// parseGlucose accepts integers and integral decimals such as "123.0",
// which is how spreadsheet tools re-save sparse integer columns
func parseGlucose(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(v), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("not a 32-bit integer")
	}
	return int32(f), nil
}
