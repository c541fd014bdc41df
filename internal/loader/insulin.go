package loader

import (
	"fmt"
	"io"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// InsulinData is a cleaned insulin pump export
type InsulinData struct {
	Events         []models.InsulinEvent
	DroppedColumns []string
}

// LoadInsulin reads an insulin pump export. Rows without an alarm keep a nil
// label.
func LoadInsulin(r io.Reader) (*InsulinData, error) {
	raw, err := ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading insulin export: %w", err)
	}

	table, dropped := raw.PruneEmpty()
	proj, err := InsulinSchema.Project(table)
	if err != nil {
		return nil, err
	}

	data := &InsulinData{
		Events:         make([]models.InsulinEvent, 0, len(table.Rows)),
		DroppedColumns: dropped,
	}
	for i := range table.Rows {
		date, clock := proj.Get(table, i, colDate), proj.Get(table, i, colTime)
		ts, err := ParseTimestamp(date, clock)
		if err != nil {
			return nil, &ParseError{Source: InsulinSchema.Source, Line: table.Lines[i], Field: "timestamp", Value: date + " " + clock, Err: err}
		}

		var alarm *string
		if cell := proj.Get(table, i, colAlarm); !IsMissing(cell) {
			label := cell
			alarm = &label
		}

		data.Events = append(data.Events, models.InsulinEvent{Timestamp: ts, Alarm: alarm})
	}

	return data, nil
}
