package models

import "time"

// Report is the result of one pipeline run
type Report struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	CGMPath     string    `json:"cgm_path"`
	InsulinPath string    `json:"insulin_path"`
	OutputPath  string    `json:"output_path"`
	Boundary    time.Time `json:"boundary"` // Earliest switch to auto mode
	ManualCount int       `json:"manual_count"`
	AutoCount   int       `json:"auto_count"`
	Manual      MetricRow `json:"manual"`
	Auto        MetricRow `json:"auto"`
	Published   bool      `json:"published"`
}

// Row returns the metric row for the given mode
func (r *Report) Row(mode Mode) MetricRow {
	if mode == ModeAuto {
		return r.Auto
	}
	return r.Manual
}
