package models

import "time"

// AutoModeMarker is the pump alarm logged when closed-loop control starts
const AutoModeMarker = "AUTO MODE ACTIVE PLGM OFF"

// InsulinEvent is a single row of the insulin pump log
type InsulinEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Alarm     *string   `json:"alarm"` // nil when the export has no alarm for this row
}

// IsAutoModeSwitch reports whether the event marks the switch to auto mode
func (e InsulinEvent) IsAutoModeSwitch() bool {
	return e.Alarm != nil && *e.Alarm == AutoModeMarker
}
