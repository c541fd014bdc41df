// Package metrics splits CGM readings at the switch to auto mode and computes
// the glycemic-control percentages for each epoch.
package metrics

import (
	"time"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// DetectSwitch returns the earliest timestamp of an auto mode activation alarm.
// Event order does not matter.
func DetectSwitch(events []models.InsulinEvent) (time.Time, error) {
	var earliest time.Time
	found := false
	for _, e := range events {
		if !e.IsAutoModeSwitch() {
			continue
		}
		if !found || e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
			found = true
		}
	}

	if !found {
		return time.Time{}, &NoAutoModeEventError{Events: len(events)}
	}
	return earliest, nil
}

// Partition splits readings into the manual epoch (at or before the boundary)
// and the auto epoch (after it). Input order is kept and nothing is dropped.
func Partition(readings []models.GlucoseReading, boundary time.Time) (manual, auto models.Epoch) {
	manual.Mode = models.ModeManual
	auto.Mode = models.ModeAuto
	for _, r := range readings {
		if r.Timestamp.After(boundary) {
			auto.Readings = append(auto.Readings, r)
		} else {
			manual.Readings = append(manual.Readings, r)
		}
	}
	return manual, auto
}
