package models

import (
	"fmt"
	"time"
)

// Mode is the pump operating mode an epoch belongs to
type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// Epoch holds the readings recorded while the pump was in one mode
type Epoch struct {
	Mode     Mode
	Readings []GlucoseReading
}

// TimeWindow is a time-of-day filter applied before aggregation
type TimeWindow int

const (
	Overnight TimeWindow = iota // [00:00:00, 06:00:00)
	Daytime                     // [06:00:00, 23:59:59]
	WholeDay
)

// NumWindows is the number of time windows in a metric row
const NumWindows = 3

// AllWindows lists the windows in report column order
var AllWindows = [NumWindows]TimeWindow{Overnight, Daytime, WholeDay}

const (
	sixAM      = 6 * 60 * 60
	lastSecond = 23*60*60 + 59*60 + 59
)

// Contains reports whether the time-of-day of t falls inside the window
func (w TimeWindow) Contains(t time.Time) bool {
	h, m, s := t.Clock()
	sec := h*3600 + m*60 + s
	switch w {
	case Overnight:
		return sec < sixAM
	case Daytime:
		return sec >= sixAM && sec <= lastSecond
	case WholeDay:
		return true
	default:
		return false
	}
}

func (w TimeWindow) String() string {
	switch w {
	case Overnight:
		return "overnight"
	case Daytime:
		return "daytime"
	case WholeDay:
		return "wholeday"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// MetricRowLen is the number of values in a metric row
const MetricRowLen = NumWindows * NumCategories

// MetricRow holds the percentages for one epoch, grouped by window then category
type MetricRow [MetricRowLen]float64

// At returns the percentage for a window and category
func (r MetricRow) At(w TimeWindow, c Category) float64 {
	return r[int(w)*NumCategories+int(c)]
}

// Set stores the percentage for a window and category
func (r *MetricRow) Set(w TimeWindow, c Category, v float64) {
	r[int(w)*NumCategories+int(c)] = v
}
