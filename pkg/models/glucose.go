// Package models contains the records shared by the loader, metric engine,
// report store and publisher.
package models

import "time"

// Category is one of the glucose ranges counted by the metric engine
type Category int

const (
	Hyperglycemia         Category = iota // > 180 mg/dL
	HyperglycemiaCritical                 // > 250 mg/dL
	InRange                               // 70-180 mg/dL inclusive
	InRangeSecondary                      // 70-150 mg/dL inclusive
	HypoglycemiaLevel1                    // < 70 mg/dL
	HypoglycemiaLevel2                    // < 54 mg/dL
)

// NumCategories is the number of glucose categories per time window
const NumCategories = 6

// AllCategories lists the categories in report column order
var AllCategories = [NumCategories]Category{
	Hyperglycemia,
	HyperglycemiaCritical,
	InRange,
	InRangeSecondary,
	HypoglycemiaLevel1,
	HypoglycemiaLevel2,
}

// String returns the short label used in logs and published payloads
func (c Category) String() string {
	switch c {
	case Hyperglycemia:
		return ">180"
	case HyperglycemiaCritical:
		return ">250"
	case InRange:
		return "70-180"
	case InRangeSecondary:
		return "70-150"
	case HypoglycemiaLevel1:
		return "<70"
	case HypoglycemiaLevel2:
		return "<54"
	default:
		return "unknown"
	}
}

// Categories is a bit set of the categories a glucose value falls into
type Categories uint8

// Has reports whether c is set
func (cs Categories) Has(c Category) bool {
	return cs&(1<<uint(c)) != 0
}

// Classify maps a glucose value in mg/dL to the set of categories it belongs to
func Classify(glucose int32) Categories {
	var cs Categories
	set := func(c Category) { cs |= 1 << uint(c) }

	if glucose > 180 {
		set(Hyperglycemia)
	}
	if glucose > 250 {
		set(HyperglycemiaCritical)
	}
	if glucose >= 70 && glucose <= 180 {
		set(InRange)
	}
	if glucose >= 70 && glucose <= 150 {
		set(InRangeSecondary)
	}
	if glucose < 70 {
		set(HypoglycemiaLevel1)
	}
	if glucose < 54 {
		set(HypoglycemiaLevel2)
	}
	return cs
}

// GlucoseReading is a single CGM sample with a valid sensor value
type GlucoseReading struct {
	Timestamp time.Time  `json:"timestamp"`
	Glucose   int32      `json:"glucose"` // Sensor glucose in mg/dL
	Flags     Categories `json:"-"`
}

// NewGlucoseReading builds a reading and derives its category flags
func NewGlucoseReading(ts time.Time, glucose int32) GlucoseReading {
	return GlucoseReading{
		Timestamp: ts,
		Glucose:   glucose,
		Flags:     Classify(glucose),
	}
}
