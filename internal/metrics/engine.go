package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// SamplesPerDay is the nominal number of 5-minute CGM samples in 24 hours
const SamplesPerDay = 288

// Normalization selects the per-day denominator
type Normalization string

const (
	// NormalizeFixed divides every window by SamplesPerDay, including the
	// partial-day windows. This is the reference metric definition.
	NormalizeFixed Normalization = "fixed"
	// NormalizePerWindow divides by the samples expected inside each window
	NormalizePerWindow Normalization = "per-window"
)

// EmptyWindowPolicy decides what a window without readings reports
type EmptyWindowPolicy string

const (
	// EmptyWindowNaN reports NaN for every category of the window
	EmptyWindowNaN EmptyWindowPolicy = "nan"
	// EmptyWindowAbort fails the computation with an EmptyWindowError
	EmptyWindowAbort EmptyWindowPolicy = "error"
	// EmptyWindowZero reports 0 for every category of the window
	EmptyWindowZero EmptyWindowPolicy = "zero"
)

// Options controls metric computation. The zero value uses fixed
// normalization and reports NaN for empty windows.
type Options struct {
	Normalization Normalization
	EmptyWindow   EmptyWindowPolicy
}

// Validate rejects unknown option values
func (o Options) Validate() error {
	switch o.Normalization {
	case "", NormalizeFixed, NormalizePerWindow:
	default:
		return fmt.Errorf("unknown normalization %q (available: fixed, per-window)", o.Normalization)
	}
	switch o.EmptyWindow {
	case "", EmptyWindowNaN, EmptyWindowAbort, EmptyWindowZero:
	default:
		return fmt.Errorf("unknown empty window policy %q (available: nan, error, zero)", o.EmptyWindow)
	}
	return nil
}

func (o Options) denominator(w models.TimeWindow) float64 {
	if o.Normalization != NormalizePerWindow {
		return SamplesPerDay
	}
	switch w {
	case models.Overnight:
		return 72
	case models.Daytime:
		return 216
	default:
		return SamplesPerDay
	}
}

type dateKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dateKey {
	y, m, d := t.Date()
	return dateKey{y, m, d}
}

func (k dateKey) before(o dateKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	if k.month != o.month {
		return k.month < o.month
	}
	return k.day < o.day
}

// Compute returns the 18 percentages for an epoch: for each window, the
// per-date category counts divided by the denominator, averaged over the
// dates observed in that window, as a percentage
func Compute(epoch models.Epoch, opts Options) (models.MetricRow, error) {
	if err := opts.Validate(); err != nil {
		return models.MetricRow{}, err
	}

	var row models.MetricRow
	for _, w := range models.AllWindows {
		counts := make(map[dateKey]*[models.NumCategories]int)
		for _, r := range epoch.Readings {
			if !w.Contains(r.Timestamp) {
				continue
			}
			k := keyOf(r.Timestamp)
			c, ok := counts[k]
			if !ok {
				c = new([models.NumCategories]int)
				counts[k] = c
			}
			for _, cat := range models.AllCategories {
				if r.Flags.Has(cat) {
					c[cat]++
				}
			}
		}

		if len(counts) == 0 {
			var v float64
			switch opts.EmptyWindow {
			case EmptyWindowAbort:
				return models.MetricRow{}, &EmptyWindowError{Mode: epoch.Mode, Window: w}
			case EmptyWindowZero:
				v = 0
			default:
				v = math.NaN()
			}
			for _, cat := range models.AllCategories {
				row.Set(w, cat, v)
			}
			continue
		}

		// Sum dates in calendar order so output is reproducible
		dates := make([]dateKey, 0, len(counts))
		for k := range counts {
			dates = append(dates, k)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].before(dates[j]) })

		denom := opts.denominator(w)
		for _, cat := range models.AllCategories {
			var sum float64
			for _, k := range dates {
				sum += float64(counts[k][cat]) / denom
			}
			row.Set(w, cat, sum/float64(len(dates))*100)
		}
	}

	return row, nil
}

// Summary describes the readings in an epoch
type Summary struct {
	Mode     models.Mode
	Readings int
	Days     int
	First    time.Time
	Last     time.Time
}

// Summarize counts readings and distinct dates in an epoch
func Summarize(epoch models.Epoch) Summary {
	s := Summary{Mode: epoch.Mode, Readings: len(epoch.Readings)}
	days := make(map[dateKey]struct{})
	for i, r := range epoch.Readings {
		days[keyOf(r.Timestamp)] = struct{}{}
		if i == 0 || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
	}
	s.Days = len(days)
	return s
}
