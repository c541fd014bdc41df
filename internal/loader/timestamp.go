package loader

import (
	"strings"
	"time"
)

// timestampLayout matches month/day/year and 24-hour time. Month, day and
// hour may omit the leading zero; minutes and seconds are padded by
// normalizeClock first.
const timestampLayout = "1/2/2006 15:04:05"

// ParseTimestamp combines the Date and Time cells of an export row. No
// timezone conversion is applied.
func ParseTimestamp(date, clock string) (time.Time, error) {
	return time.Parse(timestampLayout, strings.TrimSpace(date)+" "+normalizeClock(strings.TrimSpace(clock)))
}

// normalizeClock zero-pads one-digit minute and second fields, so "1:5:0"
// becomes "1:05:00". Anything else is returned unchanged for time.Parse to
// reject.
func normalizeClock(clock string) string {
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return clock
	}
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 1 {
			parts[i] = "0" + parts[i]
		}
	}
	return strings.Join(parts, ":")
}
