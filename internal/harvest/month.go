package harvest

import "time"

// MonthKeyLayout is the time layout of a month key (YYYY-MM)
const MonthKeyLayout = "2006-01"

// MonthKey returns the zero-padded YYYY-MM bucket of a date. Keys sort
// lexicographically in chronological order.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}
