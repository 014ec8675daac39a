package anchorage

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// DateRange walks [start, end] one calendar day at a time, inclusive of
// both ends, the granularity every date-sharded table in this pipeline
// is partitioned by. Leap-year safety is delegated to
// julian.LeapYearGregorian the same way the teacher's decode/params.go
// uses it for calendar arithmetic, rather than relying on time.AddDate's
// own (correct, but unverified here) leap handling.
func DateRange(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = nextDay(d) {
		days = append(days, d)
	}
	return days
}

// nextDay advances d by one calendar day. The last day of February is
// taken from julian.LeapYearGregorian and rolls over to March 1 directly;
// every other day is advanced with time.AddDate.
func nextDay(d time.Time) time.Time {
	if d.Month() == time.February {
		leap := julian.LeapYearGregorian(d.Year())
		febLen := 28
		if leap {
			febLen = 29
		}
		if d.Day() == febLen {
			return time.Date(d.Year(), time.March, 1, 0, 0, 0, 0, time.UTC)
		}
	}
	return d.AddDate(0, 0, 1)
}

// InRange reports whether t falls within [start, end] inclusive, at day
// granularity, the bound spec.md §3's "every output event's timestamp
// lies within the pipeline's [start_date, end_date]" invariant requires.
func InRange(t, start, end time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(startDay) && !day.After(endDay)
}
