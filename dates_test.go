package anchorage

import (
	"testing"
	"time"
)

func TestDateRangeInclusive(t *testing.T) {
	start := time.Date(2026, 1, 30, 15, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 2, 3, 0, 0, 0, time.UTC)

	days := DateRange(start, end)
	want := []string{"2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d: %v", len(want), len(days), days)
	}
	for i, d := range days {
		if got := d.Format("2006-01-02"); got != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestDateRangeSingleDay(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	days := DateRange(day, day)
	if len(days) != 1 {
		t.Fatalf("expected exactly one day, got %d", len(days))
	}
}

func TestDateRangeCrossesLeapDay(t *testing.T) {
	start := time.Date(2028, 2, 27, 0, 0, 0, 0, time.UTC)
	end := time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)

	days := DateRange(start, end)
	want := []string{"2028-02-27", "2028-02-28", "2028-02-29", "2028-03-01"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days across the leap day, got %d: %v", len(want), len(days), days)
	}
	for i, d := range days {
		if got := d.Format("2006-01-02"); got != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestInRangeDayGranularity(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)

	inside := time.Date(2026, 1, 3, 23, 59, 0, 0, time.UTC)
	if !InRange(inside, start, end) {
		t.Fatalf("expected %v to be within [%v, %v]", inside, start, end)
	}

	outside := time.Date(2026, 1, 4, 0, 0, 1, 0, time.UTC)
	if InRange(outside, start, end) {
		t.Fatalf("expected %v to fall outside [%v, %v]", outside, start, end)
	}
}
