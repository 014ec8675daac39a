package anchorage

import (
	"testing"
	"time"
)

func TestFilterByDateRangeDropsOutOfWindowRecords(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	byVessel := map[int64][]Record{
		1: {
			VesselLocationRecord{Timestamp: time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)},
			VesselLocationRecord{Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
		},
		2: {
			VesselLocationRecord{Timestamp: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	got := filterByDateRange(byVessel, start, end)

	if _, ok := got[2]; ok {
		t.Fatalf("expected vessel 2 to be dropped entirely, all its records fall outside the window")
	}
	recs, ok := got[1]
	if !ok {
		t.Fatalf("expected vessel 1 to survive filtering")
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly one in-window record for vessel 1, got %d", len(recs))
	}
	if !recs[0].Time().Equal(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the surviving record to be the in-window one, got %v", recs[0].Time())
	}
}
