package anchorage

import (
	"testing"
	"time"
)

func testAnchorageIndex(center LatLon) TaggedAnchorageIndex {
	cell := CellAt(FineLevel, center)
	anchorage := TaggedAnchorage{Location: center, FineCellID: cell, Label: "Test Anchorage"}
	return IndexTaggedAnchorages([]TaggedAnchorage{anchorage})
}

func testStateMachineConfig() StateMachineConfig {
	return StateMachineConfig{
		EntryDistKm:       3.0,
		ExitDistKm:        4.0,
		StoppedBeginKnots: 0.2,
		StoppedEndKnots:   0.5,
		MinGapDuration:    360 * time.Minute,
	}
}

// offset returns a point roughly distKm north of center (1 deg lat ~ 111km).
func offset(center LatLon, distKm float64) LatLon {
	return LatLon{Lat: center.Lat + distKm/111.0, Lon: center.Lon}
}

// scenario 3: entry/stop/exit.
func TestEntryStopExitSequence(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	idx := testAnchorageIndex(center)
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []TaggedRecord{
		{Timestamp: T0, Location: offset(center, 2.0), SpeedKnots: 5},
		{Timestamp: T0.Add(time.Hour), Location: offset(center, 2.0), SpeedKnots: 0.1},
		{Timestamp: T0.Add(5 * time.Hour), Location: offset(center, 2.0), SpeedKnots: 1},
		{Timestamp: T0.Add(6 * time.Hour), Location: offset(center, 10.0), SpeedKnots: 8},
	}

	events, _ := RunStateMachine(1, records, idx, testStateMachineConfig(), VisitState{})

	want := []EventType{PortEntry, PortStopBegin, PortStopEnd, PortExit}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, e := range events {
		if e.EventType != want[i] {
			t.Fatalf("event %d: expected %v, got %v", i, want[i], e.EventType)
		}
	}
	if events[0].PortLabel != "Test Anchorage" {
		t.Fatalf("expected the entry event's port_label to come from the curated anchorage table, got %q", events[0].PortLabel)
	}
}

// scenario 4: hysteresis — oscillation between 3.5km and 4.5km never
// crosses exit_dist=4.0km twice; exactly one entry and one exit.
func TestHysteresisPreventsOscillation(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	idx := testAnchorageIndex(center)
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	dists := []float64{2.0, 3.5, 3.9, 3.5, 3.9, 3.5, 4.5}
	var records []TaggedRecord
	for i, d := range dists {
		records = append(records, TaggedRecord{
			Timestamp: T0.Add(time.Duration(i) * time.Hour),
			Location:  offset(center, d),
			SpeedKnots: 5,
		})
	}

	events, _ := RunStateMachine(1, records, idx, testStateMachineConfig(), VisitState{})

	entries, exits := 0, 0
	for _, e := range events {
		if e.EventType == PortEntry {
			entries++
		}
		if e.EventType == PortExit {
			exits++
		}
	}
	if entries != 1 || exits != 1 {
		t.Fatalf("expected exactly one entry and one exit, got entries=%d exits=%d (%+v)", entries, exits, events)
	}
}

// scenario 5: gap — two records 8h apart, both within 1km, with
// min_gap_minutes=360 emits PORT_GAP_BEGIN@first, PORT_GAP_END@second.
func TestGapDetection(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	idx := testAnchorageIndex(center)
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []TaggedRecord{
		{Timestamp: T0, Location: offset(center, 0.5), SpeedKnots: 5},
		{Timestamp: T0.Add(8 * time.Hour), Location: offset(center, 0.5), SpeedKnots: 5},
	}

	prior := VisitState{State: InPort, LastTimestamp: T0.Add(-time.Hour), ActiveAnchorageID: "", HasActiveAnchorage: true}
	events, _ := RunStateMachine(1, records, idx, testStateMachineConfig(), prior)

	foundGapBegin, foundGapEnd := false, false
	for _, e := range events {
		if e.EventType == PortGapBegin {
			foundGapBegin = true
		}
		if e.EventType == PortGapEnd {
			foundGapEnd = true
		}
	}
	if !foundGapBegin || !foundGapEnd {
		t.Fatalf("expected a gap-begin/gap-end pair, got %+v", events)
	}
}

// scenario 6: carry-over — entry at D-1 23:00, exit at D 01:00: running
// [D,D] with carry-over yields PORT_EXIT@D 01:00 only.
func TestCarryOverBatchIdempotence(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	idx := testAnchorageIndex(center)
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	prior := VisitState{
		State:              InPort,
		LastTimestamp:      day.Add(-time.Hour), // D-1 23:00
		ActiveAnchorageID:  CellAt(FineLevel, center).Token(),
		HasActiveAnchorage: true,
	}

	records := []TaggedRecord{
		{Timestamp: day.Add(time.Hour), Location: offset(center, 10.0), SpeedKnots: 8}, // D 01:00, well outside exit_dist
	}

	events, _ := RunStateMachine(1, records, idx, testStateMachineConfig(), prior)

	if len(events) != 1 || events[0].EventType != PortExit {
		t.Fatalf("expected exactly one PORT_EXIT event, got %+v", events)
	}
	if !events[0].Timestamp.Equal(day.Add(time.Hour)) {
		t.Fatalf("expected exit timestamp at D 01:00, got %v", events[0].Timestamp)
	}
}
