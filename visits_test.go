package anchorage

import (
	"testing"
	"time"
)

func TestGroupVisitsClosesMatchedPair(t *testing.T) {
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []PortEvent{
		{VesselID: 1, Timestamp: T0, AnchorageID: "A", EventType: PortEntry},
		{VesselID: 1, Timestamp: T0.Add(time.Hour), AnchorageID: "A", EventType: PortStopBegin},
		{VesselID: 1, Timestamp: T0.Add(5 * time.Hour), AnchorageID: "A", EventType: PortStopEnd},
		{VesselID: 1, Timestamp: T0.Add(6 * time.Hour), AnchorageID: "A", EventType: PortExit},
	}

	closed, trailing := GroupVisits(1, events)
	if len(trailing) != 0 {
		t.Fatalf("expected no trailing open visit, got %+v", trailing)
	}
	if len(closed) != 1 {
		t.Fatalf("expected one closed visit, got %d", len(closed))
	}
	v := closed[0]
	if !v.StartTimestamp.Equal(T0) || !v.EndTimestamp.Equal(T0.Add(6*time.Hour)) {
		t.Fatalf("unexpected visit bounds: %+v", v)
	}
	if len(v.Events) != 2 {
		t.Fatalf("expected 2 intermediate events, got %d", len(v.Events))
	}
	if v.VisitID == "" {
		t.Fatalf("expected a non-empty deterministic visit id")
	}
}

func TestGroupVisitsLeavesTrailingOpenVisit(t *testing.T) {
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []PortEvent{
		{VesselID: 1, Timestamp: T0, AnchorageID: "A", EventType: PortEntry},
	}
	closed, trailing := GroupVisits(1, events)
	if len(closed) != 0 {
		t.Fatalf("expected no closed visits, got %d", len(closed))
	}
	if len(trailing) != 1 {
		t.Fatalf("expected one trailing open event, got %d", len(trailing))
	}
}

func TestVisitIDDeterministic(t *testing.T) {
	T0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := visitID(1, T0, "A")
	b := visitID(1, T0, "A")
	c := visitID(2, T0, "A")
	if a != b {
		t.Fatalf("expected visitID to be deterministic")
	}
	if a == c {
		t.Fatalf("expected different vessel ids to produce different visit ids")
	}
}
