package anchorage

import (
	"testing"
	"time"
)

// scenario 2 from spec.md §8: 25 vessels each producing one 12-hour
// stationary period in the same fine cell around (22.3, 114.2) -> one
// AnchoragePoint with unique_vessels=25, total_visits=25.
func TestAnchorageFormation(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	cell := CellAt(FineLevel, center)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var trajectories []VesselTrajectory
	for v := int64(1); v <= 25; v++ {
		period := StationaryPeriod{
			MeanLocation:     center,
			StartTime:        base,
			Duration:         12 * time.Hour,
			RmsDriftRadiusKm: 0.01,
			FineCellIDOfMean: cell,
		}
		trajectories = append(trajectories, VesselTrajectory{
			VesselID:          v,
			StationaryPeriods: []StationaryPeriod{period},
		})
	}

	points := AggregateAnchorages(trajectories, nil, nil, 20, 10)
	if len(points) != 1 {
		t.Fatalf("expected exactly one anchorage point, got %d", len(points))
	}
	p := points[0]
	if p.UniqueVessels != 25 {
		t.Fatalf("expected unique_vessels=25, got %d", p.UniqueVessels)
	}
	if p.TotalVisits != 25 {
		t.Fatalf("expected total_visits=25, got %d", p.TotalVisits)
	}
}

func TestAnchorageFiltersBelowMinUniqueVessels(t *testing.T) {
	center := LatLon{Lat: 55.0, Lon: 9.0}
	cell := CellAt(FineLevel, center)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	period := StationaryPeriod{MeanLocation: center, StartTime: base, Duration: 24 * time.Hour, FineCellIDOfMean: cell}
	trajectories := []VesselTrajectory{
		{VesselID: 1, StationaryPeriods: []StationaryPeriod{period}},
	}

	points := AggregateAnchorages(trajectories, nil, nil, 20, 10)
	if len(points) != 0 {
		t.Fatalf("expected no anchorage point for a single vessel below threshold, got %d", len(points))
	}
}

func TestIndexTaggedAnchoragesExpandsToNeighbors(t *testing.T) {
	center := LatLon{Lat: 22.3, Lon: 114.2}
	cell := CellAt(FineLevel, center)
	anchorage := TaggedAnchorage{Location: center, FineCellID: cell, Label: "Test Anchorage"}

	idx := IndexTaggedAnchorages([]TaggedAnchorage{anchorage})
	coarse := cell.Parent(CoarseLevel)
	if _, ok := idx[coarse.Token()]; !ok {
		t.Fatalf("expected the anchorage's own coarse cell to be indexed")
	}
	if len(idx) < 2 {
		t.Fatalf("expected neighbor coarse cells to also be indexed, got %d keys", len(idx))
	}
}
