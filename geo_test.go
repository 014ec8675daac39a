package anchorage

import (
	"math"
	"testing"
)

func TestDistanceSelfIsZero(t *testing.T) {
	p := LatLon{Lat: 55.0, Lon: 9.0}
	if d := Distance(p, p); d > 1e-9 {
		t.Fatalf("distance(a,a) = %v, want ~0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := LatLon{Lat: 55.0, Lon: 9.0}
	b := LatLon{Lat: 22.3, Lon: 114.2}
	if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-9 {
		t.Fatalf("distance is not symmetric")
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	a := LatLon{Lat: 0, Lon: 0}
	b := LatLon{Lat: 10, Lon: 10}
	c := LatLon{Lat: 20, Lon: -5}
	if Distance(a, c) > Distance(a, b)+Distance(b, c)+1e-6 {
		t.Fatalf("triangle inequality violated")
	}
}

func TestAssertCellSizes(t *testing.T) {
	if err := AssertCellSizes(); err != nil {
		t.Fatalf("expected cell sizes to satisfy the safety margin, got: %v", err)
	}
}

func TestCellTokenRoundTrip(t *testing.T) {
	c := CellAt(FineLevel, LatLon{Lat: 22.3, Lon: 114.2})
	token := c.Token()
	back := CellFromToken(token)
	if back.Token() != token {
		t.Fatalf("token round-trip mismatch: %s != %s", back.Token(), token)
	}
}

func TestNeighborsCountInterior(t *testing.T) {
	c := CellAt(FineLevel, LatLon{Lat: 22.3, Lon: 114.2})
	neighbors := c.Neighbors(FineLevel)
	if len(neighbors) != 8 {
		t.Fatalf("expected 8 neighbors for an interior cell, got %d", len(neighbors))
	}
}

func TestParentMonotoneContainment(t *testing.T) {
	p := LatLon{Lat: 22.31, Lon: 114.21}
	fine := CellAt(FineLevel, p)
	coarse1 := fine.Parent(CoarseLevel)
	coarse2 := CellAt(CoarseLevel, p)
	if coarse1.Token() != coarse2.Token() {
		t.Fatalf("parent(cell_at(FINE,p), COARSE) should equal cell_at(COARSE,p)")
	}
}

func TestCellJSONRoundTrip(t *testing.T) {
	c := CellAt(FineLevel, LatLon{Lat: 10, Lon: 20})
	data, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var back CellId
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if back.Token() != c.Token() {
		t.Fatalf("json round-trip mismatch")
	}
}
