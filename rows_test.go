package anchorage

import "testing"

func TestTaggedAnchorageRowRoundTrip(t *testing.T) {
	cell := CellAt(FineLevel, LatLon{Lat: 1.2903, Lon: 103.8515})
	want := TaggedAnchorage{
		Location:    LatLon{Lat: 1.2903, Lon: 103.8515},
		FineCellID:  cell,
		Label:       "SINGAPORE",
		ISO3:        "SGP",
		Sublabel:    "Keppel Terminal",
		LabelSource: "curated",
	}

	got := FromTaggedAnchorageRow(ToTaggedAnchorageRow(want))
	if got.Location != want.Location {
		t.Fatalf("expected location %+v, got %+v", want.Location, got.Location)
	}
	if got.FineCellID.Token() != want.FineCellID.Token() {
		t.Fatalf("expected fine cell token %s, got %s", want.FineCellID.Token(), got.FineCellID.Token())
	}
	if got.Label != want.Label || got.ISO3 != want.ISO3 || got.Sublabel != want.Sublabel || got.LabelSource != want.LabelSource {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
