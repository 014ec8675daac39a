package decode

import (
	"encoding/json"
	"testing"

	anchorage "github.com/oceantrack/anchorages"
)

func TestParseMessageLocation(t *testing.T) {
	raw := json.RawMessage(`{"vessel_id":"123","timestamp":"2026-01-01T00:00:00Z","lat":22.3,"lon":114.2,"speed":5.12,"distance_from_shore":1500}`)
	id, rec, ok := ParseMessage(raw, nil)
	if !ok {
		t.Fatalf("expected message to parse")
	}
	if id != 123 {
		t.Fatalf("expected vessel id 123, got %d", id)
	}
	loc, isLoc := rec.(anchorage.VesselLocationRecord)
	if !isLoc {
		t.Fatalf("expected a VesselLocationRecord, got %T", rec)
	}
	if loc.SpeedKnots != 5.1 {
		t.Fatalf("expected speed rounded to 5.1, got %v", loc.SpeedKnots)
	}
	if loc.DistanceFromShoreKm != 1.5 {
		t.Fatalf("expected distance_from_shore_km=1.5, got %v", loc.DistanceFromShoreKm)
	}
}

func TestParseMessageGFWTimestampFormat(t *testing.T) {
	raw := json.RawMessage(`{"vessel_id":1,"timestamp":"2026-01-01 00:00:00.000000 UTC","lat":1,"lon":1,"speed":0}`)
	_, rec, ok := ParseMessage(raw, nil)
	if !ok {
		t.Fatalf("expected message with GFW timestamp format to parse")
	}
	if _, isLoc := rec.(anchorage.VesselLocationRecord); !isLoc {
		t.Fatalf("expected a VesselLocationRecord")
	}
}

func TestParseMessageInfo(t *testing.T) {
	raw := json.RawMessage(`{"vessel_id":1,"timestamp":"2026-01-01T00:00:00Z","destination":"SINGAPORE"}`)
	_, rec, ok := ParseMessage(raw, nil)
	if !ok {
		t.Fatalf("expected message to parse")
	}
	if _, isInfo := rec.(anchorage.VesselInfoRecord); !isInfo {
		t.Fatalf("expected a VesselInfoRecord, got %T", rec)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	raw := json.RawMessage(`{"vessel_id":1,"timestamp":"2026-01-01T00:00:00Z","lat":999,"lon":1,"speed":0}`)
	_, rec, ok := ParseMessage(raw, nil)
	if !ok {
		t.Fatalf("expected message to parse into an InvalidRecord")
	}
	if _, isInvalid := rec.(anchorage.InvalidRecord); !isInvalid {
		t.Fatalf("expected an InvalidRecord for out-of-range latitude, got %T", rec)
	}
}

func TestParseMessageBlacklisted(t *testing.T) {
	raw := json.RawMessage(`{"vessel_id":1,"timestamp":"2026-01-01T00:00:00Z","lat":1,"lon":1,"speed":0}`)
	blacklist := map[int64]struct{}{1: {}}
	_, _, ok := ParseMessage(raw, blacklist)
	if ok {
		t.Fatalf("expected blacklisted vessel id to be dropped")
	}
}
