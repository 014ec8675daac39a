package anchorage

import (
	"encoding/json"
	"time"
)

// The Row types below are the TileDB-tagged wire projections of the
// domain types in anchorage.go/portevents.go/visits.go, the same split
// the teacher keeps between a decoded in-memory record and its
// *ToTileDB companion (c.f. Attitude vs. its tiledb.go writer): composite
// fields (slices of cells, destinations, nested events) have no scalar
// TileDB datatype, so they are carried as JSON-encoded strings in the
// sink and rehydrated back into the domain type on read.

// AnchoragePointRow is the flattened, tagged form of AnchoragePoint.
type AnchoragePointRow struct {
	MeanLat                     float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	MeanLon                     float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	TotalVisits                 int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	UniqueVessels                int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	UniqueFishingVessels         int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	MeanDistanceFromShoreKm      float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	RmsDriftRadiusKm             float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	TopDestinationsJSON          string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	FineCellID                   string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	NeighborFineCellIDsJSON      string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	ActiveVesselCount            int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	TotalVesselCount              int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	StationaryVesselDays         float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	StationaryFishingVesselDays  float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	ActiveVesselDays             int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	NearestNamedPort              string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	NearestNamedPortKm            float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

func ToRow(a AnchoragePoint) AnchoragePointRow {
	destJSON, _ := json.Marshal(a.TopDestinations)
	neighborTokens := make([]string, len(a.NeighborFineCellIDs))
	for i, c := range a.NeighborFineCellIDs {
		neighborTokens[i] = c.Token()
	}
	neighborJSON, _ := json.Marshal(neighborTokens)

	return AnchoragePointRow{
		MeanLat:                     a.MeanLocation.Lat,
		MeanLon:                     a.MeanLocation.Lon,
		TotalVisits:                 int64(a.TotalVisits),
		UniqueVessels:               int64(a.UniqueVessels),
		UniqueFishingVessels:        int64(a.UniqueFishingVessels),
		MeanDistanceFromShoreKm:     a.MeanDistanceFromShoreKm,
		RmsDriftRadiusKm:            a.RmsDriftRadiusKm,
		TopDestinationsJSON:         string(destJSON),
		FineCellID:                  a.FineCellID.Token(),
		NeighborFineCellIDsJSON:     string(neighborJSON),
		ActiveVesselCount:           int64(a.ActiveVesselCount),
		TotalVesselCount:            int64(a.TotalVesselCount),
		StationaryVesselDays:        a.StationaryVesselDays,
		StationaryFishingVesselDays: a.StationaryFishingVesselDays,
		ActiveVesselDays:            int64(a.ActiveVesselDays),
		NearestNamedPort:            a.NearestNamedPort,
		NearestNamedPortKm:          a.NearestNamedPortKm,
	}
}

func FromRow(r AnchoragePointRow) AnchoragePoint {
	var destinations []string
	_ = json.Unmarshal([]byte(r.TopDestinationsJSON), &destinations)
	var neighborTokens []string
	_ = json.Unmarshal([]byte(r.NeighborFineCellIDsJSON), &neighborTokens)
	neighbors := make([]CellId, len(neighborTokens))
	for i, t := range neighborTokens {
		neighbors[i] = CellFromToken(t)
	}

	return AnchoragePoint{
		MeanLocation:                LatLon{Lat: r.MeanLat, Lon: r.MeanLon},
		TotalVisits:                 int(r.TotalVisits),
		UniqueVessels:               int(r.UniqueVessels),
		UniqueFishingVessels:        int(r.UniqueFishingVessels),
		MeanDistanceFromShoreKm:     r.MeanDistanceFromShoreKm,
		RmsDriftRadiusKm:            r.RmsDriftRadiusKm,
		TopDestinations:             destinations,
		FineCellID:                  CellFromToken(r.FineCellID),
		NeighborFineCellIDs:         neighbors,
		ActiveVesselCount:           int(r.ActiveVesselCount),
		TotalVesselCount:            int(r.TotalVesselCount),
		StationaryVesselDays:        r.StationaryVesselDays,
		StationaryFishingVesselDays: r.StationaryFishingVesselDays,
		ActiveVesselDays:            int(r.ActiveVesselDays),
		NearestNamedPort:            r.NearestNamedPort,
		NearestNamedPortKm:          r.NearestNamedPortKm,
	}
}

// TaggedAnchorageRow is the flattened form of TaggedAnchorage. Every
// field of the curated anchorage table (spec.md §6) is already scalar, so
// unlike AnchoragePointRow no field needs JSON flattening.
type TaggedAnchorageRow struct {
	Lat         float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Lon         float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	S2ID        string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	Label       string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	ISO3        string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	Sublabel    string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	LabelSource string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
}

func ToTaggedAnchorageRow(a TaggedAnchorage) TaggedAnchorageRow {
	return TaggedAnchorageRow{
		Lat:         a.Location.Lat,
		Lon:         a.Location.Lon,
		S2ID:        a.FineCellID.Token(),
		Label:       a.Label,
		ISO3:        a.ISO3,
		Sublabel:    a.Sublabel,
		LabelSource: a.LabelSource,
	}
}

func FromTaggedAnchorageRow(r TaggedAnchorageRow) TaggedAnchorage {
	return TaggedAnchorage{
		Location:    LatLon{Lat: r.Lat, Lon: r.Lon},
		FineCellID:  CellFromToken(r.S2ID),
		Label:       r.Label,
		ISO3:        r.ISO3,
		Sublabel:    r.Sublabel,
		LabelSource: r.LabelSource,
	}
}

// PortEventRow is the flattened form of PortEvent.
type PortEventRow struct {
	VesselID      int64     `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Timestamp     time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	Lat           float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Lon           float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	AnchorageID   string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	PortLabel     string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	EventType     string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	LastTimestamp time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
}

func ToEventRow(e PortEvent) PortEventRow {
	return PortEventRow{
		VesselID:      e.VesselID,
		Timestamp:     e.Timestamp,
		Lat:           e.Lat,
		Lon:           e.Lon,
		AnchorageID:   e.AnchorageID,
		PortLabel:     e.PortLabel,
		EventType:     e.EventType.String(),
		LastTimestamp: e.LastTimestamp,
	}
}

func FromEventRow(r PortEventRow) PortEvent {
	return PortEvent{
		VesselID:      r.VesselID,
		Timestamp:     r.Timestamp,
		Lat:           r.Lat,
		Lon:           r.Lon,
		AnchorageID:   r.AnchorageID,
		PortLabel:     r.PortLabel,
		EventType:     eventTypeFromString(r.EventType),
		LastTimestamp: r.LastTimestamp,
	}
}

func eventTypeFromString(s string) EventType {
	switch s {
	case "PORT_ENTRY":
		return PortEntry
	case "PORT_STOP_BEGIN":
		return PortStopBegin
	case "PORT_STOP_END":
		return PortStopEnd
	case "PORT_GAP_BEGIN":
		return PortGapBegin
	case "PORT_GAP_END":
		return PortGapEnd
	case "PORT_EXIT":
		return PortExit
	default:
		return PortEntry
	}
}

// PortVisitRow is the flattened form of PortVisit; its inner Events are
// JSON-encoded since the storage layer has no concept of a nested
// repeated attribute.
type PortVisitRow struct {
	VisitID          string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	VesselID         int64     `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	StartTimestamp   time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	StartLat         float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	StartLon         float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	StartAnchorageID string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	EndTimestamp     time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	EndLat           float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	EndLon           float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	EndAnchorageID   string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	EventsJSON       string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
}

func ToVisitRow(v PortVisit) PortVisitRow {
	rows := make([]PortEventRow, len(v.Events))
	for i, e := range v.Events {
		rows[i] = ToEventRow(e)
	}
	eventsJSON, _ := json.Marshal(rows)
	return PortVisitRow{
		VisitID:          v.VisitID,
		VesselID:         v.VesselID,
		StartTimestamp:   v.StartTimestamp,
		StartLat:         v.StartLat,
		StartLon:         v.StartLon,
		StartAnchorageID: v.StartAnchorageID,
		EndTimestamp:     v.EndTimestamp,
		EndLat:           v.EndLat,
		EndLon:           v.EndLon,
		EndAnchorageID:   v.EndAnchorageID,
		EventsJSON:       string(eventsJSON),
	}
}

func FromVisitRow(r PortVisitRow) PortVisit {
	var eventRows []PortEventRow
	_ = json.Unmarshal([]byte(r.EventsJSON), &eventRows)
	events := make([]PortEvent, len(eventRows))
	for i, er := range eventRows {
		events[i] = FromEventRow(er)
	}
	return PortVisit{
		VisitID:          r.VisitID,
		VesselID:         r.VesselID,
		StartTimestamp:   r.StartTimestamp,
		StartLat:         r.StartLat,
		StartLon:         r.StartLon,
		StartAnchorageID: r.StartAnchorageID,
		EndTimestamp:     r.EndTimestamp,
		EndLat:           r.EndLat,
		EndLon:           r.EndLon,
		EndAnchorageID:   r.EndAnchorageID,
		Events:           events,
	}
}

// VisitStateRow is the flattened carry-over form of VisitState.
type VisitStateRow struct {
	VesselID           int64     `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Date               time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	State              int64     `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	LastTimestamp      time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	ActiveAnchorageID  string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	HasActiveAnchorage bool      `tiledb:"dtype=uint8,ftype=attr" filters:"zstd(level=16)"`
}

func ToVisitStateRow(v VisitState) VisitStateRow {
	return VisitStateRow{
		VesselID:           v.VesselID,
		Date:               v.Date,
		State:              int64(v.State),
		LastTimestamp:      v.LastTimestamp,
		ActiveAnchorageID:  v.ActiveAnchorageID,
		HasActiveAnchorage: v.HasActiveAnchorage,
	}
}

func FromVisitStateRow(r VisitStateRow) VisitState {
	return VisitState{
		VesselID:           r.VesselID,
		Date:               r.Date,
		State:              VisitStateKind(r.State),
		LastTimestamp:      r.LastTimestamp,
		ActiveAnchorageID:  r.ActiveAnchorageID,
		HasActiveAnchorage: r.HasActiveAnchorage,
	}
}
