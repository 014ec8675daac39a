package anchorage

import "time"

// Record is the tagged variant produced by the decode package: a raw AIS
// message classifies into exactly one of VesselLocationRecord,
// VesselInfoRecord, or InvalidRecord. Downstream code dispatches on the
// concrete type via a type switch, never on a string tag.
type Record interface {
	Time() time.Time
}

// VesselLocationRecord is a position report.
type VesselLocationRecord struct {
	Timestamp          time.Time
	Location           LatLon
	DistanceFromShoreKm float64
	SpeedKnots         float64
	Course             *float64
}

func (r VesselLocationRecord) Time() time.Time { return r.Timestamp }

// VesselInfoRecord carries a declared destination; it has no position.
type VesselInfoRecord struct {
	Timestamp   time.Time
	Destination string
}

func (r VesselInfoRecord) Time() time.Time { return r.Timestamp }

// InvalidRecord reserves a timestamp slot so per-vessel sequencing is
// preserved even though the message could not be classified.
type InvalidRecord struct {
	Timestamp time.Time
}

func (r InvalidRecord) Time() time.Time { return r.Timestamp }

// TaggedRecord is a location record augmented with the most recently
// declared destination, its fine-level cell id, and whether that cell
// differs from the immediately preceding record's cell.
type TaggedRecord struct {
	Timestamp           time.Time
	Location            LatLon
	DistanceFromShoreKm float64
	SpeedKnots          float64
	Destination         string
	FineCellID          CellId
	IsNewCell           bool
}

// StationaryPeriod summarizes a maximal run of positions confined to a
// small radius for at least the configured minimum duration.
type StationaryPeriod struct {
	MeanLocation            LatLon
	StartTime               time.Time
	Duration                time.Duration
	MeanDistanceFromShoreKm float64
	RmsDriftRadiusKm        float64
	DestinationAtEntry      string
	FineCellIDOfMean        CellId
}
