package anchorage

import (
	"math"
	"sort"
	"time"
)

// VesselTrajectory is the result of processing one vessel's raw records:
// a thinned, tagged trajectory plus the stationary periods extracted
// from it (spec.md §4.3). Thinned, Tagged and stationary-extracted are
// kept separate from the state machine's own untouched ordered stream
// (spec.md §4.6/§9's "thinning off for the state machine").
type VesselTrajectory struct {
	VesselID          int64
	Thinned           []TaggedRecord
	StationaryPeriods []StationaryPeriod
	// Ordered is the deduped, sorted, tagged stream with no thinning or
	// stationary-reduction applied — the input the state machine needs.
	Ordered []TaggedRecord
}

// ProcessVessel runs the full per-vessel pipeline of spec.md §4.3: sort,
// dedup, length filter, thin, tag, extract stationary periods. ok is
// false when fewer than cfg.MinRequiredPositions records remain after
// dedup (the vessel is silently dropped, per spec.md §4.3/§7).
func ProcessVessel(vesselID int64, records []Record, cfg Config) (VesselTrajectory, bool) {
	locs, infos := splitRecords(records)

	sort.Slice(locs, func(i, j int) bool { return locs[i].Timestamp.Before(locs[j].Timestamp) })
	locs = dedupByTimestamp(locs)

	if len(locs) < cfg.MinRequiredPositions {
		return VesselTrajectory{}, false
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Timestamp.Before(infos[j].Timestamp) })

	ordered := tagTrajectory(locs, infos)
	thinned := thin(ordered, cfg.ThinningInterval())
	reduced, periods := extractStationaryPeriods(thinned, cfg.StationaryPeriodMaxDistanceKm, cfg.StationaryPeriodMinDuration())

	return VesselTrajectory{
		VesselID:          vesselID,
		Thinned:           reduced,
		StationaryPeriods: periods,
		Ordered:           ordered,
	}, true
}

func splitRecords(records []Record) ([]VesselLocationRecord, []VesselInfoRecord) {
	var locs []VesselLocationRecord
	var infos []VesselInfoRecord
	for _, r := range records {
		switch v := r.(type) {
		case VesselLocationRecord:
			locs = append(locs, v)
		case VesselInfoRecord:
			infos = append(infos, v)
		}
	}
	return locs, infos
}

// dedupByTimestamp assumes locs is sorted ascending; first occurrence of
// a repeated timestamp wins.
func dedupByTimestamp(locs []VesselLocationRecord) []VesselLocationRecord {
	out := make([]VesselLocationRecord, 0, len(locs))
	var last time.Time
	first := true
	for _, r := range locs {
		if !first && r.Timestamp.Equal(last) {
			continue
		}
		out = append(out, r)
		last = r.Timestamp
		first = false
	}
	return out
}

// tagTrajectory maintains a running last-known destination from the most
// recent VesselInfoRecord at or before each location's timestamp, and
// tags each location with its fine cell id and whether that cell differs
// from the prior record's cell (spec.md §4.3 step 5).
func tagTrajectory(locs []VesselLocationRecord, infos []VesselInfoRecord) []TaggedRecord {
	out := make([]TaggedRecord, 0, len(locs))
	infoIdx := 0
	lastDestination := ""
	var prevCell CellId
	havePrev := false

	for _, loc := range locs {
		for infoIdx < len(infos) && !infos[infoIdx].Timestamp.After(loc.Timestamp) {
			lastDestination = infos[infoIdx].Destination
			infoIdx++
		}

		cell := CellAt(FineLevel, loc.Location)
		isNew := !havePrev || cell.Token() != prevCell.Token()

		out = append(out, TaggedRecord{
			Timestamp:           loc.Timestamp,
			Location:            loc.Location,
			DistanceFromShoreKm: loc.DistanceFromShoreKm,
			SpeedKnots:          loc.SpeedKnots,
			Destination:         lastDestination,
			FineCellID:          cell,
			IsNewCell:           isNew,
		})
		prevCell = cell
		havePrev = true
	}
	return out
}

// thin keeps a record iff its timestamp is >= interval after the last
// kept record (spec.md §4.3 step 4).
func thin(tagged []TaggedRecord, interval time.Duration) []TaggedRecord {
	if len(tagged) == 0 {
		return nil
	}
	out := make([]TaggedRecord, 0, len(tagged))
	out = append(out, tagged[0])
	last := tagged[0].Timestamp
	for _, r := range tagged[1:] {
		if r.Timestamp.Sub(last) >= interval {
			out = append(out, r)
			last = r.Timestamp
		}
	}
	return out
}

// extractStationaryPeriods implements spec.md §4.3 step 6: a running
// anchor defines the current candidate period; records within
// maxDistance of the anchor extend the candidate. When the radius would
// be violated, the candidate closes: spans >= minDuration emit a
// StationaryPeriod and collapse to first+last in the returned reduced
// trajectory; shorter candidates are kept inline untouched. Any residual
// candidate at exhaustion is flushed inline without closing into a
// period.
func extractStationaryPeriods(tagged []TaggedRecord, maxDistanceKm float64, minDuration time.Duration) ([]TaggedRecord, []StationaryPeriod) {
	if len(tagged) == 0 {
		return nil, nil
	}

	var reduced []TaggedRecord
	var periods []StationaryPeriod

	candidate := []TaggedRecord{tagged[0]}
	anchor := tagged[0]

	flushCandidate := func() {
		if len(candidate) == 0 {
			return
		}
		span := candidate[len(candidate)-1].Timestamp.Sub(candidate[0].Timestamp)
		if span >= minDuration && len(candidate) > 1 {
			pts := make([]LatLon, len(candidate))
			var sumShore float64
			var sumSqDist float64
			for i, r := range candidate {
				pts[i] = r.Location
				sumShore += r.DistanceFromShoreKm
			}
			mean := MeanLocation(pts)
			for _, r := range candidate {
				d := Distance(r.Location, mean)
				sumSqDist += d * d
			}
			n := float64(len(candidate))
			periods = append(periods, StationaryPeriod{
				MeanLocation:            mean,
				StartTime:               candidate[0].Timestamp,
				Duration:                span,
				MeanDistanceFromShoreKm: sumShore / n,
				RmsDriftRadiusKm:        math.Sqrt(sumSqDist / n),
				DestinationAtEntry:      candidate[0].Destination,
				FineCellIDOfMean:        CellAt(FineLevel, mean),
			})
			reduced = append(reduced, candidate[0], candidate[len(candidate)-1])
		} else {
			reduced = append(reduced, candidate...)
		}
	}

	for i := 1; i < len(tagged); i++ {
		r := tagged[i]
		if Distance(r.Location, anchor.Location) <= maxDistanceKm {
			candidate = append(candidate, r)
			continue
		}
		flushCandidate()
		candidate = []TaggedRecord{r}
		anchor = r
	}
	flushCandidate()

	return reduced, periods
}
