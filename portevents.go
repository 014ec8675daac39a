package anchorage

import "time"

// EventType enumerates the port-visit state machine's emitted event
// kinds (spec.md §3).
type EventType int

const (
	PortEntry EventType = iota
	PortStopBegin
	PortStopEnd
	PortGapBegin
	PortGapEnd
	PortExit
)

// eventOrder realizes spec.md §4.6's tie-break rule for events sharing a
// timestamp: ENTRY < STOP_BEGIN < GAP_BEGIN < GAP_END < STOP_END < EXIT.
var eventOrder = map[EventType]int{
	PortEntry:     0,
	PortStopBegin: 1,
	PortGapBegin:  2,
	PortGapEnd:    3,
	PortStopEnd:   4,
	PortExit:      5,
}

func (e EventType) String() string {
	switch e {
	case PortEntry:
		return "PORT_ENTRY"
	case PortStopBegin:
		return "PORT_STOP_BEGIN"
	case PortStopEnd:
		return "PORT_STOP_END"
	case PortGapBegin:
		return "PORT_GAP_BEGIN"
	case PortGapEnd:
		return "PORT_GAP_END"
	case PortExit:
		return "PORT_EXIT"
	default:
		return "UNKNOWN"
	}
}

// PortEvent is one emission of the state machine (spec.md §3).
type PortEvent struct {
	VesselID      int64
	Timestamp     time.Time
	Lat           float64
	Lon           float64
	AnchorageID   string
	PortLabel     string
	EventType     EventType
	LastTimestamp time.Time
}

// VisitStateKind enumerates the state machine's top-level/sub states
// (spec.md §4.6).
type VisitStateKind int

const (
	AtSea VisitStateKind = iota
	InPort
	Stopped
	Gap
)

// VisitState is the per-(vessel_id, date) carry-over tuple (spec.md §3).
type VisitState struct {
	VesselID          int64
	Date              time.Time
	State             VisitStateKind
	LastTimestamp     time.Time
	ActiveAnchorageID string
	HasActiveAnchorage bool
}

// candidateAnchorage returns the anchorage in idx minimizing distance to
// loc among those owned by loc's coarse cell, and that distance. The tie
// break on exactly equal distances is the smaller fine-cell token,
// lexicographically (spec.md §4.6).
func candidateAnchorage(idx TaggedAnchorageIndex, loc LatLon) (TaggedAnchorage, float64, bool) {
	coarse := CellAt(CoarseLevel, loc)
	bucket := idx[coarse.Token()]
	if len(bucket) == 0 {
		return TaggedAnchorage{}, math_Inf, false
	}

	best := bucket[0]
	bestDist := Distance(loc, best.Location)
	for _, a := range bucket[1:] {
		d := Distance(loc, a.Location)
		if d < bestDist || (d == bestDist && a.FineCellID.Less(best.FineCellID)) {
			bestDist = d
			best = a
		}
	}
	return best, bestDist, true
}

const math_Inf = 1e18

// StateMachineConfig bundles the hysteresis thresholds spec.md §4.6
// names.
type StateMachineConfig struct {
	EntryDistKm        float64
	ExitDistKm         float64
	StoppedBeginKnots  float64
	StoppedEndKnots    float64
	MinGapDuration     time.Duration
}

// RunStateMachine walks one vessel's ordered (deduped, tagged, not
// thinned) record stream against the anchorage multi-index, emitting
// PortEvents and the resulting carry-over VisitState (spec.md §4.6).
// prior is the optional carry-over from the previous day; its zero value
// (HasActiveAnchorage=false, State=AtSea) represents "no prior state".
func RunStateMachine(
	vesselID int64,
	records []TaggedRecord,
	idx TaggedAnchorageIndex,
	cfg StateMachineConfig,
	prior VisitState,
) ([]PortEvent, VisitState) {
	state := prior.State
	lastTimestamp := prior.LastTimestamp
	activeAnchorageID := prior.ActiveAnchorageID
	haveActive := prior.HasActiveAnchorage
	havePrior := !prior.LastTimestamp.IsZero()

	var events []PortEvent

	emit := func(vesselID int64, ts time.Time, loc LatLon, anchorageID, label string, et EventType, lastTs time.Time) {
		events = append(events, PortEvent{
			VesselID:      vesselID,
			Timestamp:     ts,
			Lat:           loc.Lat,
			Lon:           loc.Lon,
			AnchorageID:   anchorageID,
			PortLabel:     label,
			EventType:     et,
			LastTimestamp: lastTs,
		})
	}

	for _, r := range records {
		best, dist, found := candidateAnchorage(idx, r.Location)

		if havePrior && (state == InPort || state == Stopped || state == Gap) &&
			r.Timestamp.Sub(lastTimestamp) >= cfg.MinGapDuration {
			emit(vesselID, lastTimestamp, r.Location, activeAnchorageID, "", PortGapBegin, lastTimestamp)
			emit(vesselID, r.Timestamp, r.Location, activeAnchorageID, "", PortGapEnd, r.Timestamp)
		}

		switch state {
		case AtSea:
			if found && dist <= cfg.EntryDistKm {
				activeAnchorageID = best.FineCellID.Token()
				haveActive = true
				emit(vesselID, r.Timestamp, r.Location, activeAnchorageID, best.Label, PortEntry, lastTimestamp)
				state = InPort
			}
		case InPort, Stopped, Gap:
			if !found || dist >= cfg.ExitDistKm {
				if state == Stopped {
					emit(vesselID, lastTimestamp, r.Location, activeAnchorageID, "", PortStopEnd, lastTimestamp)
				}
				emit(vesselID, r.Timestamp, r.Location, activeAnchorageID, "", PortExit, lastTimestamp)
				haveActive = false
				activeAnchorageID = ""
				state = AtSea
			} else if state == InPort && r.SpeedKnots <= cfg.StoppedBeginKnots {
				emit(vesselID, r.Timestamp, r.Location, activeAnchorageID, "", PortStopBegin, lastTimestamp)
				state = Stopped
			} else if state == Stopped && r.SpeedKnots >= cfg.StoppedEndKnots {
				emit(vesselID, r.Timestamp, r.Location, activeAnchorageID, "", PortStopEnd, lastTimestamp)
				state = InPort
			}
		}

		lastTimestamp = r.Timestamp
		havePrior = true
	}

	return events, VisitState{
		VesselID:           vesselID,
		State:              state,
		LastTimestamp:      lastTimestamp,
		ActiveAnchorageID:  activeAnchorageID,
		HasActiveAnchorage: haveActive,
	}
}
