package anchorage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// PortVisit is a closed interval between a matched PORT_ENTRY/PORT_EXIT
// pair, containing every PORT_STOP_*/PORT_GAP_* event that occurred
// strictly between them (spec.md §3/§4.7).
type PortVisit struct {
	VisitID          string
	VesselID         int64
	StartTimestamp   time.Time
	StartLat         float64
	StartLon         float64
	StartAnchorageID string
	EndTimestamp     time.Time
	EndLat           float64
	EndLon           float64
	EndAnchorageID   string
	Events           []PortEvent
}

// GroupVisits walks a vessel's sorted event stream and collapses it into
// closed visits (spec.md §4.7). A trailing open visit (ENTRY with no
// matching EXIT in this batch) is returned separately so the caller can
// fold it into the carry-over rather than emit it.
func GroupVisits(vesselID int64, events []PortEvent) (closed []PortVisit, trailingOpen []PortEvent) {
	sorted := make([]PortEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return eventOrder[sorted[i].EventType] < eventOrder[sorted[j].EventType]
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var open *PortEvent
	var current []PortEvent

	for i := range sorted {
		e := sorted[i]
		switch e.EventType {
		case PortEntry:
			open = &sorted[i]
			current = nil
		case PortExit:
			if open == nil {
				continue
			}
			visit := PortVisit{
				VisitID:          visitID(vesselID, open.Timestamp, open.AnchorageID),
				VesselID:         vesselID,
				StartTimestamp:   open.Timestamp,
				StartLat:         open.Lat,
				StartLon:         open.Lon,
				StartAnchorageID: open.AnchorageID,
				EndTimestamp:     e.Timestamp,
				EndLat:           e.Lat,
				EndLon:           e.Lon,
				EndAnchorageID:   e.AnchorageID,
				Events:           current,
			}
			closed = append(closed, visit)
			open = nil
			current = nil
		default:
			if open != nil {
				current = append(current, e)
			}
		}
	}

	if open != nil {
		trailingOpen = append([]PortEvent{*open}, current...)
	}

	return closed, trailingOpen
}

// visitID is a deterministic hash of (vessel_id, start_timestamp,
// start_anchorage_id), per spec.md §4.7.
func visitID(vesselID int64, start time.Time, anchorageID string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s", vesselID, start.UnixNano(), anchorageID)
	return hex.EncodeToString(h.Sum(nil))[:32]
}
