package anchorage

import (
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// AnchoragePoint is the per-cell aggregate emitted by the anchorage
// aggregator (spec.md §3/§4.4). Composite fields (TopDestinations,
// NeighborFineCellIDs) are plain Go slices here; the storage layer's
// Row projection (see rows.go) flattens them to JSON strings
// for the TileDB sink, matching the teacher's own pattern of a
// domain type plus a TileDB-tagged wire type (c.f. BeamArray vs. its
// ToTileDB companion).
type AnchoragePoint struct {
	MeanLocation                 LatLon
	TotalVisits                  int
	UniqueVessels                int
	UniqueFishingVessels         int
	MeanDistanceFromShoreKm      float64
	RmsDriftRadiusKm             float64
	TopDestinations              []string
	FineCellID                   CellId
	NeighborFineCellIDs          []CellId
	ActiveVesselCount            int
	TotalVesselCount             int
	StationaryVesselDays         float64
	StationaryFishingVesselDays  float64
	ActiveVesselDays             int
	NearestNamedPort             string
	NearestNamedPortKm           float64
}

type stationaryEntry struct {
	vesselID int64
	period   StationaryPeriod
}

type activeEntry struct {
	vesselID  int64
	location  TaggedRecord
}

// AggregateAnchorages groups stationary periods and active positions by
// fine cell (spec.md §4.4), computes per-cell statistics, and filters by
// minUniqueVessels. fishingVessels is the external fishing-vessel set
// (spec.md §6); gazetteer backs nearest_named_port.
func AggregateAnchorages(
	trajectories []VesselTrajectory,
	fishingVessels map[int64]struct{},
	gazetteer []Port,
	minUniqueVessels int,
	topN int,
) []AnchoragePoint {
	stationaryByCell := make(map[string][]stationaryEntry)
	activeByCell := make(map[string][]activeEntry)

	for _, traj := range trajectories {
		for _, sp := range traj.StationaryPeriods {
			token := sp.FineCellIDOfMean.Token()
			stationaryByCell[token] = append(stationaryByCell[token], stationaryEntry{traj.VesselID, sp})
		}
		for _, rec := range traj.Thinned {
			token := rec.FineCellID.Token()
			activeByCell[token] = append(activeByCell[token], activeEntry{traj.VesselID, rec})
		}
	}

	var out []AnchoragePoint
	for token, entries := range stationaryByCell {
		cell := CellFromToken(token)

		vesselSet := make(map[int64]struct{})
		fishingSet := make(map[int64]struct{})
		var meanPts []LatLon
		var shoreSum float64
		var rmsSqSum float64
		var destinations []string
		var stationaryDays, stationaryFishingDays float64

		for _, e := range entries {
			vesselSet[e.vesselID] = struct{}{}
			if _, ok := fishingVessels[e.vesselID]; ok {
				fishingSet[e.vesselID] = struct{}{}
			}
			meanPts = append(meanPts, e.period.MeanLocation)
			shoreSum += e.period.MeanDistanceFromShoreKm
			rmsSqSum += e.period.RmsDriftRadiusKm * e.period.RmsDriftRadiusKm
			if e.period.DestinationAtEntry != "" {
				destinations = append(destinations, e.period.DestinationAtEntry)
			}
			days := e.period.Duration.Hours() / 24.0
			stationaryDays += days
			if _, ok := fishingVessels[e.vesselID]; ok {
				stationaryFishingDays += days
			}
		}

		if len(vesselSet) < minUniqueVessels {
			continue
		}

		active := activeByCell[token]
		activeVesselSet := make(map[int64]struct{})
		activeVesselDaySet := make(map[string]struct{})
		for _, a := range active {
			activeVesselSet[a.vesselID] = struct{}{}
			dayKey := vesselDayKey(a.vesselID, a.location.Timestamp)
			activeVesselDaySet[dayKey] = struct{}{}
		}

		n := float64(len(entries))
		port, portKm := NearestPort(gazetteer, MeanLocation(meanPts))

		out = append(out, AnchoragePoint{
			MeanLocation:                MeanLocation(meanPts),
			TotalVisits:                 len(entries),
			UniqueVessels:               len(vesselSet),
			UniqueFishingVessels:        len(fishingSet),
			MeanDistanceFromShoreKm:     shoreSum / n,
			RmsDriftRadiusKm:            math.Sqrt(rmsSqSum / n),
			TopDestinations:             topDestinations(destinations, topN),
			FineCellID:                  cell,
			NeighborFineCellIDs:         cell.Neighbors(FineLevel),
			ActiveVesselCount:           len(activeVesselSet),
			TotalVesselCount:            len(lo.Union(lo.Keys(vesselSet), lo.Keys(activeVesselSet))),
			StationaryVesselDays:        stationaryDays,
			StationaryFishingVesselDays: stationaryFishingDays,
			ActiveVesselDays:            len(activeVesselDaySet),
			NearestNamedPort:            port.Name,
			NearestNamedPortKm:          portKm,
		})
	}

	return out
}

func vesselDayKey(vesselID int64, t time.Time) string {
	y, m, d := t.UTC().Date()
	return strconv.FormatInt(vesselID, 10) + "|" + strconv.Itoa(y) + "-" + strconv.Itoa(int(m)) + "-" + strconv.Itoa(d)
}

// TaggedAnchorage is one curated row of the external anchorage table that
// port-visit runs resolve positions against (spec.md §6's *Anchorage
// table*: `lat, lon, s2id, label, iso3, sublabel, label_source`). This is
// a distinct input schema from AnchoragePoint, which is this pipeline's
// own *output* (the *Anchorages table*, spec.md §6) — a port-visit run
// never reads its own anchorage output schema back in.
type TaggedAnchorage struct {
	Location    LatLon
	FineCellID  CellId
	Label       string
	ISO3        string
	Sublabel    string
	LabelSource string
}

// TaggedAnchorageIndex is keyed by coarse cell id token to the list of
// TaggedAnchorage records owned by that cell (spec.md §4.5/§9: "the
// anchorage multi-index is a map keyed by coarse cell id to a list of
// owned anchorage records").
type TaggedAnchorageIndex map[string][]TaggedAnchorage

// IndexTaggedAnchorages expands each TaggedAnchorage into one entry per
// cell id in {coarse_cell} ∪ neighbors(coarse_cell) (spec.md §4.5).
func IndexTaggedAnchorages(anchorages []TaggedAnchorage) TaggedAnchorageIndex {
	index := make(TaggedAnchorageIndex)
	for _, a := range anchorages {
		coarse := a.FineCellID.Parent(CoarseLevel)
		keys := append([]CellId{coarse}, coarse.Neighbors(CoarseLevel)...)
		for _, k := range keys {
			index[k.Token()] = append(index[k.Token()], a)
		}
	}
	return index
}
