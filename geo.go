package anchorage

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean radius of the WGS84 reference sphere used for
// great-circle distance calculations throughout this package.
const EarthRadiusKm = 6371.0088

// LatLon is an immutable decimal-degree coordinate pair.
// Lat must lie in [-90, 90], Lon in [-180, 180].
type LatLon struct {
	Lat float64
	Lon float64
}

// IsValid reports whether the coordinate lies within the representable
// range of latitude and longitude.
func (ll LatLon) IsValid() bool {
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lon >= -180 && ll.Lon <= 180
}

func (ll LatLon) toLatLng() s2.LatLng {
	return s2.LatLngFromDegrees(ll.Lat, ll.Lon)
}

// Distance returns the great-circle distance between a and b, in
// kilometres, using the haversine formula on a sphere of radius
// EarthRadiusKm. It is symmetric and returns (numerically) zero when a
// and b coincide.
func Distance(a, b LatLon) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// clamp for points that coincide to representation precision; h can
	// drift marginally below 0 or above 1 due to floating point error
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// MeanLocation returns the arithmetic mean of lat and lon over pts. It
// returns the zero LatLon for an empty slice; callers should guard on
// length where a non-trivial mean is required.
func MeanLocation(pts []LatLon) LatLon {
	if len(pts) == 0 {
		return LatLon{}
	}
	var sumLat, sumLon float64
	for _, p := range pts {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(pts))
	return LatLon{Lat: sumLat / n, Lon: sumLon / n}
}

// Cell levels used by this pipeline. Fine backs anchorage aggregation
// (~0.5 km cell side); Coarse backs the visit-time spatial join
// (~8 km cell side). These match the S2 levels used by the reference
// implementation (ANCHORAGES_S2_SCALE=14, VISITS_S2_SCALE=10).
const (
	FineLevel   = 14
	CoarseLevel = 10
)

// Tunables feeding the startup safety-margin assertion in AssertCellSizes.
const (
	visitRadiusKm          = 3.0
	visitSafetyFactor      = 1.0
	approxFineCellDiagKm   = 0.5 * math.Sqrt2
	approxCoarseCellEdgeKm = 8.0
)

// AssertCellSizes verifies that the coarse cell edge is large enough that
// any point within visitRadiusKm of an anchorage is guaranteed to be
// found by inspecting only a vessel's current coarse cell and its
// neighbors. This is a configuration-level invariant (spec §4.1): a
// failure here is fatal at startup, before any data is read.
func AssertCellSizes() error {
	required := 2 * (visitRadiusKm + approxFineCellDiagKm) * visitSafetyFactor
	if approxCoarseCellEdgeKm < required {
		return fmt.Errorf(
			"%w: coarse cell edge (%.3f km) is too small for visit radius %.1f km "+
				"with safety factor %.1f: need >= %.3f km",
			ErrCellSizeAssertion, approxCoarseCellEdgeKm, visitRadiusKm, visitSafetyFactor, required,
		)
	}
	return nil
}

// CellId identifies a cell of the hierarchical spherical subdivision of
// the Earth used for spatial bucketing. It wraps an s2.CellID, the same
// cell hierarchy the reference Python pipeline used via s2sphere.
type CellId struct {
	id s2.CellID
}

// CellAt returns the CellId containing latlon at the given level.
func CellAt(level int, latlon LatLon) CellId {
	return CellId{id: s2.CellIDFromLatLng(latlon.toLatLng()).Parent(level)}
}

// Parent returns the ancestor of c at level. level must not exceed c's
// own level.
func (c CellId) Parent(level int) CellId {
	return CellId{id: c.id.Parent(level)}
}

// Level returns the subdivision level of c.
func (c CellId) Level() int {
	return c.id.Level()
}

// Neighbors returns the up-to-8 cells edge- or corner-adjacent to c at
// the given level.
func (c CellId) Neighbors(level int) []CellId {
	ids := c.id.AllNeighbors(level)
	out := make([]CellId, len(ids))
	for i, id := range ids {
		out[i] = CellId{id: id}
	}
	return out
}

// Token returns the compact string form of c, suitable as a map key.
func (c CellId) Token() string {
	return c.id.ToToken()
}

// Valid reports whether c identifies a genuine cell.
func (c CellId) Valid() bool {
	return c.id.IsValid()
}

// CellFromToken parses the compact string form produced by Token.
func CellFromToken(token string) CellId {
	return CellId{id: s2.CellIDFromToken(token)}
}

// Less establishes the tie-break ordering spec §4.6 requires: lexical
// ordering on the token form.
func (c CellId) Less(other CellId) bool {
	return c.Token() < other.Token()
}

// MarshalJSON/UnmarshalJSON round-trip a CellId through its token form,
// so the NDJSON codec (which has no visibility into the unexported
// s2.CellID field) carries it faithfully.
func (c CellId) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Token())
}

func (c *CellId) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	*c = CellFromToken(token)
	return nil
}
