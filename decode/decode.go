// Package decode classifies raw AIS JSON messages into the tagged
// record variants the rest of the pipeline consumes, the same role the
// teacher's decode package plays for GSF records (sort/classify/convert
// units), generalized from binary sonar records to JSON AIS messages.
package decode

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/oceantrack/anchorages"
)

// rawMessage mirrors the JSON shape spec.md §6 describes: at least
// vessel_id and timestamp; optional lat/lon/speed/distance_from_shore/
// destination. vessel_id is accepted as either a JSON number or string
// since upstream AIS feeds are inconsistent about it.
type rawMessage struct {
	VesselID           json.Number `json:"vessel_id"`
	Timestamp          string      `json:"timestamp"`
	Lat                *float64    `json:"lat"`
	Lon                *float64    `json:"lon"`
	Speed              *float64    `json:"speed"`
	Course             *float64    `json:"course"`
	DistanceFromShoreM *float64    `json:"distance_from_shore"`
	Destination        *string     `json:"destination"`
}

const maxValidSpeedKnots = 102.2

// ParseMessage classifies one raw JSON AIS message into a vessel id and
// a Record (spec.md §4.2). ok is false only when the message cannot be
// parsed at all (malformed JSON, non-numeric vessel id, or a timestamp in
// neither supported format) or its vessel id is blacklisted; a message that parses but fails validation still
// becomes an InvalidRecord so sequencing is preserved (spec.md §3).
func ParseMessage(raw json.RawMessage, blacklist map[int64]struct{}) (vesselID int64, rec anchorage.Record, ok bool) {
	var msg rawMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, nil, false
	}

	id, err := msg.VesselID.Int64()
	if err != nil {
		return 0, nil, false
	}
	if _, blacklisted := blacklist[id]; blacklisted {
		return 0, nil, false
	}

	ts, tsErr := parseTimestamp(msg.Timestamp)
	if tsErr != nil {
		return id, nil, false
	}

	if isLocationMessage(msg) && hasValidLocation(msg) {
		var course *float64
		if msg.Course != nil {
			c := *msg.Course
			course = &c
		}
		loc := anchorage.VesselLocationRecord{
			Timestamp:           ts,
			Location:            anchorage.LatLon{Lat: *msg.Lat, Lon: *msg.Lon},
			DistanceFromShoreKm: metresToKm(msg.DistanceFromShoreM),
			SpeedKnots:          roundTo(*msg.Speed, 1),
			Course:              course,
		}
		return id, loc, true
	}

	if msg.Destination != nil && strings.TrimSpace(*msg.Destination) != "" {
		return id, anchorage.VesselInfoRecord{Timestamp: ts, Destination: *msg.Destination}, true
	}

	return id, anchorage.InvalidRecord{Timestamp: ts}, true
}

func isLocationMessage(msg rawMessage) bool {
	return msg.Lat != nil && msg.Lon != nil && msg.Speed != nil
}

func hasValidLocation(msg rawMessage) bool {
	return *msg.Lat >= -90 && *msg.Lat <= 90 &&
		*msg.Lon >= -180 && *msg.Lon <= 180 &&
		*msg.Speed >= 0 && *msg.Speed <= maxValidSpeedKnots
}

func metresToKm(m *float64) float64 {
	if m == nil {
		return 0
	}
	return *m / 1000.0
}

func roundTo(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	return math.Round(v*mult) / mult
}

// parseTimestamp accepts both RFC3339 and the
// "YYYY-MM-DD HH:MM:SS.ffffff UTC" form used by the reference GFW
// pipeline (pipe_anchorages/records.py's
// strptime(msg['timestamp'], '%Y-%m-%d %H:%M:%S.%f %Z')).
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999 MST", s); err == nil {
		return t.UTC(), nil
	}
	// some feeds omit the zone literal entirely
	if t, err := time.Parse("2006-01-02 15:04:05.999999", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("unrecognised timestamp format: " + s)
}
