package anchorage

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/samber/lo"
)

// Port is one row of the external named-port gazetteer.
type Port struct {
	Name    string
	Country string
	Location LatLon
}

// LoadGazetteer parses the CSV `port_name,country,latitude,longitude`
// named by spec.md §6, grounded on original_source/anchorages/nearest_port.py's
// PortFinder construction.
func LoadGazetteer(path string) ([]Port, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var ports []Port
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports, err
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == "port_name" {
				continue
			}
		}
		if len(rec) < 4 {
			continue
		}
		lat, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			continue
		}
		ll := LatLon{Lat: lat, Lon: lon}
		if !ll.IsValid() {
			continue
		}
		ports = append(ports, Port{Name: rec[0], Country: rec[1], Location: ll})
	}
	return ports, nil
}

// NearestPort does the linear-scan nearest-neighbor search spec.md §4.4
// calls for over the external port gazetteer. Returns the zero Port and
// +Inf when ports is empty.
func NearestPort(ports []Port, ll LatLon) (Port, float64) {
	if len(ports) == 0 {
		return Port{}, math.Inf(1)
	}

	dists := make([]float64, len(ports))
	for i, p := range ports {
		dists[i] = Distance(ll, p.Location)
	}
	_, idx := lo.MinIndex(dists)
	return ports[idx], dists[idx]
}
