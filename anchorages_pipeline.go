package anchorage

import (
	"path/filepath"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/oceantrack/anchorages/encode"
	"github.com/oceantrack/anchorages/search"
	"github.com/oceantrack/anchorages/storage"
)

// AnchoragesPipelineInput bundles the anchorages binary's resolved CLI
// flags and loaded per-worker caches (spec.md §6/§9).
type AnchoragesPipelineInput struct {
	InputTableURI   string
	OutputTableURI  string
	TileDBConfigURI string
	FishingVessels  []int64
	Gazetteer       []Port
	Config          Config
	StartDate       time.Time
	EndDate         time.Time
}

// RunAnchoragesPipeline is the anchorages binary's top-level operator
// graph: parse, group by vessel, restrict to the [StartDate, EndDate]
// batch window (spec.md §6's batch window, the Go analogue of the
// original's TABLE_DATE_RANGE-scoped BigQuery read), process
// trajectories, aggregate into anchorage points, and commit both an
// NDJSON shard and a TileDB array (spec.md §5/§6). It assumes
// AssertCellSizes already ran (fatal at startup, before any data is
// read, per spec.md §7).
func RunAnchoragesPipeline(in AnchoragesPipelineInput) ([]AnchoragePoint, error) {
	shardURIs, err := search.FindShards(in.InputTableURI, "*.json", "")
	if err != nil {
		return nil, err
	}
	if len(shardURIs) == 0 {
		shardURIs, err = search.FindShards(in.InputTableURI, "*.ndjson", "")
		if err != nil {
			return nil, err
		}
	}

	byVessel, err := LoadMessages(shardURIs, in.Config.Blacklist())
	if err != nil {
		return nil, err
	}
	byVessel = filterByDateRange(byVessel, in.StartDate, in.EndDate)

	trajectories := ProcessTrajectories(byVessel, in.Config)
	fishing := FishingVesselSet(in.FishingVessels)

	points := AggregateAnchorages(
		trajectories,
		fishing,
		in.Gazetteer,
		in.Config.MinUniqueVesselsForAnchorage,
		in.Config.TopDestinationsCount,
	)

	if err := commitAnchorages(points, in.OutputTableURI, in.TileDBConfigURI); err != nil {
		return nil, err
	}

	return points, nil
}

func commitAnchorages(points []AnchoragePoint, outURI, tiledbConfigURI string) error {
	summary := map[string]any{
		"anchorage_count": len(points),
	}
	if _, err := WriteJson(filepath.Join(outURI, "anchorages-summary.json"), tiledbConfigURI, summary); err != nil {
		return err
	}

	if _, err := encode.WriteNDJson(filepath.Join(outURI, "anchorages.ndjson"), points); err != nil {
		return err
	}

	rows := make([]AnchoragePointRow, len(points))
	for i, p := range points {
		rows[i] = ToRow(p)
	}

	ctx, err := tiledbContext(tiledbConfigURI)
	if err != nil {
		return err
	}
	defer ctx.Free()

	return storage.WriteTable(filepath.Join(outURI, "anchorages.tiledb"), ctx, rows)
}

func tiledbContext(configURI string) (*tiledb.Context, error) {
	var config *tiledb.Config
	var err error
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer config.Free()

	return tiledb.NewContext(config)
}

// dateShardURI builds the per-day output path a date-sharded table
// writes to (spec.md §5's WRITE_TRUNCATE-by-date-shard semantics).
func dateShardURI(base string, day time.Time, name string) string {
	return filepath.Join(base, day.Format("2006-01-02"), name)
}

// filterByDateRange drops every record whose timestamp falls outside
// [start, end], scoping the anchorages batch to its declared window the
// same way the original pipeline's TABLE_DATE_RANGE(start, end) scopes
// its source read (spec.md §6). Vessels left with no records are dropped
// entirely so ProcessVessel's minimum-position filter sees only the
// window's own data.
func filterByDateRange(byVessel map[int64][]Record, start, end time.Time) map[int64][]Record {
	out := make(map[int64][]Record, len(byVessel))
	for vesselID, records := range byVessel {
		var kept []Record
		for _, r := range records {
			if InRange(r.Time(), start, end) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			out[vesselID] = kept
		}
	}
	return out
}
