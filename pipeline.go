package anchorage

import (
	"encoding/json"
	"log"
	"runtime"

	"github.com/alitto/pond"
	"github.com/samber/lo"

	"github.com/oceantrack/anchorages/decode"
	"github.com/oceantrack/anchorages/encode"
)

// LoadMessages reads every NDJSON shard listed in shardURIs and
// classifies each line via decode.ParseMessage, grouping by vessel id.
// This realizes spec.md §5's first implicit barrier: the group-by-key
// after parsing, sharded by vessel id.
func LoadMessages(shardURIs []string, blacklist map[int64]struct{}) (map[int64][]Record, error) {
	byVessel := make(map[int64][]Record)

	for _, uri := range shardURIs {
		raws, err := encode.ReadNDJson[json.RawMessage](uri)
		if err != nil {
			return nil, err
		}
		for _, raw := range raws {
			vesselID, rec, ok := decode.ParseMessage(raw, blacklist)
			if !ok {
				continue
			}
			byVessel[vesselID] = append(byVessel[vesselID], rec)
		}
	}

	return byVessel, nil
}

// ProcessTrajectories runs ProcessVessel over every vessel's records
// concurrently on a fixed worker pool sized like the teacher's
// convert_gsf_list (2 * NumCPU workers), one of spec.md §5's
// "parallel workers over key-sharded partitions" stages.
func ProcessTrajectories(byVessel map[int64][]Record, cfg Config) []VesselTrajectory {
	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n))

	type result struct {
		traj VesselTrajectory
		ok   bool
	}
	results := make([]result, len(byVessel))
	vesselIDs := lo.Keys(byVessel)

	for i, vesselID := range vesselIDs {
		i, vesselID := i, vesselID
		pool.Submit(func() {
			traj, ok := ProcessVessel(vesselID, byVessel[vesselID], cfg)
			results[i] = result{traj, ok}
		})
	}
	pool.StopAndWait()

	out := make([]VesselTrajectory, 0, len(results))
	for _, r := range results {
		if r.ok {
			out = append(out, r.traj)
		}
	}
	log.Printf("processed %d/%d vessels past the minimum-position filter", len(out), len(byVessel))
	return out
}

// FishingVesselSet turns the parsed fishing-vessel ids (see
// LoadFishingVesselList) into a lookup set (spec.md §6's "fishing-vessel
// list" input).
func FishingVesselSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
