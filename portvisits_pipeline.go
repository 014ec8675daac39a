package anchorage

import (
	"log"
	"path/filepath"
	"time"

	"github.com/oceantrack/anchorages/encode"
	"github.com/oceantrack/anchorages/search"
	"github.com/oceantrack/anchorages/storage"
)

// PortVisitsPipelineInput bundles the portvisits binary's resolved CLI
// flags and loaded per-worker caches.
type PortVisitsPipelineInput struct {
	InputTableURI     string
	AnchorageTableURI string
	OutputTableURI    string
	StateTableURI     string
	TileDBConfigURI   string
	Config            Config
	StateMachine      StateMachineConfig
	StartDate         time.Time
	EndDate           time.Time
}

// PortVisitsResult is the batch's output, returned for tests and for
// logging summaries in cmd/portvisits.
type PortVisitsResult struct {
	Events []PortEvent
	Visits []PortVisit
	States []VisitState
}

// RunPortVisitsPipeline is the portvisits binary's operator graph:
// parse, group by vessel, tag (no thinning), resolve the anchorage
// multi-index, then walk the batch window one calendar day at a time
// (spec.md §5's date-sharded WRITE_TRUNCATE commit and §4.6's "a batch
// reads only the state partition for start_date − 1 day"). Each day's
// state-machine run consumes records from `day − warmup_padding` through
// `day` (spec.md §4.6), reads the previous day's committed VisitState,
// and commits its own events/visits/state to that day's shard before the
// next day's iteration reads it back as its prior state.
func RunPortVisitsPipeline(in PortVisitsPipelineInput) (PortVisitsResult, error) {
	anchorages, err := loadTaggedAnchorages(in.AnchorageTableURI, in.TileDBConfigURI)
	if err != nil {
		return PortVisitsResult{}, err
	}
	index := IndexTaggedAnchorages(anchorages)

	shardURIs, err := search.FindShards(in.InputTableURI, "*.json", "")
	if err != nil {
		return PortVisitsResult{}, err
	}
	if len(shardURIs) == 0 {
		shardURIs, err = search.FindShards(in.InputTableURI, "*.ndjson", "")
		if err != nil {
			return PortVisitsResult{}, err
		}
	}

	byVessel, err := LoadMessages(shardURIs, in.Config.Blacklist())
	if err != nil {
		return PortVisitsResult{}, err
	}

	trajectories := ProcessTrajectories(byVessel, in.Config)
	padding := in.Config.WarmupPadding()

	var allEvents []PortEvent
	var allVisits []PortVisit
	var allStates []VisitState

	for _, day := range DateRange(in.StartDate, in.EndDate) {
		windowStart := day.Add(-padding)
		windowEnd := day.AddDate(0, 0, 1)

		priorStates, err := loadPriorStates(in.StateTableURI, day.AddDate(0, 0, -1), in.TileDBConfigURI)
		if err != nil {
			return PortVisitsResult{}, err
		}

		var dayEvents []PortEvent
		var dayVisits []PortVisit
		var dayStates []VisitState

		for _, traj := range trajectories {
			var windowed []TaggedRecord
			for _, r := range traj.Ordered {
				if !r.Timestamp.Before(windowStart) && r.Timestamp.Before(windowEnd) {
					windowed = append(windowed, r)
				}
			}
			if len(windowed) == 0 {
				continue
			}

			prior := priorStates[traj.VesselID]
			events, newState := RunStateMachine(traj.VesselID, windowed, index, in.StateMachine, prior)

			var inRangeEvents []PortEvent
			for _, e := range events {
				if InRange(e.Timestamp, day, day) {
					inRangeEvents = append(inRangeEvents, e)
				}
			}

			closed, _ := GroupVisits(traj.VesselID, inRangeEvents)

			dayEvents = append(dayEvents, inRangeEvents...)
			dayVisits = append(dayVisits, closed...)
			newState.Date = day
			dayStates = append(dayStates, newState)
		}

		if err := commitPortVisits(dayEvents, dayVisits, dayStates, in.OutputTableURI, in.StateTableURI, day, in.TileDBConfigURI); err != nil {
			return PortVisitsResult{}, err
		}

		allEvents = append(allEvents, dayEvents...)
		allVisits = append(allVisits, dayVisits...)
		allStates = append(allStates, dayStates...)
	}

	return PortVisitsResult{Events: allEvents, Visits: allVisits, States: allStates}, nil
}

// loadTaggedAnchorages reads the curated anchorage table a port-visit run
// resolves positions against (spec.md §6's *Anchorage table*: `lat, lon,
// s2id, label, iso3, sublabel, label_source` — distinct from this
// pipeline's own AnchoragePoint output schema), trying the NDJSON form
// first and falling back to the TileDB array (spec.md §6: tables accept
// either storage form), matching loadPriorStates's dual-format lookup.
func loadTaggedAnchorages(uri string, tiledbConfigURI string) ([]TaggedAnchorage, error) {
	rows, err := encode.ReadNDJson[TaggedAnchorage](filepath.Join(uri, "anchorages.ndjson"))
	if err == nil {
		return rows, nil
	}

	ctx, ctxErr := tiledbContext(tiledbConfigURI)
	if ctxErr != nil {
		return nil, err
	}
	defer ctx.Free()

	anchorageRows, found, readErr := storage.ReadTable[TaggedAnchorageRow](filepath.Join(uri, "anchorages.tiledb"), ctx)
	if readErr != nil {
		return nil, readErr
	}
	if !found {
		return nil, err
	}
	anchorages := make([]TaggedAnchorage, len(anchorageRows))
	for i, r := range anchorageRows {
		anchorages[i] = FromTaggedAnchorageRow(r)
	}
	return anchorages, nil
}

// loadPriorStates reads the previous day's VisitState partition, trying
// the NDJSON shard first and falling back to the TileDB array (spec.md
// §6: the state table accepts either form). A missing partition in
// either form is not fatal (spec.md §7, ErrMissingPriorState): it is
// logged as a warning and an empty carry-over map is returned.
func loadPriorStates(stateTableURI string, date time.Time, tiledbConfigURI string) (map[int64]VisitState, error) {
	out := make(map[int64]VisitState)
	if stateTableURI == "" {
		return out, nil
	}

	ndjsonURI := dateShardURI(stateTableURI, date, "state.ndjson")
	rows, err := encode.ReadNDJson[VisitState](ndjsonURI)
	if err != nil {
		ctx, ctxErr := tiledbContext(tiledbConfigURI)
		if ctxErr != nil {
			log.Println("warning:", ErrMissingPriorState, date.Format("2006-01-02"))
			return out, nil
		}
		defer ctx.Free()

		tdbURI := dateShardURI(stateTableURI, date, "state.tiledb")
		stateRows, found, readErr := storage.ReadTable[VisitStateRow](tdbURI, ctx)
		if readErr != nil || !found {
			log.Println("warning:", ErrMissingPriorState, date.Format("2006-01-02"))
			return out, nil
		}
		for _, r := range stateRows {
			s := FromVisitStateRow(r)
			out[s.VesselID] = s
		}
		return out, nil
	}
	for _, s := range rows {
		out[s.VesselID] = s
	}
	return out, nil
}

func commitPortVisits(events []PortEvent, visits []PortVisit, states []VisitState, outURI, stateURI string, day time.Time, tiledbConfigURI string) error {
	if _, err := encode.WriteNDJson(dateShardURI(outURI, day, "events.ndjson"), events); err != nil {
		return err
	}
	if _, err := encode.WriteNDJson(dateShardURI(outURI, day, "visits.ndjson"), visits); err != nil {
		return err
	}
	if stateURI != "" {
		if _, err := encode.WriteNDJson(dateShardURI(stateURI, day, "state.ndjson"), states); err != nil {
			return err
		}
	}

	summary := map[string]any{
		"date":   day.Format("2006-01-02"),
		"events": len(events),
		"visits": len(visits),
		"states": len(states),
	}
	if _, err := encode.WriteJson(dateShardURI(outURI, day, "summary.json"), summary); err != nil {
		return err
	}

	ctx, err := tiledbContext(tiledbConfigURI)
	if err != nil {
		return err
	}
	defer ctx.Free()

	eventRows := make([]PortEventRow, len(events))
	for i, e := range events {
		eventRows[i] = ToEventRow(e)
	}
	if err := storage.WriteTable(dateShardURI(outURI, day, "events.tiledb"), ctx, eventRows); err != nil {
		return err
	}

	visitRows := make([]PortVisitRow, len(visits))
	for i, v := range visits {
		visitRows[i] = ToVisitRow(v)
	}
	if err := storage.WriteTable(dateShardURI(outURI, day, "visits.tiledb"), ctx, visitRows); err != nil {
		return err
	}

	if stateURI != "" {
		stateRows := make([]VisitStateRow, len(states))
		for i, s := range states {
			stateRows[i] = ToVisitStateRow(s)
		}
		if err := storage.WriteTable(dateShardURI(stateURI, day, "state.tiledb"), ctx, stateRows); err != nil {
			return err
		}
	}

	return nil
}
