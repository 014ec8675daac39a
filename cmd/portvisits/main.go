package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	anchorage "github.com/oceantrack/anchorages"
)

func run(cCtx *cli.Context) error {
	if err := anchorage.AssertCellSizes(); err != nil {
		log.Fatal(err)
	}

	cfg, err := anchorage.LoadConfig(cCtx.String("config"))
	if err != nil {
		return err
	}

	startDate, err := time.Parse("2006-01-02", cCtx.String("start-date"))
	if err != nil {
		return err
	}
	endDate, err := time.Parse("2006-01-02", cCtx.String("end-date"))
	if err != nil {
		return err
	}
	if endDate.Before(startDate) {
		return anchorage.ErrInvalidDateRange
	}

	input := cCtx.String("input-table")
	anchorageTable := cCtx.String("anchorage-table")
	output := cCtx.String("output-table")
	if input == "" {
		return anchorage.ErrMissingInputTable
	}
	if anchorageTable == "" {
		return anchorage.ErrMissingAnchorageTable
	}
	if output == "" {
		return anchorage.ErrMissingOutputTable
	}

	stateMachine := anchorage.StateMachineConfig{
		EntryDistKm:       cfg.AnchorageEntryDistanceKm,
		ExitDistKm:        cfg.AnchorageExitDistanceKm,
		StoppedBeginKnots: cfg.StoppedBeginSpeedKnots,
		StoppedEndKnots:   cfg.StoppedEndSpeedKnots,
		MinGapDuration:    cfg.MinimumPortGapDuration(),
	}

	log.Println("Processing port visits:", input, "->", output)
	result, err := anchorage.RunPortVisitsPipeline(anchorage.PortVisitsPipelineInput{
		InputTableURI:     input,
		AnchorageTableURI: anchorageTable,
		OutputTableURI:    output,
		StateTableURI:     cCtx.String("state-table"),
		TileDBConfigURI:   cCtx.String("tiledb-config-uri"),
		Config:            cfg,
		StateMachine:      stateMachine,
		StartDate:         startDate,
		EndDate:           endDate,
	})
	if err != nil {
		return err
	}
	log.Println("Emitted events:", len(result.Events), "visits:", len(result.Visits), "carry-over states:", len(result.States))

	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the per-vessel port-visit state machine over a batch window.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start-date", Required: true, Usage: "Batch window start, YYYY-MM-DD."},
					&cli.StringFlag{Name: "end-date", Required: true, Usage: "Batch window end, YYYY-MM-DD."},
					&cli.StringFlag{Name: "input-table", Usage: "URI or pathname to a directory of NDJSON AIS message shards."},
					&cli.StringFlag{Name: "anchorage-table", Usage: "URI or pathname to the anchorages table directory."},
					&cli.StringFlag{Name: "output-table", Usage: "URI or pathname to the port events/visits output table directory."},
					&cli.StringFlag{Name: "state-table", Usage: "URI or pathname to the visit-state carry-over table directory."},
					&cli.StringFlag{Name: "config", Usage: "URI or pathname to a JSON pipeline config file."},
					&cli.StringFlag{Name: "tiledb-config-uri", Usage: "URI or pathname to a TileDB config file."},
				},
				Action: run,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
