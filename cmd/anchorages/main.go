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

	var fishingVessels []int64
	if path := cCtx.String("fishing-vessel-list"); path != "" {
		fishingVessels, err = anchorage.LoadFishingVesselList(path)
		if err != nil {
			return err
		}
	}

	var gazetteer []anchorage.Port
	if path := cCtx.String("gazetteer"); path != "" {
		gazetteer, err = anchorage.LoadGazetteer(path)
		if err != nil {
			return err
		}
	}

	input := cCtx.String("input-table")
	output := cCtx.String("output-table")
	if input == "" {
		return anchorage.ErrMissingInputTable
	}
	if output == "" {
		return anchorage.ErrMissingOutputTable
	}

	log.Println("Processing anchorages:", input, "->", output)
	points, err := anchorage.RunAnchoragesPipeline(anchorage.AnchoragesPipelineInput{
		InputTableURI:   input,
		OutputTableURI:  output,
		TileDBConfigURI: cCtx.String("tiledb-config-uri"),
		FishingVessels:  fishingVessels,
		Gazetteer:       gazetteer,
		Config:          cfg,
		StartDate:       startDate,
		EndDate:         endDate,
	})
	if err != nil {
		return err
	}
	log.Println("Emitted anchorage points:", len(points))

	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Derive anchorage points from a window of AIS position messages.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start-date", Required: true, Usage: "Batch window start, YYYY-MM-DD."},
					&cli.StringFlag{Name: "end-date", Required: true, Usage: "Batch window end, YYYY-MM-DD."},
					&cli.StringFlag{Name: "input-table", Usage: "URI or pathname to a directory of NDJSON AIS message shards."},
					&cli.StringFlag{Name: "output-table", Usage: "URI or pathname to the anchorages output table directory."},
					&cli.StringFlag{Name: "config", Usage: "URI or pathname to a JSON pipeline config file."},
					&cli.StringFlag{Name: "fishing-vessel-list", Usage: "URI or pathname to a newline-separated fishing-vessel id list."},
					&cli.StringFlag{Name: "gazetteer", Usage: "URI or pathname to the named-port gazetteer CSV."},
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
