package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/collect"
	"github.com/leadscope/prospect-cli/internal/export"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/pipeline"
)

var fuseFlags struct {
	directoryFile string
	poisFile      string
	lat           float64
	lng           float64
	radiusM       float64
	minScore      int
	outCSV        string
	outXLSX       string
	outGeoJSON    string
	outRejections string
	noStore       bool
}

var fuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse two collected source files into scored prospects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		collector := collect.Collector{
			Directory: collect.FileDirectory(fuseFlags.directoryFile),
			POI:       collect.FilePOI(fuseFlags.poisFile),
		}
		collected, err := collector.Collect(ctx)
		if err != nil {
			return err
		}

		params := runParams()
		opts := []pipeline.Option{pipeline.WithSink(pipeline.LogSink{})}

		if !fuseFlags.noStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			opts = append(opts, pipeline.WithStore(st))
		}

		p, err := pipeline.New(params, opts...)
		if err != nil {
			return err
		}

		out, err := p.Run(ctx, collected.Directory, collected.POIs)
		if err != nil {
			return err
		}

		return writeOutputs(out)
	},
}

// runParams merges config defaults with the fuse command's flags.
func runParams() model.RunParams {
	return model.RunParams{
		Center:            model.Coordinates{Lat: fuseFlags.lat, Lng: fuseFlags.lng},
		RadiusM:           fuseFlags.radiusM,
		MinQualityScore:   fuseFlags.minScore,
		ProximityM:        cfg.Fusion.ProximityM,
		NameSimilarity:    cfg.Fusion.NameSimilarity,
		ZoneTolerance:     cfg.Fusion.ZoneTolerance,
		AllowGeoOnlyMatch: cfg.Fusion.AllowGeoOnlyMatch,
	}
}

func writeOutputs(out *pipeline.Output) error {
	if fuseFlags.outCSV != "" {
		f, err := os.Create(fuseFlags.outCSV)
		if err != nil {
			return eris.Wrap(err, "create csv file")
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteCSV(f, out.Accepted); err != nil {
			return err
		}
	}

	if fuseFlags.outXLSX != "" {
		if err := export.WriteXLSX(fuseFlags.outXLSX, out.Accepted, out.Rejected); err != nil {
			return err
		}
	}

	if fuseFlags.outGeoJSON != "" {
		f, err := os.Create(fuseFlags.outGeoJSON)
		if err != nil {
			return eris.Wrap(err, "create geojson file")
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteGeoJSON(f, out.Accepted); err != nil {
			return err
		}
	}

	if fuseFlags.outRejections != "" {
		f, err := os.Create(fuseFlags.outRejections)
		if err != nil {
			return eris.Wrap(err, "create rejections file")
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteRejectionsCSV(f, out.Rejected); err != nil {
			return err
		}
	}

	zap.L().Info("fuse complete",
		zap.String("run_id", out.Run.ID),
		zap.Int("accepted", len(out.Accepted)),
		zap.Int("rejected", len(out.Rejected)),
	)
	return nil
}

func init() {
	fuseCmd.Flags().StringVar(&fuseFlags.directoryFile, "directory", "", "directory source JSON file (required)")
	fuseCmd.Flags().StringVar(&fuseFlags.poisFile, "pois", "", "POI source JSON file (required)")
	fuseCmd.Flags().Float64Var(&fuseFlags.lat, "lat", 0, "search zone center latitude (required)")
	fuseCmd.Flags().Float64Var(&fuseFlags.lng, "lng", 0, "search zone center longitude (required)")
	fuseCmd.Flags().Float64Var(&fuseFlags.radiusM, "radius", 1000, "search zone radius in meters")
	fuseCmd.Flags().IntVar(&fuseFlags.minScore, "min-score", 3, "minimum quality score to keep a record")
	fuseCmd.Flags().StringVar(&fuseFlags.outCSV, "out-csv", "", "write accepted records as CSV")
	fuseCmd.Flags().StringVar(&fuseFlags.outXLSX, "out-xlsx", "", "write accepted records and rejections as an XLSX workbook")
	fuseCmd.Flags().StringVar(&fuseFlags.outGeoJSON, "out-geojson", "", "write accepted records as GeoJSON")
	fuseCmd.Flags().StringVar(&fuseFlags.outRejections, "out-rejections", "", "write the rejection side-channel as CSV")
	fuseCmd.Flags().BoolVar(&fuseFlags.noStore, "no-store", false, "skip run persistence")
	_ = fuseCmd.MarkFlagRequired("directory")
	_ = fuseCmd.MarkFlagRequired("pois")
	_ = fuseCmd.MarkFlagRequired("lat")
	_ = fuseCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(fuseCmd)
}
