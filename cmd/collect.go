package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/collect"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/pkg/annuaire"
	"github.com/leadscope/prospect-cli/pkg/ban"
	"github.com/leadscope/prospect-cli/pkg/overpass"
)

var collectFlags struct {
	lat          float64
	lng          float64
	radiusM      float64
	directoryIn  string
	outDirectory string
	outPOIs      string
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch and geocode both source collections into JSON files",
	Long:  "Geocodes a directory listing file through the national address base and pulls map POIs plus registry establishments around the zone center. The resulting files feed the fuse command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		center := model.Coordinates{Lat: collectFlags.lat, Lng: collectFlags.lng}

		geocoder := ban.NewClient(
			ban.WithBaseURL(cfg.BAN.BaseURL),
			ban.WithRateLimit(cfg.BAN.RateLimit),
		)
		osm := overpass.NewClient(overpass.WithBaseURL(cfg.Overpass.BaseURL))
		registry := annuaire.NewClient(
			annuaire.WithBaseURL(cfg.Annuaire.BaseURL),
			annuaire.WithRateLimit(cfg.Annuaire.RateLimit),
		)

		collector := collect.Collector{
			Directory: collect.LiveDirectory(collectFlags.directoryIn, geocoder, center),
			POI:       collect.LivePOI(osm, registry, center, collectFlags.radiusM),
		}

		result, err := collector.Collect(ctx)
		if err != nil {
			return err
		}

		if err := collect.WriteDirectory(collectFlags.outDirectory, result.Directory); err != nil {
			return err
		}
		if err := collect.WritePOIs(collectFlags.outPOIs, result.POIs); err != nil {
			return err
		}

		zap.L().Info("collect complete",
			zap.Int("directory", len(result.Directory)),
			zap.Int("pois", len(result.POIs)),
			zap.String("directory_file", collectFlags.outDirectory),
			zap.String("pois_file", collectFlags.outPOIs),
		)
		return nil
	},
}

func init() {
	collectCmd.Flags().Float64Var(&collectFlags.lat, "lat", 0, "search zone center latitude (required)")
	collectCmd.Flags().Float64Var(&collectFlags.lng, "lng", 0, "search zone center longitude (required)")
	collectCmd.Flags().Float64Var(&collectFlags.radiusM, "radius", 1000, "search zone radius in meters")
	collectCmd.Flags().StringVar(&collectFlags.directoryIn, "directory-in", "", "raw directory listing JSON to geocode (required)")
	collectCmd.Flags().StringVar(&collectFlags.outDirectory, "out-directory", "directory.json", "geocoded directory output file")
	collectCmd.Flags().StringVar(&collectFlags.outPOIs, "out-pois", "pois.json", "POI collection output file")
	_ = collectCmd.MarkFlagRequired("lat")
	_ = collectCmd.MarkFlagRequired("lng")
	_ = collectCmd.MarkFlagRequired("directory-in")
	rootCmd.AddCommand(collectCmd)
}
