package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/store"
)

var runsFlags struct {
	status string
	limit  int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored fusion runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter := store.RunFilter{
			Status: model.RunStatus(runsFlags.status),
			Limit:  runsFlags.limit,
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tRADIUS_M\tMIN_SCORE\tFUSED\tACCEPTED\tREJECTED\tCREATED")
	for _, run := range runs {
		fused, accepted, rejected := "-", "-", "-"
		if run.Result != nil {
			fused = fmt.Sprintf("%d", run.Result.Fused)
			accepted = fmt.Sprintf("%d", run.Result.Accepted)
			rejected = fmt.Sprintf("%d", run.Result.OutOfZone+run.Result.LowQuality)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%d\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Status,
			run.Params.RadiusM,
			run.Params.MinQualityScore,
			fused,
			accepted,
			rejected,
			run.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = tw.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.status, "status", "", "filter by run status")
	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
