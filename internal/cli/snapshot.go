package cli

import (
	"github.com/spf13/cobra"

	"portfolio-dashboard/internal/app"
)

var (
	snapshotDir       string
	snapshotPeriod    string
	snapshotBenchmark string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render all charts once and write them to a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SnapshotOptions{
			Dir:       snapshotDir,
			Period:    snapshotPeriod,
			Benchmark: snapshotBenchmark,
		}
		return getApp().Snapshot(cmd.Context(), opts)
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDir, "out", "snapshot", "Directory to write charts and CSV into")
	snapshotCmd.Flags().StringVar(&snapshotPeriod, "period", "", "Period selector (1D/1W/1M/3M/1Y/all, defaults to config)")
	snapshotCmd.Flags().StringVar(&snapshotBenchmark, "benchmark", "", "Benchmark symbol to overlay (defaults to config)")
}
