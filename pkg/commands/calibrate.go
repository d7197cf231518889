package commands

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/probing"
)

// NewCalibrateCmd creates the calibrate subcommand.
func NewCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Estimate the tick frequency of a clock source",
		Long: `Busy-wait for the calibration window against the OS clock and print
the number of ticks per second.

Example:
  perfh calibrate --clock tsc --calibration 500ms`,
		Args: cobra.NoArgs,
		RunE: runCalibrate,
	}

	Cfg.AddMeasurementFlags(cmd)

	return cmd
}

func runCalibrate(cmd *cobra.Command, _ []string) error {
	src, err := openClock()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	info, infoErr := probing.ReadCPUInfo()
	if infoErr == nil && info.Model != "" {
		fmt.Fprintf(out, "cpu: %s\n", info.Model)
	}

	freq := clock.Frequency(src, Cfg.Calibration)
	fmt.Fprintf(out, "clock %s: ~%sHz (%s ticks/s over %v)\n",
		Cfg.Clock, humanize.SIWithDigits(float64(freq), 2, ""), humanize.Comma(int64(freq)), Cfg.Calibration)

	if _, ok := src.(*clock.TSC); ok && infoErr == nil && !info.InvariantTSC() {
		slog.Warn("tsc is not invariant; tick rate may follow CPU frequency changes")
	}
	return nil
}
