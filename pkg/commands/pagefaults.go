package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/graphing"
	"PerfHarness/pkg/probing"
	"PerfHarness/pkg/utils"
	"PerfHarness/pkg/workloads"
)

var (
	faultPages int
	faultOrder string
)

// NewPageFaultsCmd creates the pagefaults subcommand.
func NewPageFaultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pagefaults",
		Aliases: []string{"pf"},
		Short:   "Touch fresh pages and record page faults per page",
		Long: `Map a fresh region and write one byte per page, recording the cumulative
page-fault count after each write. Forward and backward orders show how the
kernel maps pages ahead of the touched one.

Example:
  perfh pagefaults --pages 4096 --order both -g`,
		Args: cobra.NoArgs,
		RunE: runPageFaults,
	}

	Cfg.AddOutputFlags(cmd)
	Cfg.AddGraphFlags(cmd)
	Cfg.AddSystemFlags(cmd)
	cmd.Flags().IntVarP(&faultPages, "pages", "n", 1024, "Number of pages to touch")
	cmd.Flags().StringVar(&faultOrder, "order", "both", "Touch order (forward, backward, both)")

	return cmd
}

func runPageFaults(cmd *cobra.Command, _ []string) error {
	var orders []string
	switch faultOrder {
	case "both":
		orders = []string{workloads.Forward, workloads.Backward}
	case workloads.Forward, workloads.Backward:
		orders = []string{faultOrder}
	default:
		return fmt.Errorf("invalid --order %q (valid: forward, backward, both)", faultOrder)
	}

	out := cmd.OutOrStdout()
	var records []exporting.Record
	for _, order := range orders {
		before, statOK := statFaults()
		samples, err := workloads.TouchPages(faultPages, order)
		if err != nil {
			return err
		}
		after, afterOK := statFaults()

		last := samples[len(samples)-1]
		fmt.Fprintf(out, "%-8s %s pages, %s faults (%.2f per page)",
			order, utils.GroupUint(uint64(faultPages)), utils.GroupUint(last.Faults),
			float64(last.Faults)/float64(faultPages))
		if statOK && afterOK {
			fmt.Fprintf(out, "; procfs %s", utils.GroupUint(after-before))
		}
		fmt.Fprintln(out)
		records = append(records, workloads.FaultRecords(samples, order)...)
	}

	path, err := export(graphing.KindPageFaults, records)
	if err != nil {
		return err
	}
	slog.Info("page faults written", "path", path, "records", len(records))
	return nil
}

// statFaults reads the process fault count from /proc/self/stat, which
// cross-checks the getrusage counter used while touching.
func statFaults() (uint64, bool) {
	s, err := probing.ReadSelfStat()
	if err != nil {
		slog.Debug("procfs fault count unavailable", "error", err)
		return 0, false
	}
	return s.Faults(), true
}
