package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"PerfHarness/pkg/graphing"
	"PerfHarness/pkg/metrics"
	"PerfHarness/pkg/reptest"
	"PerfHarness/pkg/workloads"
)

var (
	reptestInput  string
	reptestSize   string
	reptestFilter []string
	reptestRounds int
)

// NewRepTestCmd creates the reptest subcommand.
func NewRepTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reptest",
		Aliases: []string{"rt"},
		Short:   "Repeat built-in workloads until their best time stabilises",
		Long: `Run each built-in workload through the repetition tester. A workload
stops once no faster trial has been seen for --timeout.

Memory workloads always run. File workloads run when --input is given.

Example:
  perfh reptest --size 256MiB
  perfh reptest -i data.bin --only read -f csv -g`,
		Args: cobra.NoArgs,
		RunE: runRepTest,
	}

	Cfg.AddAllFlags(cmd)
	cmd.Flags().StringVarP(&reptestInput, "input", "i", "", "Input file for the read workloads")
	cmd.Flags().StringVar(&reptestSize, "size", "64MiB", "Bytes written by the memory workloads")
	cmd.Flags().StringSliceVar(&reptestFilter, "only", nil, "Run only workloads whose name contains one of these")
	cmd.Flags().IntVar(&reptestRounds, "rounds", 1, "Run the whole suite this many times (0 = until interrupted)")

	return cmd
}

func runRepTest(cmd *cobra.Command, _ []string) error {
	size, err := humanize.ParseBytes(reptestSize)
	if err != nil || size == 0 {
		return fmt.Errorf("invalid --size %q", reptestSize)
	}
	blocks, err := workloads.Suite(reptestInput, int(size))
	if err != nil {
		return err
	}
	blocks = filterBlocks(blocks, reptestFilter)
	if len(blocks) == 0 {
		return fmt.Errorf("no workload matches %v", reptestFilter)
	}

	src, err := openClock()
	if err != nil {
		return err
	}
	tester, err := newTester(src, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer tester.Metrics().Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp, err := openExporter(graphing.KindRepTest)
	if err != nil {
		return err
	}
	m := metrics.New(metrics.DefaultNamespace)
	stats, writeErr := runSuite(ctx, tester, blocks, reptestRounds, func(r reptest.Result) error {
		m.ObserveResult(r)
		return exp.Write(r.Record())
	}, exp.Flush)

	path, err := finishExport(exp)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write results: %w", writeErr)
	}
	slog.Info("results written", "path", path, "benchmarks", stats.Total, "failed", stats.Failed)

	if err := writeProm(m); err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d benchmarks failed", stats.Failed, stats.Total)
	}
	return nil
}

// suiteStats counts the benchmarks of a suite run.
type suiteStats struct {
	Total  int
	Failed int
	Rounds int
}

// runSuite repeats blocks for rounds passes, forever when rounds is 0, until
// ctx is done. Each result is handed to observe as soon as it is known and
// endRound runs after every complete pass, so nothing accumulates across
// rounds. It stops at the first error from observe or endRound.
func runSuite(ctx context.Context, tester *reptest.Tester, blocks []reptest.Block, rounds int,
	observe func(reptest.Result) error, endRound func() error) (suiteStats, error) {
	var stats suiteStats
	for round := 0; rounds == 0 || round < rounds; round++ {
		for _, b := range blocks {
			if ctx.Err() != nil {
				return stats, nil
			}
			b.Timeout = Cfg.Timeout
			r := tester.Repeat(ctx, b)
			stats.Total++
			if !r.OK() {
				stats.Failed++
			}
			if err := observe(r); err != nil {
				return stats, err
			}
		}
		stats.Rounds++
		if endRound != nil {
			if err := endRound(); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func filterBlocks(blocks []reptest.Block, only []string) []reptest.Block {
	if len(only) == 0 {
		return blocks
	}
	var out []reptest.Block
	for _, b := range blocks {
		name := strings.ToLower(b.Name)
		for _, o := range only {
			if strings.Contains(name, strings.ToLower(o)) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}
