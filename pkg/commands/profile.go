package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"PerfHarness/pkg/graphing"
	"PerfHarness/pkg/metrics"
	"PerfHarness/pkg/profiling"
)

// Labels of the profiled pipeline.
const (
	labelRead profiling.Label = iota + 1
	labelProcess
	labelSplit
	labelTally
	labelRank
)

var pipelineNames = []string{
	labelRead:    "read",
	labelProcess: "process",
	labelSplit:   "split",
	labelTally:   "tally",
	labelRank:    "rank",
}

var profileTop int

// WordCount is one row of the pipeline's output.
type WordCount struct {
	Word  string
	Count int
}

// NewProfileCmd creates the profile subcommand.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile <input-file>",
		Aliases: []string{"p"},
		Short:   "Profile a scoped word-count pipeline over an input file",
		Long: `Read a file, split it into words, tally them and rank the most common
ones, timing every stage with the scoped profiler.

Example:
  perfh profile corpus.txt
  perfh profile corpus.txt --top 20 -f parquet -g`,
		Args: cobra.ExactArgs(1),
		RunE: runProfile,
	}

	Cfg.AddAllFlags(cmd)
	cmd.Flags().IntVar(&profileTop, "top", 10, "Number of most common words to print")

	return cmd
}

func runProfile(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("input file not found: %s", args[0])
	}
	src, err := openClock()
	if err != nil {
		return err
	}

	var (
		top     []WordCount
		readErr error
	)
	report := profiling.Run(src, pipelineNames, func(p *profiling.Profiler) {
		top, readErr = wordPipeline(p, args[0], profileTop)
	}, profiling.WithCalibration(Cfg.Calibration), profiling.WithLogger(slog.Default()))
	if readErr != nil {
		return readErr
	}

	out := cmd.OutOrStdout()
	for i, wc := range top {
		fmt.Fprintf(out, "%3d. %-20s %d\n", i+1, wc.Word, wc.Count)
	}
	fmt.Fprintln(out)
	if _, err := report.WriteTo(out); err != nil {
		return err
	}

	path, err := export(graphing.KindProfile, report.Records())
	if err != nil {
		return err
	}
	slog.Info("report written", "path", path)

	m := metrics.New(metrics.DefaultNamespace)
	m.ObserveReport(report)
	return writeProm(m)
}

// wordPipeline returns the top n words of the file at path.
func wordPipeline(p *profiling.Profiler, path string, n int) ([]WordCount, error) {
	var (
		data []byte
		err  error
	)
	p.Time(labelRead, 0, func() {
		data, err = os.ReadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	counts := make(map[string]int)
	process := p.Enter(labelProcess, uint64(len(data)))
	var words [][]byte
	p.Time(labelSplit, uint64(len(data)), func() {
		words = bytes.Fields(data)
	})
	p.Time(labelTally, 0, func() {
		for _, w := range words {
			counts[string(bytes.ToLower(w))]++
		}
	})
	process.Close()

	var ranked []WordCount
	p.Time(labelRank, 0, func() {
		ranked = make([]WordCount, 0, len(counts))
		for w, c := range counts {
			ranked = append(ranked, WordCount{Word: w, Count: c})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return ranked[i].Word < ranked[j].Word
		})
		if n >= 0 && n < len(ranked) {
			ranked = ranked[:n]
		}
	})
	return ranked, nil
}
