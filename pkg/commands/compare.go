package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/utils"
)

// KindCompare tags exported comparison records.
const KindCompare = "compare"

var (
	compareKey     string
	compareColumns []string
	compareSave    bool
)

// NewCompareCmd creates the compare subcommand.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <baseline> <current>",
		Short: "Diff two exported result files",
		Long: `Pair the records of two result files by --key and print the change of
each selected column. Ratios below 1 mean the current run is smaller.

Example:
  perfh compare before.jsonl after.jsonl
  perfh compare before.csv after.csv --columns best_ms,best_mibs --save`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	Cfg.AddOutputFlags(cmd)
	Cfg.AddSystemFlags(cmd)
	cmd.Flags().StringVar(&compareKey, "key", "name", "Column pairing baseline and current records")
	cmd.Flags().StringSliceVar(&compareColumns, "columns", []string{"best_ms", "avg_ms"}, "Columns to show")
	cmd.Flags().BoolVar(&compareSave, "save", false, "Export the diffed records")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	baseline, err := exporting.LoadRecords(args[0])
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := exporting.LoadRecords(args[1])
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	diffed := exporting.DeltaRecords(baseline, current, compareKey)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, compareTable(diffed, compareKey, compareColumns))
	if missing := exporting.Unmatched(baseline, current, compareKey); len(missing) > 0 {
		fmt.Fprintf(out, "missing from current: %s\n", strings.Join(missing, ", "))
	}

	if !compareSave {
		return nil
	}
	path, err := export(KindCompare, diffed)
	if err != nil {
		return err
	}
	slog.Info("comparison written", "path", path)
	return nil
}

// compareTable renders one row per record with the current value, delta
// and ratio of each column.
func compareTable(records []exporting.Record, key string, columns []string) string {
	headers := []string{key}
	for _, c := range columns {
		headers = append(headers, c, "delta", "ratio")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, r := range records {
		row := []string{utils.ToString(r[key])}
		for _, c := range columns {
			row = append(row,
				cell(r[c]),
				cell(r[c+"_delta"]),
				cell(r[c+"_ratio"]),
			)
		}
		t.Row(row...)
	}
	return t.String()
}

func cell(v any) string {
	if v == nil {
		return "-"
	}
	if f, ok := utils.ToFloat64Ok(v); ok {
		return utils.Group(f, 3)
	}
	return utils.ToString(v)
}
