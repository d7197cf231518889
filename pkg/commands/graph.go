package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"PerfHarness/pkg/graphing"
)

var graphOutput string

// NewGraphCmd creates the graph subcommand.
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Aliases: []string{"g"},
		Use:     "graph <input-file>",
		Short:   "Generate HTML charts from exported results",
		Long: `Generate a single HTML page of charts from an exported results file.

Supported input formats: jsonl, csv, tsv, parquet, yaml

Example:
  perfh graph reptest-20240101-120000.parquet
  perfh graph results.jsonl -o ./graphs`,
		Args: cobra.ExactArgs(1),
		RunE: runGraph,
	}

	cmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output directory (defaults to the input's directory)")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	gen, err := graphing.NewGenerator(inputPath, graphOutput)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	out, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate graphs: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated graphs in: %s\n", out)
	return nil
}
