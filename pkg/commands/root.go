// Package commands provides CLI command implementations.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"PerfHarness/pkg/config"
)

// Cfg is the shared configuration instance. NewRootCmd replaces it so each
// command tree binds its own flags.
var Cfg = config.New()

var configFile string

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	Cfg = config.New()

	root := &cobra.Command{
		Use:   "perfh",
		Short: "Repetition tester and scoped profiler for single-core benchmarks",
		Long: `perfh measures code blocks with a high-resolution tick counter.

Commands:
  reptest     Repeat built-in workloads until their best time stabilises
  profile     Profile a scoped pipeline over an input file
  pagefaults  Touch fresh pages and record page faults per page
  calibrate   Estimate the tick frequency of a clock source
  graph       Generate HTML charts from exported results
  compare     Diff two exported result files
  serve       Repeat the workloads and expose results over HTTP`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file (keys are flag names)")
	flags.StringVar(&Cfg.LogLevel, "log-level", Cfg.LogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(
		NewRepTestCmd(),
		NewProfileCmd(),
		NewPageFaultsCmd(),
		NewCalibrateCmd(),
		NewGraphCmd(),
		NewCompareCmd(),
		NewServeCmd(),
	)

	return root
}

// setup overlays the config file and environment, then installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Load(viper.New(), cmd.Flags(), configFile); err != nil {
		return err
	}
	Cfg.ApplyDefaults()

	logger, err := Cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
