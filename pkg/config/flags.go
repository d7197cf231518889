package config

import (
	"strings"

	"PerfHarness/pkg/clock"

	"github.com/spf13/cobra"
)

// AddMeasurementFlags adds clock and tester flags to a command.
func (c *Config) AddMeasurementFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.Clock, "clock", c.Clock, "Tick source ("+strings.Join(clock.Names(), ", ")+")")
	flags.DurationVar(&c.Calibration, "calibration", c.Calibration, "Frequency calibration window")
	flags.DurationVarP(&c.Timeout, "timeout", "t", c.Timeout, "Stop after this long without a new minimum")
	flags.IntVar(&c.PrintEvery, "print-every", c.PrintEvery, "Print progress every N trials")
	flags.BoolVar(&c.PinCPU, "pin", c.PinCPU, "Pin the process to the current CPU")
	flags.BoolVar(&c.PageFaults, "page-faults", c.PageFaults, "Collect page faults per trial")
	flags.BoolVar(&c.ContextSwitches, "context-switches", c.ContextSwitches, "Collect context switches per trial")
	flags.BoolVar(&c.ReadBytes, "read-bytes", c.ReadBytes, "Collect bytes read through syscalls per trial")
	flags.BoolVar(&c.Resident, "rss", c.Resident, "Collect resident set growth per trial")
	flags.BoolVar(&c.CPUTime, "cpu-time", c.CPUTime, "Collect thread CPU jiffies per trial")
}

// AddOutputFlags adds common output flags to a command.
func (c *Config) AddOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&c.OutputDir, "output-dir", "o", c.OutputDir, "Output directory")
	flags.StringVarP(&c.OutputFormat, "format", "f", c.OutputFormat, "Output format (jsonl, csv, tsv, parquet, yaml)")
	flags.StringVar(&c.OutputName, "output", c.OutputName, "Output filename (auto-generated if empty)")
	flags.StringVar(&c.PromTextfile, "prom", c.PromTextfile, "Write Prometheus textfile metrics to this path")
}

// AddGraphFlags adds graph generation flags to a command.
func (c *Config) AddGraphFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&c.GenerateGraphs, "graphs", "g", c.GenerateGraphs, "Generate HTML charts after the run")
	flags.StringVar(&c.GraphOutput, "graph-output", c.GraphOutput, "Chart output directory (defaults to output dir)")
}

// AddSystemFlags adds session identification flags to a command.
func (c *Config) AddSystemFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.SessionID, "session", c.SessionID, "Session id stamped on exported records")
	flags.StringVar(&c.Hostname, "hostname", c.Hostname, "Hostname override")
}

// AddAllFlags adds all common flags to a command.
func (c *Config) AddAllFlags(cmd *cobra.Command) {
	c.AddMeasurementFlags(cmd)
	c.AddOutputFlags(cmd)
	c.AddGraphFlags(cmd)
	c.AddSystemFlags(cmd)
}
