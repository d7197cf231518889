package commands

import (
	"fmt"
	"io"
	"log/slog"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/graphing"
	"PerfHarness/pkg/metrics"
	"PerfHarness/pkg/probing"
	"PerfHarness/pkg/reptest"
)

// openClock validates the config and opens the configured tick source,
// pinning the process first when requested.
func openClock() (clock.Source, error) {
	if err := Cfg.Validate(); err != nil {
		return nil, err
	}
	if Cfg.PinCPU {
		cpu, err := probing.PinToCurrentCPU()
		if err != nil {
			slog.Warn("failed to pin to current CPU", "error", err)
		} else {
			slog.Debug("pinned to CPU", "cpu", cpu)
		}
	}
	src, err := clock.Open(Cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("failed to open clock: %w", err)
	}
	return src, nil
}

// metricSet builds the collector set selected by the config.
func metricSet(src clock.Source) *collecting.Set {
	var extra []collecting.Collector
	if Cfg.PageFaults {
		extra = append(extra, collecting.NewPageFaults())
	}
	if Cfg.ContextSwitches {
		extra = append(extra, collecting.NewContextSwitches())
	}
	if Cfg.ReadBytes {
		extra = append(extra, collecting.NewReadBytes())
	}
	if Cfg.Resident {
		extra = append(extra, collecting.NewResident())
	}
	if Cfg.CPUTime {
		extra = append(extra, collecting.NewCPUTime())
	}
	return collecting.NewSet(src, extra...)
}

func newTester(src clock.Source, out io.Writer) (*reptest.Tester, error) {
	return reptest.New(src,
		reptest.WithOutput(out),
		reptest.WithMetrics(metricSet(src)),
		reptest.WithPrintEvery(Cfg.PrintEvery),
		reptest.WithCalibration(Cfg.Calibration),
		reptest.WithLogger(slog.Default()),
	)
}

// export writes records to a new output file stamped with kind and returns
// its path. Graphs are rendered afterwards when enabled.
func export(kind string, records []exporting.Record) (string, error) {
	exp, err := openExporter(kind)
	if err != nil {
		return "", err
	}
	if err := exp.WriteBatch(records); err != nil {
		exp.Close()
		return "", fmt.Errorf("failed to write records: %w", err)
	}
	return finishExport(exp)
}

// openExporter creates the output file for kind.
func openExporter(kind string) (*exporting.Exporter, error) {
	exp, err := exporting.NewExporter(Cfg.OutputPath(kind), Cfg.OutputFormat, Cfg.ExporterOptions(kind)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}
	return exp, nil
}

// finishExport closes exp and renders graphs from it when enabled.
func finishExport(exp *exporting.Exporter) (string, error) {
	if err := exp.Close(); err != nil {
		return "", fmt.Errorf("failed to close exporter: %w", err)
	}

	if Cfg.GenerateGraphs {
		outDir := Cfg.GraphOutput
		if outDir == "" {
			outDir = Cfg.OutputDir
		}
		if _, err := graphing.RenderFile(exp.Path(), outDir); err != nil {
			slog.Warn("failed to generate graphs", "error", err)
		}
	}
	return exp.Path(), nil
}

// writeProm writes m to the configured textfile, if any.
func writeProm(m *metrics.Metrics) error {
	if Cfg.PromTextfile == "" {
		return nil
	}
	if err := m.WriteTextfile(Cfg.PromTextfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	slog.Info("metrics written", "path", Cfg.PromTextfile)
	return nil
}
