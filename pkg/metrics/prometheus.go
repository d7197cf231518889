// Package metrics exposes benchmark results and profiler reports as
// Prometheus gauges, written to a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"PerfHarness/pkg/collecting"
	"PerfHarness/pkg/profiling"
	"PerfHarness/pkg/reptest"
)

const DefaultNamespace = "perfh"

// Metrics holds the gauges of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	BenchmarkSeconds    *prometheus.GaugeVec
	BenchmarkThroughput *prometheus.GaugeVec
	BenchmarkPageFaults *prometheus.GaugeVec
	BenchmarkTrials     *prometheus.GaugeVec
	BenchmarkSuccess    *prometheus.GaugeVec

	ProfileExclusive *prometheus.GaugeVec
	ProfileInclusive *prometheus.GaugeVec
	ProfileHits      *prometheus.GaugeVec
	ProfileTotal     prometheus.Gauge
}

// New creates and registers all gauges under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.BenchmarkSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_seconds",
			Help:      "Trial duration of a repetition test by statistic (best, avg, worst)",
		},
		[]string{"benchmark", "stat"},
	)
	m.BenchmarkThroughput = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_throughput_mib_per_second",
			Help:      "Throughput of a repetition test by statistic",
		},
		[]string{"benchmark", "stat"},
	)
	m.BenchmarkPageFaults = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_page_faults",
			Help:      "Page faults per trial by statistic",
		},
		[]string{"benchmark", "stat"},
	)
	m.BenchmarkTrials = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_trials",
			Help:      "Number of trials run before the test stopped",
		},
		[]string{"benchmark"},
	)
	m.BenchmarkSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_success",
			Help:      "1 if the repetition test finished, 0 if it errored",
		},
		[]string{"benchmark"},
	)

	m.ProfileExclusive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_exclusive_seconds",
			Help:      "Time spent in a profiled label excluding children",
		},
		[]string{"label"},
	)
	m.ProfileInclusive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_inclusive_seconds",
			Help:      "Time spent in a profiled label including children",
		},
		[]string{"label"},
	)
	m.ProfileHits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_hits",
			Help:      "Number of times a profiled label was entered",
		},
		[]string{"label"},
	)
	m.ProfileTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_total_seconds",
			Help:      "Duration of the profiling session",
		},
	)

	m.registry.MustRegister(
		m.BenchmarkSeconds,
		m.BenchmarkThroughput,
		m.BenchmarkPageFaults,
		m.BenchmarkTrials,
		m.BenchmarkSuccess,
		m.ProfileExclusive,
		m.ProfileInclusive,
		m.ProfileHits,
		m.ProfileTotal,
	)
	return m
}

// Registry returns the registry holding every gauge.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveResult records a repetition test result.
func (m *Metrics) ObserveResult(r reptest.Result) {
	success := 0.0
	if r.OK() {
		success = 1
	}
	m.BenchmarkSuccess.WithLabelValues(r.Name).Set(success)
	m.BenchmarkTrials.WithLabelValues(r.Name).Set(float64(r.Trials))
	if r.Trials == 0 {
		return
	}

	stats := []struct {
		name  string
		ticks float64
		at    func(i int) float64
	}{
		{"best", float64(r.Min[0]), func(i int) float64 { return float64(r.Min[i]) }},
		{"avg", r.Avg[0], func(i int) float64 { return r.Avg[i] }},
		{"worst", float64(r.Max[0]), func(i int) float64 { return float64(r.Max[i]) }},
	}

	pf := -1
	for i, name := range r.Metrics {
		if name == collecting.MetricPageFaults {
			pf = i
		}
	}

	for _, s := range stats {
		m.BenchmarkSeconds.WithLabelValues(r.Name, s.name).Set(r.Seconds(s.ticks))
		if r.Bytes > 0 {
			m.BenchmarkThroughput.WithLabelValues(r.Name, s.name).Set(r.Throughput(s.ticks))
		}
		if pf >= 0 {
			m.BenchmarkPageFaults.WithLabelValues(r.Name, s.name).Set(s.at(pf))
		}
	}
}

// ObserveReport records a profiler report.
func (m *Metrics) ObserveReport(r profiling.Report) {
	m.ProfileTotal.Set(r.TotalMillis / 1000)
	if r.Frequency == 0 {
		return
	}
	freq := float64(r.Frequency)
	for _, e := range r.Entries {
		m.ProfileExclusive.WithLabelValues(e.Name).Set(float64(e.Exclusive) / freq)
		m.ProfileInclusive.WithLabelValues(e.Name).Set(float64(e.Inclusive) / freq)
		m.ProfileHits.WithLabelValues(e.Name).Set(float64(e.Count))
	}
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create textfile directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write textfile %s: %w", path, err)
	}
	return nil
}
