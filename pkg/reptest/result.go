package reptest

import (
	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
	"PerfHarness/pkg/utils"
)

// Result is the summary of one finished, errored or cancelled benchmark.
type Result struct {
	Name      string
	Status    Status
	Err       string
	Trials    uint64
	Bytes     uint64
	Frequency uint64
	Metrics   []string
	Min       collecting.Vector
	Max       collecting.Vector
	Avg       []float64
}

// Result snapshots the current aggregate.
func (t *Tester) Result() Result {
	run := t.Run()
	return Result{
		Name:      run.Name,
		Status:    t.status,
		Err:       t.errMsg,
		Trials:    run.Trials,
		Bytes:     run.Bytes,
		Frequency: t.freq,
		Metrics:   t.metrics.Names(),
		Min:       run.Min,
		Max:       run.Max,
		Avg:       run.Avg,
	}
}

// OK reports whether the benchmark finished with at least one trial.
func (r Result) OK() bool {
	return r.Status == Finished && r.Trials > 0
}

// Seconds converts a tick count at the result's frequency.
func (r Result) Seconds(ticks float64) float64 {
	return clock.Seconds(ticks, r.Frequency)
}

// Throughput returns MiB/s for a trial of the given tick count.
func (r Result) Throughput(ticks float64) float64 {
	return utils.Throughput(r.Bytes, r.Seconds(ticks))
}

// Record flattens the result into an export record. Metric columns are
// named min_<metric>, max_<metric> and avg_<metric>.
func (r Result) Record() map[string]any {
	rec := map[string]any{
		"name":      r.Name,
		"status":    r.Status.String(),
		"error":     r.Err,
		"trials":    r.Trials,
		"bytes":     r.Bytes,
		"frequency": r.Frequency,
	}
	if r.Trials == 0 {
		return rec
	}

	best, worst, avg := float64(r.Min[0]), float64(r.Max[0]), r.Avg[0]
	rec["best_ms"] = r.Seconds(best) * 1000
	rec["worst_ms"] = r.Seconds(worst) * 1000
	rec["avg_ms"] = r.Seconds(avg) * 1000
	if r.Bytes > 0 {
		rec["best_mibs"] = r.Throughput(best)
		rec["worst_mibs"] = r.Throughput(worst)
		rec["avg_mibs"] = r.Throughput(avg)
	}
	for i, name := range r.Metrics {
		rec["min_"+name] = r.Min[i]
		rec["max_"+name] = r.Max[i]
		rec["avg_"+name] = r.Avg[i]
	}
	return rec
}
