// Package profiling implements a hierarchical scoped profiler. Each label
// owns an anchor accumulating inclusive time (with children), exclusive time
// (without children), an occurrence count and a byte volume.
package profiling

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"PerfHarness/pkg/clock"
)

// MaxLabels is the size of the anchor table.
const MaxLabels = 4096

// Label indexes the anchor table. Root is the implicit parent of top-level
// scopes and never appears in a report.
type Label uint32

const Root Label = 0

// Anchor is the aggregate of every occurrence of one label. Arithmetic wraps.
type Anchor struct {
	Inclusive uint64
	Exclusive uint64
	Count     uint64
	Bytes     uint64
}

// active guards the one-session-per-process rule.
var active atomic.Bool

// Option configures a Profiler.
type Option func(*Profiler)

// WithCalibration sets the busy-wait window used at Finish to estimate the
// tick rate.
func WithCalibration(window time.Duration) Option {
	return func(p *Profiler) {
		if window > 0 {
			p.calibration = window
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Profiler is one profiling session. It is not safe for concurrent use.
type Profiler struct {
	src         clock.Source
	calibration time.Duration
	logger      *slog.Logger

	anchors  [MaxLabels]Anchor
	current  Label
	start    uint64
	finished bool
}

// Start begins the process-wide session. It panics if one is already active.
func Start(src clock.Source, opts ...Option) *Profiler {
	if src == nil {
		panic("profiling: nil clock source")
	}
	if !active.CompareAndSwap(false, true) {
		panic("profiling: a profiling session is already active")
	}

	p := &Profiler{
		src:         src,
		calibration: clock.DefaultCalibration,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger.Debug("profiling session started", "enabled", Enabled)
	p.start = src.Now()
	return p
}

// Enter opens a scope for label and attributes bytes to it. The returned
// scope must be closed in LIFO order with respect to other scopes.
func (p *Profiler) Enter(label Label, bytes uint64) Scope {
	p.mustBeActive()
	if label == Root || label >= MaxLabels {
		panic(fmt.Sprintf("profiling: label %d out of range [1, %d)", label, MaxLabels))
	}
	if !Enabled {
		return Scope{}
	}

	a := &p.anchors[label]
	a.Bytes += bytes
	s := Scope{
		p:         p,
		label:     label,
		parent:    p.current,
		inclusive: a.Inclusive,
	}
	p.current = label
	s.start = p.src.Now()
	return s
}

// Time runs fn inside a scope for label. The scope is closed even when fn
// panics.
func (p *Profiler) Time(label Label, bytes uint64, fn func()) {
	s := p.Enter(label, bytes)
	defer s.Close()
	fn()
}

// Anchor returns the current aggregate of label.
func (p *Profiler) Anchor(label Label) Anchor {
	if label >= MaxLabels {
		return Anchor{}
	}
	return p.anchors[label]
}

// Current returns the label of the innermost open scope.
func (p *Profiler) Current() Label { return p.current }

// Finish closes the session and builds the report. names is indexed by
// label. It panics if the session was already finished.
func (p *Profiler) Finish(names []string) Report {
	p.mustBeActive()
	end := p.src.Now()
	freq := clock.Frequency(p.src, p.calibration)
	p.release()

	r := newReport(end-p.start, freq, &p.anchors, names)
	p.logger.Debug("profiling session finished", "total_ticks", r.TotalTicks, "frequency", freq, "labels", len(r.Entries))
	return r
}

// Run profiles fn in a fresh session and returns its report. The session is
// released even when fn panics.
func Run(src clock.Source, names []string, fn func(p *Profiler), opts ...Option) Report {
	p := Start(src, opts...)
	defer func() {
		if !p.finished {
			p.release()
		}
	}()
	fn(p)
	return p.Finish(names)
}

func (p *Profiler) mustBeActive() {
	if p.finished {
		panic("profiling: use of a finished profiler")
	}
}

func (p *Profiler) release() {
	p.finished = true
	active.Store(false)
}
