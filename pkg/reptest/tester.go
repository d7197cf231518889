// Package reptest runs a code block repeatedly until no faster trial has been
// seen for a configured timeout, and reports the best, worst and average
// trial across every collected metric.
package reptest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
)

var (
	// ErrNoClock is returned by New when no tick source is given.
	ErrNoClock = errors.New("reptest: nil clock source")
	// ErrFailed wraps the message of an errored tester.
	ErrFailed = errors.New("repetition test failed")
)

const (
	DefaultPrintEvery = 10
	DefaultTimeout    = 3 * time.Second
)

const (
	msgReinit      = "failed to re-init uncleared tester"
	msgDoubleStart = "double start of a trial"
	msgBadStart    = "invalid start of a trial"
	msgBadEnd      = "invalid end of a trial"
	msgTimeTravel  = "time travel is forbidden: trial ended before it started"
	msgCheck       = "didn't pass validity check"
	msgCancelled   = "cancelled"
)

// Run is the aggregate of one named benchmark in progress.
type Run struct {
	Name   string
	Bytes  uint64
	Trials uint64
	// Min and Max hold the full vector of the trial with the fewest and
	// most ticks.
	Min collecting.Vector
	Max collecting.Vector
	Avg []float64
}

func newRun(n int) Run {
	r := Run{
		Min: collecting.NewVector(n),
		Max: collecting.NewVector(n),
		Avg: make([]float64, n),
	}
	r.Min.Fill(math.MaxUint64)
	return r
}

// Option configures a Tester.
type Option func(*Tester)

// WithOutput sets where Print writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(t *Tester) {
		if w != nil {
			t.out = w
		}
	}
}

// WithMetrics replaces the default ticks plus page faults set.
func WithMetrics(s *collecting.Set) Option {
	return func(t *Tester) {
		if s != nil {
			t.metrics = s
		}
	}
}

// WithPrintEvery shows one in every n progress prints.
func WithPrintEvery(n int) Option {
	return func(t *Tester) {
		if n > 0 {
			t.printEvery = n
		}
	}
}

// WithCalibration sets the busy-wait window used to estimate the tick rate.
func WithCalibration(window time.Duration) Option {
	return func(t *Tester) {
		if window > 0 {
			t.calibration = window
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tester) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tester is the repetition-testing state machine. It is not safe for
// concurrent use.
type Tester struct {
	src         clock.Source
	metrics     *collecting.Set
	out         io.Writer
	logger      *slog.Logger
	printEvery  int
	calibration time.Duration

	freq     uint64
	status   Status
	errMsg   string
	run      Run
	open     bool
	timeout  uint64
	deadline uint64

	start collecting.Vector
	end   collecting.Vector
	delta collecting.Vector

	prints   int
	shown    bool
	terminal bool
	header   lipgloss.Style
}

// New creates a tester reading ticks from src.
func New(src clock.Source, opts ...Option) (*Tester, error) {
	if src == nil {
		return nil, ErrNoClock
	}

	t := &Tester{
		src:         src,
		out:         os.Stdout,
		logger:      slog.Default(),
		printEvery:  DefaultPrintEvery,
		calibration: clock.DefaultCalibration,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.metrics == nil {
		t.metrics = collecting.DefaultSet(src)
	}

	n := t.metrics.Len()
	t.start = collecting.NewVector(n)
	t.end = collecting.NewVector(n)
	t.delta = collecting.NewVector(n)
	t.run = newRun(n)
	t.terminal = isTerminal(t.out)
	t.header = lipgloss.NewRenderer(t.out).NewStyle().Bold(true)

	return t, nil
}

// Frequency returns the tick rate, calibrating on first use.
func (t *Tester) Frequency() uint64 {
	if t.freq == 0 {
		t.freq = clock.Frequency(t.src, t.calibration)
		t.logger.Debug("calibrated clock", "frequency", t.freq, "window", t.calibration)
	}
	return t.freq
}

// Init starts a named benchmark. It stops once timeoutSeconds pass without a
// new minimum. bytes is only used to derive throughput.
func (t *Tester) Init(name string, bytes uint64, timeoutSeconds float64) {
	if t.status != Uninit {
		t.Error(msgReinit)
		return
	}

	freq := t.Frequency()
	t.run = newRun(t.metrics.Len())
	t.run.Name = name
	t.run.Bytes = bytes
	t.open = false
	t.prints = 0
	t.shown = false
	t.timeout = uint64(timeoutSeconds * float64(freq))
	t.deadline = t.src.Now() + t.timeout
	t.status = Testing

	t.logger.Debug("repetition test started", "name", name, "bytes", bytes, "timeout_ticks", t.timeout)
}

// ShouldContinue reports whether another trial should run. The first call
// after the deadline moves the tester to Finished.
func (t *Tester) ShouldContinue() bool {
	if t.status != Testing {
		return false
	}
	if t.src.Now() < t.deadline {
		return true
	}
	t.status = Finished
	t.logger.Debug("repetition test finished", "name", t.run.Name, "trials", t.run.Trials)
	return false
}

// StartRun opens a trial.
func (t *Tester) StartRun() {
	if t.status != Testing {
		t.Error(msgBadStart)
		return
	}
	if t.open {
		t.Error(msgDoubleStart)
		return
	}
	t.open = true
	t.metrics.SnapshotStart(t.start)
}

// EndRun closes the open trial and folds it into the aggregate.
func (t *Tester) EndRun() {
	t.metrics.SnapshotEnd(t.end)

	if t.status != Testing || !t.open {
		t.Error(msgBadEnd)
		return
	}
	t.open = false

	if t.end[0] <= t.start[0] {
		t.Error(msgTimeTravel)
		return
	}
	t.delta.Delta(t.end, t.start)

	t.run.Trials++
	n := float64(t.run.Trials)
	for i, x := range t.delta {
		t.run.Avg[i] = (t.run.Avg[i]*(n-1) + float64(x)) / n
	}

	ticks := t.delta[0]
	if ticks > t.run.Max[0] {
		copy(t.run.Max, t.delta)
	}
	if ticks < t.run.Min[0] {
		copy(t.run.Min, t.delta)
		t.deadline = t.end[0] + t.timeout
	}
}

// Error moves the tester to Errored. Only the first message is kept.
func (t *Tester) Error(msg string) {
	if t.status == Errored {
		return
	}
	t.status = Errored
	t.errMsg = msg
	t.open = false
	t.logger.Debug("repetition test errored", "name", t.run.Name, "error", msg)
}

// Clear discards the aggregate and returns the tester to Uninit. The
// calibrated frequency is kept.
func (t *Tester) Clear() {
	t.status = Uninit
	t.errMsg = ""
	t.open = false
	t.run = newRun(t.metrics.Len())
	t.timeout = 0
	t.deadline = 0
	t.prints = 0
	t.shown = false
}

func (t *Tester) Status() Status { return t.status }

// Err returns the recorded failure, or nil unless the tester is Errored.
func (t *Tester) Err() error {
	if t.status != Errored {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, t.errMsg)
}

// Run returns a copy of the current aggregate.
func (t *Tester) Run() Run {
	r := t.run
	r.Min = t.run.Min.Clone()
	r.Max = t.run.Max.Clone()
	r.Avg = append([]float64(nil), t.run.Avg...)
	return r
}

// Metrics returns the collector set sampled on every trial.
func (t *Tester) Metrics() *collecting.Set { return t.metrics }
