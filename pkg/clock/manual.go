package clock

import "time"

// Manual is a deterministic source. Every Now call returns the current tick
// and then advances it by step.
type Manual struct {
	now  uint64
	step uint64
	freq uint64
}

// NewManual creates a manual clock starting at start, advancing step ticks per
// read and reporting freq ticks per second.
func NewManual(start, step, freq uint64) *Manual {
	return &Manual{now: start, step: step, freq: freq}
}

func (m *Manual) Now() uint64 {
	t := m.now
	m.now += m.step
	return t
}

// Advance moves the clock forward by d ticks without a read.
func (m *Manual) Advance(d uint64) { m.now += d }

// Set moves the clock to t.
func (m *Manual) Set(t uint64) { m.now = t }

// SetStep changes the per-read advance.
func (m *Manual) SetStep(step uint64) { m.step = step }

// Peek returns the current tick without advancing.
func (m *Manual) Peek() uint64 { return m.now }

func (m *Manual) Calibrate(time.Duration) uint64 { return m.freq }
