//go:build !linux && !darwin

package clock

import "time"

// Monotonic falls back to the runtime's monotonic clock. One tick is one nanosecond.
type Monotonic struct {
	base time.Time
}

func NewMonotonic() (*Monotonic, error) {
	return &Monotonic{base: time.Now()}, nil
}

func (m *Monotonic) Now() uint64 {
	return uint64(time.Since(m.base))
}

func (m *Monotonic) Calibrate(time.Duration) uint64 { return nanosPerSecond }
