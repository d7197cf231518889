// Package clock provides the tick sources used for measurement and the
// calibration that converts ticks into wall time.
package clock

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrUnavailable is returned when a tick source cannot be used on this platform.
var ErrUnavailable = errors.New("clock source unavailable")

// DefaultCalibration is the busy-wait window used to estimate a tick frequency.
const DefaultCalibration = 100 * time.Millisecond

const nanosPerSecond = 1_000_000_000

// Source is a monotonically increasing tick counter.
type Source interface {
	Now() uint64
}

// Calibrator is implemented by sources that know their own tick rate.
type Calibrator interface {
	Calibrate(window time.Duration) uint64
}

// Calibrate spins against the wall clock for window and returns the number of
// ticks src advanced per second over that window.
func Calibrate(src Source, window time.Duration) uint64 {
	if window <= 0 {
		window = DefaultCalibration
	}

	startTicks := src.Now()
	start := time.Now()
	for time.Since(start) < window {
	}
	endTicks := src.Now()

	return uint64(math.Round(float64(endTicks-startTicks) / window.Seconds()))
}

// Frequency returns the tick rate of src, preferring the source's own answer.
func Frequency(src Source, window time.Duration) uint64 {
	if c, ok := src.(Calibrator); ok {
		return c.Calibrate(window)
	}
	return Calibrate(src, window)
}

// Names lists the values accepted by Open.
func Names() []string {
	return []string{"auto", "tsc", "monotonic"}
}

// Open returns the named tick source. "auto" (or empty) prefers the TSC and
// falls back to the raw monotonic clock.
func Open(name string) (Source, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		if tsc, err := NewTSC(); err == nil {
			return tsc, nil
		}
		return NewMonotonic()
	case "tsc":
		return NewTSC()
	case "monotonic":
		return NewMonotonic()
	default:
		return nil, fmt.Errorf("unknown clock %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
}

// Ticks converts a duration into ticks at freq ticks per second.
func Ticks(d time.Duration, freq uint64) uint64 {
	return uint64(d.Seconds() * float64(freq))
}

// Seconds converts ticks into seconds at freq ticks per second.
func Seconds(ticks float64, freq uint64) float64 {
	if freq == 0 {
		return 0
	}
	return ticks / float64(freq)
}
