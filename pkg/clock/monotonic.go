//go:build linux || darwin

package clock

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Monotonic reads CLOCK_MONOTONIC_RAW. One tick is one nanosecond.
type Monotonic struct{}

// NewMonotonic checks that the raw monotonic clock can be read.
func NewMonotonic() (*Monotonic, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return nil, fmt.Errorf("%w: clock_gettime: %v", ErrUnavailable, err)
	}
	return &Monotonic{}, nil
}

func (m *Monotonic) Now() uint64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts)
	return uint64(ts.Nano())
}

func (m *Monotonic) Calibrate(time.Duration) uint64 { return nanosPerSecond }
