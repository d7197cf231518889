//go:build unix

package probing

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Usage is the subset of getrusage(2) counters sampled by collectors.
type Usage struct {
	MinorFaults       uint64
	MajorFaults       uint64
	VoluntarySwitches uint64
	ForcedSwitches    uint64
}

// ReadUsage samples getrusage(RUSAGE_SELF).
func ReadUsage() (Usage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}, fmt.Errorf("getrusage: %w", err)
	}
	return Usage{
		MinorFaults:       uint64(ru.Minflt),
		MajorFaults:       uint64(ru.Majflt),
		VoluntarySwitches: uint64(ru.Nvcsw),
		ForcedSwitches:    uint64(ru.Nivcsw),
	}, nil
}

// PageFaults returns minor plus major faults of the process so far.
func PageFaults() uint64 {
	u, err := ReadUsage()
	if err != nil {
		return 0
	}
	return u.MinorFaults + u.MajorFaults
}

// ContextSwitches returns voluntary plus involuntary context switches so far.
func ContextSwitches() uint64 {
	u, err := ReadUsage()
	if err != nil {
		return 0
	}
	return u.VoluntarySwitches + u.ForcedSwitches
}
