//go:build linux

package probing

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinToCurrentCPU locks the calling goroutine to its OS thread and restricts
// that thread to the CPU it is currently running on. The goroutine stays
// locked; measurement must happen on it.
func PinToCurrentCPU() (int, error) {
	runtime.LockOSThread()

	stat, err := ReadThreadStat()
	if err != nil {
		runtime.UnlockOSThread()
		return -1, fmt.Errorf("failed to find current cpu: %w", err)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(stat.Processor)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return -1, fmt.Errorf("sched_setaffinity(%d): %w", stat.Processor, err)
	}
	return stat.Processor, nil
}
