//go:build !linux

package probing

import "runtime"

// PinToCurrentCPU only locks the goroutine to its thread; affinity is not
// adjustable here.
func PinToCurrentCPU() (int, error) {
	runtime.LockOSThread()
	return -1, nil
}
