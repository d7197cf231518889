//go:build !unix

package probing

import "errors"

type Usage struct {
	MinorFaults       uint64
	MajorFaults       uint64
	VoluntarySwitches uint64
	ForcedSwitches    uint64
}

func ReadUsage() (Usage, error) {
	return Usage{}, errors.New("getrusage is not available on this platform")
}

func PageFaults() uint64      { return 0 }
func ContextSwitches() uint64 { return 0 }
