package clock

import "fmt"

// TSC reads the x86 time-stamp counter. Its rate must be calibrated.
type TSC struct{}

// NewTSC fails with ErrUnavailable on architectures without a readable TSC.
func NewTSC() (*TSC, error) {
	if !tscSupported {
		return nil, fmt.Errorf("%w: tsc is not readable on this architecture", ErrUnavailable)
	}
	return &TSC{}, nil
}

func (t *TSC) Now() uint64 { return readTSC() }
