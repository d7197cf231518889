//go:build !linux

package workloads

import "fmt"

// Alloc returns a heap buffer. Fresh-page behaviour is only guaranteed on
// Linux.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}
	return &Region{data: make([]byte, size)}, nil
}

func (r *Region) free() error { return nil }
