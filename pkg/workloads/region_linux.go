//go:build linux

package workloads

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Alloc maps size bytes of fresh anonymous memory. The kernel backs each page
// on first touch, so writes to a new region page-fault. Huge pages are
// disabled so every 4K page faults on its own.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	_ = unix.Madvise(data, unix.MADV_NOHUGEPAGE)
	return &Region{data: data, mapped: true}, nil
}

func (r *Region) free() error {
	return unix.Munmap(r.data)
}
