// Package workloads provides ready-made code blocks for the repetition tester
// and the page-fault walk used by the CLI.
package workloads

import "os"

// PageSize is the OS page size.
var PageSize = os.Getpagesize()

// Region is a block of memory obtained from Alloc.
type Region struct {
	data   []byte
	mapped bool
}

func (r *Region) Bytes() []byte { return r.data }
func (r *Region) Len() int      { return len(r.data) }

// Free releases the region. It is safe to call more than once.
func (r *Region) Free() error {
	if r == nil || r.data == nil {
		return nil
	}
	err := r.free()
	r.data = nil
	return err
}
