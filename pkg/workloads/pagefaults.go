package workloads

import (
	"fmt"

	"PerfHarness/pkg/probing"
)

// Touch orders for TouchPages.
const (
	Forward  = "forward"
	Backward = "backward"
)

// FaultSample is the cumulative page-fault count after touching Page pages.
type FaultSample struct {
	Page   int
	Faults uint64
}

// TouchPages maps a fresh region of pages pages and writes one byte per page
// in the given order, sampling the process fault counter after each write.
func TouchPages(pages int, order string) ([]FaultSample, error) {
	if pages <= 0 {
		return nil, fmt.Errorf("pages must be positive, got %d", pages)
	}
	if order != Forward && order != Backward {
		return nil, fmt.Errorf("unknown touch order %q", order)
	}

	region, err := Alloc(pages * PageSize)
	if err != nil {
		return nil, err
	}
	defer region.Free()

	buf := region.Bytes()
	samples := make([]FaultSample, pages)
	base := probing.PageFaults()
	for i := 0; i < pages; i++ {
		page := i
		if order == Backward {
			page = pages - 1 - i
		}
		buf[page*PageSize] = byte(i)
		samples[i] = FaultSample{Page: i + 1, Faults: probing.PageFaults() - base}
	}
	return samples, nil
}

// FaultRecords flattens samples into export records. extra is the number
// of faults beyond one per touched page.
func FaultRecords(samples []FaultSample, order string) []map[string]any {
	out := make([]map[string]any, len(samples))
	for i, s := range samples {
		out[i] = map[string]any{
			"order":  order,
			"pages":  len(samples),
			"page":   s.Page,
			"faults": s.Faults,
			"extra":  int64(s.Faults) - int64(s.Page),
		}
	}
	return out
}
