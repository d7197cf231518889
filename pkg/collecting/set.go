package collecting

import (
	"log/slog"

	"PerfHarness/pkg/clock"
)

// Set samples an ordered group of collectors. Index 0 is always elapsed ticks.
type Set struct {
	collectors []Collector
	logger     *slog.Logger
}

// NewSet builds a set whose first metric is the tick count of src.
func NewSet(src clock.Source, extra ...Collector) *Set {
	s := &Set{
		collectors: make([]Collector, 0, len(extra)+1),
		logger:     slog.Default(),
	}
	s.collectors = append(s.collectors, NewTicks(src))
	for _, c := range extra {
		if c != nil {
			s.collectors = append(s.collectors, c)
		}
	}

	s.logger.Debug("initialized collectors", "count", len(s.collectors), "metrics", s.Names())
	return s
}

// DefaultSet samples ticks and page faults.
func DefaultSet(src clock.Source) *Set {
	return NewSet(src, NewPageFaults())
}

func (s *Set) Len() int { return len(s.collectors) }

// Names returns the metric names in sampling order.
func (s *Set) Names() []string {
	names := make([]string, len(s.collectors))
	for i, c := range s.collectors {
		names[i] = c.Name()
	}
	return names
}

// Index returns the slot of the named metric or -1.
func (s *Set) Index(name string) int {
	for i, c := range s.collectors {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// SnapshotStart samples the secondary counters first and ticks last, so the
// tick reading sits right before the measured code.
func (s *Set) SnapshotStart(v Vector) {
	for i := len(s.collectors) - 1; i >= 0; i-- {
		v[i] = s.collectors[i].Sample()
	}
}

// SnapshotEnd samples ticks first, right after the measured code.
func (s *Set) SnapshotEnd(v Vector) {
	for i, c := range s.collectors {
		v[i] = c.Sample()
	}
}

func (s *Set) Close() {
	for _, c := range s.collectors {
		if err := c.Close(); err != nil {
			s.logger.Warn("error closing collector", "collector", c.Name(), "err", err)
		}
	}
}
