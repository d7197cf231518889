package collecting

import (
	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/probing"
)

// Collector defines the interface for all metric collectors
type Collector interface {
	Name() string
	Sample() uint64
	Close() error
}

// Ticks samples a clock source. It is always metric 0 of a Set.
type Ticks struct {
	src clock.Source
}

func NewTicks(src clock.Source) *Ticks { return &Ticks{src: src} }
func (c *Ticks) Name() string { return MetricClocks }
func (c *Ticks) Sample() uint64 { return c.src.Now() }
func (c *Ticks) Close() error { return nil }

// PageFaults samples minor plus major faults of the process.
type PageFaults struct{}

func NewPageFaults() *PageFaults { return &PageFaults{} }
func (c *PageFaults) Name() string { return MetricPageFaults }
func (c *PageFaults) Sample() uint64 { return probing.PageFaults() }
func (c *PageFaults) Close() error { return nil }

// ContextSwitches samples voluntary plus involuntary context switches.
type ContextSwitches struct{}

func NewContextSwitches() *ContextSwitches { return &ContextSwitches{} }
func (c *ContextSwitches) Name() string { return MetricContextSwitches }
func (c *ContextSwitches) Sample() uint64 { return probing.ContextSwitches() }
func (c *ContextSwitches) Close() error { return nil }

// Func adapts a plain function into a Collector.
type Func struct {
	name string
	fn   func() uint64
}

func NewFunc(name string, fn func() uint64) *Func { return &Func{name: name, fn: fn} }
func (c *Func) Name() string { return c.name }
func (c *Func) Sample() uint64 { return c.fn() }
func (c *Func) Close() error { return nil }
