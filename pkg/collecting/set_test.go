package collecting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerfHarness/pkg/clock"
)

func TestNewSet_TicksFirst(t *testing.T) {
	src := clock.NewManual(0, 1, 1)
	s := NewSet(src, NewPageFaults(), nil, NewContextSwitches())
	defer s.Close()

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{MetricClocks, MetricPageFaults, MetricContextSwitches}, s.Names())
	assert.Equal(t, 0, s.Index(MetricClocks))
	assert.Equal(t, 2, s.Index(MetricContextSwitches))
	assert.Equal(t, -1, s.Index("cache_misses"))
}

func TestSnapshotOrder(t *testing.T) {
	var order []string
	src := clock.NewManual(10, 5, 1)
	s := NewSet(src,
		NewFunc("a", func() uint64 { order = append(order, "a"); return 1 }),
		NewFunc("b", func() uint64 { order = append(order, "b"); return 2 }),
	)

	start := NewVector(s.Len())
	s.SnapshotStart(start)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, Vector{10, 1, 2}, start)

	order = nil
	end := NewVector(s.Len())
	s.SnapshotEnd(end)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, Vector{15, 1, 2}, end)

	delta := NewVector(s.Len())
	delta.Delta(end, start)
	assert.Equal(t, Vector{5, 0, 0}, delta)
}

func TestVector(t *testing.T) {
	v := NewVector(3)
	v.Fill(7)
	assert.Equal(t, Vector{7, 7, 7}, v)
	assert.Equal(t, []float64{7, 7, 7}, v.Floats())

	c := v.Clone()
	c[0] = 1
	assert.Equal(t, uint64(7), v[0])

	// Deltas wrap instead of failing.
	d := NewVector(1)
	d.Delta(Vector{1}, Vector{2})
	assert.Equal(t, ^uint64(0), d[0])
}
