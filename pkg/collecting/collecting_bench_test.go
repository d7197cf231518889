package collecting

import (
	"testing"

	"PerfHarness/pkg/clock"
)

func BenchmarkSet_SnapshotTicks(b *testing.B) {
	src, err := clock.Open("auto")
	if err != nil {
		b.Skip(err)
	}
	s := NewSet(src)
	defer s.Close()
	v := NewVector(s.Len())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SnapshotEnd(v)
	}
}

func BenchmarkSet_SnapshotDefault(b *testing.B) {
	src, err := clock.Open("auto")
	if err != nil {
		b.Skip(err)
	}
	s := DefaultSet(src)
	defer s.Close()
	v := NewVector(s.Len())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SnapshotStart(v)
	}
}

func BenchmarkPageFaults_Sample(b *testing.B) {
	c := NewPageFaults()
	defer c.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Sample()
	}
}
