package reptest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
)

func TestPrint_Throttled(t *testing.T) {
	tester, src, out := newTester(t, 1)
	tester.Init("bench", 1000, 1)
	trial(tester, src, 100)

	for i := 0; i < 11; i++ {
		tester.Print()
	}

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "--- bench ---"))
	assert.Equal(t, 2, strings.Count(text, "best so far:"))
	assert.NotContains(t, text, clearLine)
}

func TestPrint_Finished(t *testing.T) {
	tester, src, out := newTester(t, 1)
	tester.Init("bench", 1000, 0.00001)
	trial(tester, src, 100)
	for tester.ShouldContinue() {
	}
	require.Equal(t, Finished, tester.Status())

	tester.Print()
	text := out.String()
	assert.Contains(t, text, "--- bench ---")
	assert.Contains(t, text, "best: 100 ticks (0.10 ms) 9.537 MiB/s")
	assert.Contains(t, text, "worst: ")
	assert.Contains(t, text, "average: ")
}

func TestPrint_PageFaults(t *testing.T) {
	src := clock.NewManual(0, 1, testFreq)
	var faults uint64
	set := collecting.NewSet(src,
		collecting.NewFunc(collecting.MetricPageFaults, func() uint64 { return faults }),
		collecting.NewFunc("switches", func() uint64 { return 0 }),
	)
	var out bytes.Buffer
	tester, err := New(src, WithOutput(&out), WithMetrics(set))
	require.NoError(t, err)

	tester.Init("touch", 4096*1000, 1)
	src.SetStep(2000)
	tester.StartRun()
	faults = 1000
	tester.EndRun()
	tester.Print()

	assert.Contains(t, out.String(), "2,000 ticks (2.00 ms)")
	assert.Contains(t, out.String(), "; PF=1,000 (4k/fault)")
	assert.Contains(t, out.String(), "; switches=0")
}

func TestPrint_Errored(t *testing.T) {
	tester, _, out := newTester(t, 1)
	tester.Error("bad things")
	tester.Print()
	assert.Equal(t, "Tester errored with bad things\n", out.String())
}

func TestPrint_Uninit(t *testing.T) {
	tester, _, out := newTester(t, 1)
	tester.Print()
	assert.Contains(t, out.String(), "Tester in uninit state")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", Status(42).String())
}
