package reptest

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
)

const testFreq = 1_000_000

// newTester returns a ticks-only tester over a manual clock advancing step
// ticks per read.
func newTester(t *testing.T, step uint64) (*Tester, *clock.Manual, *bytes.Buffer) {
	t.Helper()
	src := clock.NewManual(1000, step, testFreq)
	var out bytes.Buffer
	tester, err := New(src, WithOutput(&out), WithMetrics(collecting.NewSet(src)))
	require.NoError(t, err)
	return tester, src, &out
}

// trial runs one start/end pair lasting elapsed ticks.
func trial(tester *Tester, src *clock.Manual, elapsed uint64) {
	src.SetStep(elapsed)
	tester.StartRun()
	tester.EndRun()
}

func TestNew_NilClock(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoClock)
}

func TestNew_DefaultMetrics(t *testing.T) {
	tester, err := New(clock.NewManual(0, 1, testFreq), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, []string{collecting.MetricClocks, collecting.MetricPageFaults}, tester.Metrics().Names())
	assert.Equal(t, Uninit, tester.Status())
	assert.NoError(t, tester.Err())
}

func TestFixedElapsed(t *testing.T) {
	const c = 250
	tester, _, _ := newTester(t, c)

	tester.Init("x", 1000, 0.01)
	for i := 0; i < 10; i++ {
		tester.StartRun()
		tester.EndRun()
	}

	run := tester.Run()
	require.Equal(t, Testing, tester.Status())
	assert.Equal(t, uint64(10), run.Trials)
	assert.Equal(t, uint64(c), run.Min[0])
	assert.Equal(t, uint64(c), run.Max[0])
	assert.Equal(t, float64(c), run.Avg[0])
}

func TestEndRunTwice(t *testing.T) {
	tester, src, _ := newTester(t, 10)
	tester.Init("x", 0, 1)
	trial(tester, src, 10)
	require.Equal(t, Testing, tester.Status())

	before := tester.Run()
	tester.EndRun()

	assert.Equal(t, Errored, tester.Status())
	assert.Equal(t, before, tester.Run())
	assert.ErrorIs(t, tester.Err(), ErrFailed)
	assert.Contains(t, tester.Err().Error(), msgBadEnd)
}

func TestEndRunWithoutInit(t *testing.T) {
	tester, _, _ := newTester(t, 10)
	tester.EndRun()
	assert.Equal(t, Errored, tester.Status())
	assert.Equal(t, uint64(0), tester.Run().Trials)
}

func TestMinAvgMax(t *testing.T) {
	tester, src, _ := newTester(t, 1)
	tester.Init("x", 0, 10)

	samples := []uint64{50, 30, 80, 10, 90, 20, 60}
	var sum float64
	for _, s := range samples {
		trial(tester, src, s)
		sum += float64(s)
	}

	run := tester.Run()
	require.Equal(t, uint64(len(samples)), run.Trials)
	assert.Equal(t, uint64(10), run.Min[0])
	assert.Equal(t, uint64(90), run.Max[0])
	assert.InDelta(t, sum/float64(len(samples)), run.Avg[0], 1e-9)
	assert.LessOrEqual(t, float64(run.Min[0]), run.Avg[0])
	assert.LessOrEqual(t, run.Avg[0], float64(run.Max[0]))
}

func TestMinMaxKeepWholeVector(t *testing.T) {
	src := clock.NewManual(0, 1, testFreq)
	var faults uint64
	set := collecting.NewSet(src, collecting.NewFunc("faults", func() uint64 { return faults }))
	tester, err := New(src, WithOutput(&bytes.Buffer{}), WithMetrics(set))
	require.NoError(t, err)

	tester.Init("x", 0, 10)
	for i, elapsed := range []uint64{40, 10, 70} {
		src.SetStep(elapsed)
		tester.StartRun()
		faults += uint64(i + 1)
		tester.EndRun()
	}

	run := tester.Run()
	assert.Equal(t, collecting.Vector{10, 2}, run.Min)
	assert.Equal(t, collecting.Vector{70, 3}, run.Max)
	assert.InDelta(t, 2.0, run.Avg[1], 1e-9)
}

func TestDeadlineMovesOnNewMinimum(t *testing.T) {
	tester, src, _ := newTester(t, 1)
	tester.Init("x", 0, 0.5)
	timeout := tester.timeout
	require.Equal(t, uint64(500_000), timeout)

	prev := tester.deadline
	for _, elapsed := range []uint64{100, 80, 60} {
		trial(tester, src, elapsed)
		assert.Greater(t, tester.deadline, prev)
		assert.Equal(t, src.Peek()-elapsed+timeout, tester.deadline)
		prev = tester.deadline
	}

	// A slower trial leaves the deadline alone.
	trial(tester, src, 500)
	assert.Equal(t, prev, tester.deadline)
}

func TestShouldContinueFinishesOnce(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	tester.Init("x", 0, 0.00001)

	calls := 0
	for tester.ShouldContinue() {
		calls++
		require.Less(t, calls, 100)
	}
	assert.Equal(t, Finished, tester.Status())
	assert.Equal(t, 9, calls)

	assert.False(t, tester.ShouldContinue())
	assert.Equal(t, Finished, tester.Status())
}

func TestShouldContinueOutsideTesting(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	assert.False(t, tester.ShouldContinue())
	assert.Equal(t, Uninit, tester.Status())

	tester.Error("boom")
	assert.False(t, tester.ShouldContinue())
	assert.Equal(t, Errored, tester.Status())
}

func TestReinitWithoutClear(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	tester.Init("a", 0, 1)
	tester.Init("b", 0, 1)
	assert.Equal(t, Errored, tester.Status())
	assert.Contains(t, tester.Err().Error(), msgReinit)

	tester.Clear()
	assert.Equal(t, Uninit, tester.Status())
	tester.Init("b", 0, 1)
	assert.Equal(t, Testing, tester.Status())
	assert.Equal(t, "b", tester.Run().Name)
}

func TestDoubleStart(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	tester.Init("x", 0, 1)
	tester.StartRun()
	tester.StartRun()
	assert.Equal(t, Errored, tester.Status())
	assert.Contains(t, tester.Err().Error(), msgDoubleStart)
}

func TestStartRunNotTesting(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	tester.StartRun()
	assert.Equal(t, Errored, tester.Status())
	assert.Contains(t, tester.Err().Error(), msgBadStart)
}

func TestTimeTravel(t *testing.T) {
	tester, src, _ := newTester(t, 1)
	tester.Init("x", 0, 1)
	trial(tester, src, 0)
	assert.Equal(t, Errored, tester.Status())
	assert.Contains(t, tester.Err().Error(), "time travel")
	assert.Equal(t, uint64(0), tester.Run().Trials)
}

func TestFirstErrorWins(t *testing.T) {
	tester, _, _ := newTester(t, 1)
	tester.Error("first")
	tester.Error("second")
	tester.EndRun()
	assert.Equal(t, "repetition test failed: first", tester.Err().Error())
}

func TestClearKeepsFrequency(t *testing.T) {
	tester, src, _ := newTester(t, 1)
	tester.Init("x", 0, 1)
	trial(tester, src, 5)
	tester.Clear()

	assert.Equal(t, Uninit, tester.Status())
	assert.Equal(t, uint64(testFreq), tester.Frequency())
	run := tester.Run()
	assert.Equal(t, uint64(0), run.Trials)
	assert.Equal(t, uint64(math.MaxUint64), run.Min[0])
}

func TestResultRecord(t *testing.T) {
	tester, src, _ := newTester(t, 1)
	tester.Init("write", 1<<20, 1)
	trial(tester, src, testFreq/1000)

	rec := tester.Result().Record()
	assert.Equal(t, "write", rec["name"])
	assert.Equal(t, "testing", rec["status"])
	assert.Equal(t, uint64(1), rec["trials"])
	assert.InDelta(t, 1.0, rec["best_ms"], 1e-9)
	assert.InDelta(t, 1000.0, rec["best_mibs"], 1e-6)
	assert.Equal(t, uint64(testFreq/1000), rec["min_clocks"])

	empty := Result{Name: "none", Status: Errored}.Record()
	assert.NotContains(t, empty, "best_ms")
}
