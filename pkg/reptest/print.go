package reptest

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/collecting"
	"PerfHarness/pkg/utils"
)

// clearLine moves the cursor up one line and erases it.
const clearLine = "\x1b[1A\x1b[2K"

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print reports the tester state. While testing only one call in every
// printEvery is shown, and on a terminal it overwrites the previous line.
func (t *Tester) Print() {
	switch t.status {
	case Testing:
		show := t.prints%t.printEvery == 0
		t.prints++
		if !show {
			return
		}
		t.beginBlock()
		fmt.Fprintf(t.out, "best so far: %s\n", t.measurement(t.run.Min.Floats()))

	case Finished:
		t.beginBlock()
		fmt.Fprintf(t.out, "best: %s\nworst: %s\naverage: %s\n\n",
			t.measurement(t.run.Min.Floats()),
			t.measurement(t.run.Max.Floats()),
			t.measurement(t.run.Avg),
		)

	case Errored:
		fmt.Fprintf(t.out, "Tester errored with %s\n", t.errMsg)

	default:
		fmt.Fprintf(t.out, "Tester in %s state: Init was never called\n", t.status)
	}
}

// beginBlock writes the header on first output, and afterwards erases the
// previous progress line when writing to a terminal.
func (t *Tester) beginBlock() {
	if !t.shown {
		fmt.Fprintln(t.out, t.header.Render(fmt.Sprintf("--- %s ---", t.run.Name)))
		t.shown = true
		return
	}
	if t.terminal {
		io.WriteString(t.out, clearLine)
	}
}

// measurement renders one metric vector: ticks, wall time, throughput and
// page faults, then any other metric by name.
func (t *Tester) measurement(v []float64) string {
	if t.run.Trials == 0 {
		return "no trials"
	}

	ticks := v[0]
	seconds := clock.Seconds(ticks, t.freq)

	var b strings.Builder
	fmt.Fprintf(&b, "%s ticks (%.2f ms)", utils.Group(ticks, 3), seconds*1000)
	if t.run.Bytes > 0 && seconds > 0 {
		fmt.Fprintf(&b, " %.3f MiB/s", utils.Throughput(t.run.Bytes, seconds))
	}

	names := t.metrics.Names()
	for i := 1; i < len(v); i++ {
		if names[i] == collecting.MetricPageFaults {
			if v[i] <= 0 {
				continue
			}
			fmt.Fprintf(&b, "; PF=%s", utils.Group(v[i], 3))
			if t.run.Bytes > 0 {
				per, unit := utils.ScaleBytes(float64(t.run.Bytes) / v[i])
				fmt.Fprintf(&b, " (%s%s/fault)", utils.Group(per, 3), unit)
			}
			continue
		}
		fmt.Fprintf(&b, "; %s=%s", names[i], utils.Group(v[i], 3))
	}
	return b.String()
}
