package profiling

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/utils"
)

// Entry is the report line of one label.
type Entry struct {
	Label     Label
	Name      string
	Count     uint64
	Inclusive uint64
	Exclusive uint64
	Bytes     uint64
	// Percent is exclusive time over the session total.
	Percent float64
	// PercentWithChildren is inclusive time over the session total. It is
	// only meaningful when HasChildren is set.
	PercentWithChildren float64
	HasChildren         bool
	// GiB and MiBPerSecond are set when bytes were attributed to the label.
	GiB          float64
	MiBPerSecond float64
}

// Report is the outcome of a finished session.
type Report struct {
	TotalTicks  uint64
	Frequency   uint64
	TotalMillis float64
	Entries     []Entry
}

func newReport(total, freq uint64, anchors *[MaxLabels]Anchor, names []string) Report {
	r := Report{
		TotalTicks:  total,
		Frequency:   freq,
		TotalMillis: clock.Seconds(float64(total), freq) * 1000,
	}

	for i := Label(1); i < MaxLabels; i++ {
		a := anchors[i]
		if a.Inclusive == 0 && a.Exclusive == 0 {
			continue
		}

		e := Entry{
			Label:       i,
			Name:        labelName(i, names),
			Count:       a.Count,
			Inclusive:   a.Inclusive,
			Exclusive:   a.Exclusive,
			Bytes:       a.Bytes,
			Percent:     utils.Percent(float64(a.Exclusive), float64(total)),
			HasChildren: a.Inclusive != a.Exclusive,
		}
		if e.HasChildren {
			e.PercentWithChildren = utils.Percent(float64(a.Inclusive), float64(total))
		}
		if a.Bytes > 0 {
			e.GiB = float64(a.Bytes) / utils.GiB
			e.MiBPerSecond = utils.Throughput(a.Bytes, clock.Seconds(float64(a.Inclusive), freq))
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

func labelName(l Label, names []string) string {
	if int(l) < len(names) && names[l] != "" {
		return names[l]
	}
	return fmt.Sprintf("label_%d", l)
}

// Entry returns the line for the named label.
func (r Report) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// WriteTo renders the report as text.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Execution time: %.2fms; CPU frequency ~%sHz\n",
		r.TotalMillis, humanize.Comma(int64(r.Frequency)))

	for _, e := range r.Entries {
		fmt.Fprintf(&b, "- %s[%d]=%s (%.2f%%", e.Name, e.Count, utils.GroupUint(e.Inclusive), e.Percent)
		if e.HasChildren {
			fmt.Fprintf(&b, ", %.2f%% w/children", e.PercentWithChildren)
		}
		b.WriteString(")")
		if e.Bytes > 0 {
			fmt.Fprintf(&b, " %.3f GiB => %.2f MiB/s", e.GiB, e.MiBPerSecond)
		}
		b.WriteString("\n")
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Records flattens the report into export records, one per label.
func (r Report) Records() []map[string]any {
	out := make([]map[string]any, 0, len(r.Entries))
	for _, e := range r.Entries {
		rec := map[string]any{
			"label":            e.Name,
			"count":            e.Count,
			"inclusive_ticks":  e.Inclusive,
			"exclusive_ticks":  e.Exclusive,
			"percent":          e.Percent,
			"percent_children": e.PercentWithChildren,
			"bytes":            e.Bytes,
			"mibs":             e.MiBPerSecond,
			"total_ticks":      r.TotalTicks,
			"frequency":        r.Frequency,
			"total_ms":         r.TotalMillis,
		}
		out = append(out, rec)
	}
	return out
}
