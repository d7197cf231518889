package graphing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerfHarness/pkg/exporting"
)

func writeRecords(t *testing.T, name string, records []exporting.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, exporting.SaveRecords(path, records))
	return path
}

func TestGenerate_AllKinds(t *testing.T) {
	records := []exporting.Record{
		{"session_id": "abc", "hostname": "box", "name": "write", "status": "finished", "trials": uint64(40),
			"best_ms": 1.2, "avg_ms": 1.4, "worst_ms": 3.1, "best_mibs": 800.0, "avg_mibs": 700.0, "worst_mibs": 300.0},
		{"session_id": "abc", "name": "broken", "status": "errored", "trials": uint64(2),
			"best_ms": 0.5, "avg_ms": 0.5, "worst_ms": 0.5, "error": "didn't pass validity check"},
		{"session_id": "abc", "label": "parse", "percent": 60.0, "exclusive_ticks": uint64(600), "total_ms": 10.0},
		{"session_id": "abc", "label": "sum", "percent": 30.0, "exclusive_ticks": uint64(300), "total_ms": 10.0},
		{"session_id": "abc", "order": "forward", "page": int64(1), "faults": int64(1)},
		{"session_id": "abc", "order": "forward", "page": int64(2), "faults": int64(2)},
		{"session_id": "abc", "order": "backward", "page": int64(1), "faults": int64(1)},
	}
	input := writeRecords(t, "results.jsonl", records)
	outDir := t.TempDir()

	out, err := RenderFile(input, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "abc-graphs.html"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "Session: abc")
	assert.Contains(t, html, "Host: box")
	assert.Contains(t, html, "Trial time")
	assert.Contains(t, html, "Throughput")
	assert.Contains(t, html, "Exclusive time")
	assert.Contains(t, html, "unprofiled")
	assert.Contains(t, html, "Page faults")
	assert.Contains(t, html, `class="errored"`)
	assert.Less(t, strings.Index(html, "</head>"), strings.Index(html, `<div class="summary">`))
}

func TestGenerate_NoChartableRecords(t *testing.T) {
	input := writeRecords(t, "junk.csv", []exporting.Record{{"x": 1}})
	_, err := RenderFile(input, t.TempDir())
	assert.ErrorIs(t, err, ErrNoCharts)
}

func TestNewGenerator_RequiresInput(t *testing.T) {
	_, err := NewGenerator("", "out")
	assert.Error(t, err)
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindRepTest, detectKind(exporting.Record{"best_ms": 1.0}))
	assert.Equal(t, KindProfile, detectKind(exporting.Record{"exclusive_ticks": 1}))
	assert.Equal(t, KindPageFaults, detectKind(exporting.Record{"page": 1, "faults": 1}))
	assert.Equal(t, "", detectKind(exporting.Record{"page": 1}))

	groups := groupByKind([]exporting.Record{{"kind": "profile", "best_ms": 1.0}})
	assert.Len(t, groups[KindProfile], 1)
}
