package exporting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerfHarness/pkg/utils"
)

func sampleRecords() []Record {
	return []Record{
		{"name": "write", "trials": uint64(12), "best_ms": 1.5, "best_mibs": 640.25},
		{"name": "read", "trials": uint64(9), "best_ms": 2.25, "error": "", "ok": true},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "jsonl", "parquet", "tsv", "yaml"}, Names())

	f, ok := GetByPath("/tmp/out.YML")
	require.True(t, ok)
	assert.Equal(t, "yaml", f.Name())

	_, ok = GetByExtension("xlsx")
	assert.False(t, ok)

	assert.Equal(t, ".parquet", GetExtension("parquet"))
	assert.Equal(t, ".jsonl", GetExtension("unknown"))
	assert.Equal(t, filepath.Join("out", "run.tsv"), OutputPath("out", "run", "TSV"))
}

func TestSaveLoadRecords(t *testing.T) {
	dir := t.TempDir()
	for _, format := range Names() {
		t.Run(format, func(t *testing.T) {
			path := OutputPath(dir, "results", format)
			require.NoError(t, SaveRecords(path, sampleRecords()))

			got, err := LoadRecords(path)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, "write", got[0]["name"])
			assert.Equal(t, 12.0, utils.ToFloat64(got[0]["trials"]))
			assert.InDelta(t, 640.25, utils.ToFloat64(got[0]["best_mibs"]), 1e-9)
			assert.InDelta(t, 2.25, utils.ToFloat64(got[1]["best_ms"]), 1e-9)

			// Keys missing from a record stay missing; keys only the
			// second record has are kept.
			_, present := got[1]["best_mibs"]
			assert.False(t, present)
			assert.Equal(t, true, got[1]["ok"])
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	err := SaveRecords(filepath.Join(t.TempDir(), "x.xlsx"), sampleRecords())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadRecords("x.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewExporter(filepath.Join(t.TempDir(), "x.out"), "xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParquetKeepsUnsignedCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.parquet")
	require.NoError(t, SaveRecords(path, []Record{{"min_clocks": ^uint64(0), "delta": int64(-3)}}))

	got, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ^uint64(0), got[0]["min_clocks"])
	assert.Equal(t, int64(-3), got[0]["delta"])
}

func TestJSONLKeepsPrecisionAndSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	data := "{\"a\": 18446744073709551615, \"b\": 3, \"c\": 0.5}\nnot json\n\n{\"a\": 1}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ^uint64(0), got[0]["a"])
	assert.Equal(t, int64(3), got[0]["b"])
	assert.Equal(t, 0.5, got[0]["c"])
}

func TestExporterStampsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.jsonl")
	fixed := time.UnixMilli(1_700_000_000_000)

	e, err := NewExporter(path, "jsonl",
		WithSession("sess-1"),
		WithHostname("bench-host"),
		WithKind("reptest"),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)
	assert.Equal(t, "jsonl", e.Format())
	assert.Equal(t, "sess-1", e.Session())

	require.NoError(t, e.Write(Record{"name": "a"}))
	require.NoError(t, e.WriteBatch([]Record{{"name": "b"}, {"name": "c", FieldKind: "custom"}}))
	require.NoError(t, e.Close())

	got, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, "sess-1", r[FieldSession])
		assert.Equal(t, "bench-host", r[FieldHostname])
		assert.Equal(t, int64(1_700_000_000_000), r[FieldTimestamp])
	}
	assert.Equal(t, "reptest", got[0][FieldKind])
	assert.Equal(t, "custom", got[2][FieldKind])
}

func TestExporterDefaultSessionIsUUID(t *testing.T) {
	e, err := NewExporter(filepath.Join(t.TempDir(), "out.csv"), "csv")
	require.NoError(t, err)
	defer e.Close()
	assert.Len(t, e.Session(), 36)
}
