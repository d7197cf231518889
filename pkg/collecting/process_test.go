package collecting

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRChar(t *testing.T) {
	data := []byte("rchar: 12345\nwchar: 99\nsyscr: 7\n")
	assert.Equal(t, uint64(12345), parseRChar(data))
	assert.Equal(t, uint64(0), parseRChar([]byte("wchar: 1\n")))
	assert.Equal(t, uint64(0), parseRChar(nil))
}

func TestParseStatmResident(t *testing.T) {
	assert.Equal(t, 3*pageSize, parseStatmResident([]byte("100 3 2 1 0 5 0\n")))
	assert.Equal(t, uint64(0), parseStatmResident([]byte("100")))
}

func TestParseStatCPU(t *testing.T) {
	// utime and stime are fields 14 and 15.
	line := "42 (a (weird) name) R 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20\n"
	assert.Equal(t, uint64(11+12), parseStatCPU([]byte(line)))
	assert.Equal(t, uint64(0), parseStatCPU([]byte("42 (short) R 1 2")))
	assert.Equal(t, uint64(0), parseStatCPU([]byte("garbage")))
}

func TestProcessCollectors_FromFiles(t *testing.T) {
	dir := t.TempDir()
	io := filepath.Join(dir, "io")
	require.NoError(t, os.WriteFile(io, []byte("rchar: 4096\nwchar: 0\n"), 0o644))

	c := &ReadBytes{path: io}
	assert.Equal(t, MetricReadBytes, c.Name())
	assert.Equal(t, uint64(4096), c.Sample())
	assert.NoError(t, c.Close())

	stat := filepath.Join(dir, "stat")
	require.NoError(t, os.WriteFile(stat, []byte("7 (perf h) S 1 2 3 4 5 6 7 8 9 10 40 2 0 0\n"), 0o644))
	cpu := &CPUTime{path: stat}
	assert.Equal(t, uint64(42), cpu.Sample())

	missing := &Resident{path: filepath.Join(dir, "none")}
	assert.Equal(t, uint64(0), missing.Sample())
}

func TestProcessCollectors_Live(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs only")
	}
	assert.Greater(t, NewResident().Sample(), uint64(0))
	assert.NotEmpty(t, NewCPUTime().path)

	rb := NewReadBytes()
	before := rb.Sample()
	if before == 0 {
		t.Skip("/proc/self/io unreadable")
	}
	_, err := os.ReadFile("/proc/self/stat")
	require.NoError(t, err)
	assert.Greater(t, rb.Sample(), before)
}
