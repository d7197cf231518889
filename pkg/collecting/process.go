package collecting

import (
	"bytes"
	"os"
	"sync"
	"syscall"

	"PerfHarness/pkg/probing"
)

// Process counters read from procfs. They are Linux only and sample 0
// elsewhere.
const (
	MetricReadBytes = "read_bytes"
	MetricResident  = "resident_bytes"
	MetricCPUTime   = "cpu_jiffies"

	procSelfIO     = "/proc/self/io"
	procSelfStatm  = "/proc/self/statm"
	procSelfStat   = "/proc/self/stat"
	procThreadStat = "/proc/thread-self/stat"
)

var pageSize = uint64(os.Getpagesize())

// Buffer pool to avoid allocations on every file read
var procBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 4096)
		return &buf
	},
}

// readProcFile reads a proc file into a pooled buffer and passes its content
// to parse. The slice is only valid inside parse.
func readProcFile(path string, parse func([]byte) uint64) uint64 {
	fd, err := syscall.Open(path, syscall.O_RDONLY, 0)
	if err != nil {
		return 0
	}
	defer syscall.Close(fd)

	bufPtr := procBufPool.Get().(*[]byte)
	defer procBufPool.Put(bufPtr)

	n, err := syscall.Read(fd, *bufPtr)
	if err != nil || n <= 0 {
		return 0
	}
	return parse((*bufPtr)[:n])
}

// ReadBytes samples the bytes read through read syscalls (rchar), which
// counts page-cache hits unlike read_bytes.
type ReadBytes struct{ path string }

func NewReadBytes() *ReadBytes { return &ReadBytes{path: procSelfIO} }

func (c *ReadBytes) Name() string   { return MetricReadBytes }
func (c *ReadBytes) Sample() uint64 { return readProcFile(c.path, parseRChar) }
func (c *ReadBytes) Close() error   { return nil }

// parseRChar extracts the rchar line of /proc/<pid>/io.
func parseRChar(data []byte) uint64 {
	for len(data) > 0 {
		lineEnd := bytes.IndexByte(data, '\n')
		if lineEnd == -1 {
			lineEnd = len(data)
		}
		line := data[:lineEnd]

		if v, ok := bytes.CutPrefix(line, []byte("rchar:")); ok {
			return parseUint(bytes.TrimSpace(v))
		}

		if lineEnd+1 >= len(data) {
			break
		}
		data = data[lineEnd+1:]
	}
	return 0
}

// Resident samples the resident set size in bytes.
type Resident struct{ path string }

func NewResident() *Resident { return &Resident{path: procSelfStatm} }

func (c *Resident) Name() string   { return MetricResident }
func (c *Resident) Sample() uint64 { return readProcFile(c.path, parseStatmResident) }
func (c *Resident) Close() error   { return nil }

// parseStatmResident returns the second field of statm in bytes.
func parseStatmResident(data []byte) uint64 {
	fields := bytes.Fields(data)
	if len(fields) < 2 {
		return 0
	}
	return parseUint(fields[1]) * pageSize
}

// CPUTime samples user plus system time of the calling thread in clock
// ticks (jiffies), or of the whole process on kernels without
// /proc/thread-self. Trials must be longer than a jiffy to register.
type CPUTime struct{ path string }

func NewCPUTime() *CPUTime {
	path := procThreadStat
	if !probing.Exists(path) {
		path = procSelfStat
	}
	return &CPUTime{path: path}
}

func (c *CPUTime) Name() string   { return MetricCPUTime }
func (c *CPUTime) Sample() uint64 { return readProcFile(c.path, parseStatCPU) }
func (c *CPUTime) Close() error   { return nil }

func parseStatCPU(data []byte) uint64 {
	v, err := probing.StatCPU(data)
	if err != nil {
		return 0
	}
	return v
}

func parseUint(b []byte) uint64 {
	v, err := probing.ParseUint64(string(b))
	if err != nil {
		return 0
	}
	return v
}
