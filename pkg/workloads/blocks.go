package workloads

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"PerfHarness/pkg/reptest"
)

// Names of the built-in blocks.
const (
	NameWriteFresh    = "write fresh region"
	NameWriteBackward = "write fresh region backward"
	NameWriteReused   = "write reused buffer"
	NameReadFile      = "os.ReadFile"
	NameReadInto      = "File.Read into reused buffer"
	NameReadFresh     = "File.Read into fresh region"
	NameReadBuffered  = "bufio.Reader into reused buffer"
)

// failure carries the first error of a block's hooks into Check.
type failure struct{ err error }

func (f *failure) set(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

func (f *failure) ok() bool { return f.err == nil }

// WriteFresh writes every page of a freshly mapped region, so each trial
// pays for its page faults.
func WriteFresh(size int, backward bool) reptest.Block {
	var (
		region *Region
		fail   failure
	)
	name := NameWriteFresh
	if backward {
		name = NameWriteBackward
	}
	return reptest.Block{
		Name:  name,
		Bytes: uint64(size),
		Setup: func() {
			var err error
			region, err = Alloc(size)
			fail.set(err)
		},
		Body: func() {
			if region == nil {
				return
			}
			fill(region.Bytes(), backward)
		},
		Check: func() bool {
			return fail.ok() && region != nil && region.Bytes()[size-1] != 0
		},
		After: func() {
			fail.set(region.Free())
			region = nil
		},
	}
}

// WriteReused writes a buffer that was touched before the first trial.
func WriteReused(size int) reptest.Block {
	buf := make([]byte, size)
	fill(buf, false)
	return reptest.Block{
		Name:  NameWriteReused,
		Bytes: uint64(size),
		Body:  func() { fill(buf, false) },
		Check: func() bool { return buf[size-1] != 0 },
	}
}

// fill writes a non-zero pattern over buf.
func fill(buf []byte, backward bool) {
	n := len(buf)
	if backward {
		for i := n - 1; i >= 0; i-- {
			buf[i] = byte(i) | 1
		}
		return
	}
	for i := 0; i < n; i++ {
		buf[i] = byte(i) | 1
	}
}

// ReadFile allocates and reads the whole file on every trial.
func ReadFile(path string, size int64) reptest.Block {
	var (
		data []byte
		fail failure
	)
	return reptest.Block{
		Name:  NameReadFile,
		Bytes: uint64(size),
		Body: func() {
			var err error
			data, err = os.ReadFile(path)
			fail.set(err)
		},
		Check: func() bool { return fail.ok() && int64(len(data)) == size },
	}
}

// ReadInto reads the file into a buffer allocated once.
func ReadInto(path string, size int64) reptest.Block {
	buf := make([]byte, size)
	return readBlock(NameReadInto, path, size, func() []byte { return buf }, nil)
}

// ReadFresh reads the file into a freshly mapped region every trial.
func ReadFresh(path string, size int64) reptest.Block {
	var region *Region
	var fail failure
	b := readBlock(NameReadFresh, path, size,
		func() []byte {
			var err error
			region, err = Alloc(int(size))
			if err != nil {
				fail.set(err)
				return nil
			}
			return region.Bytes()
		},
		func() {
			fail.set(region.Free())
			region = nil
		},
	)
	check := b.Check
	b.Check = func() bool { return fail.ok() && check() }
	return b
}

func readBlock(name, path string, size int64, buffer func() []byte, after func()) reptest.Block {
	var (
		file *os.File
		buf  []byte
		n    int
		fail failure
	)
	return reptest.Block{
		Name:  name,
		Bytes: uint64(size),
		Setup: func() {
			var err error
			file, err = os.Open(path)
			fail.set(err)
			buf = buffer()
		},
		Body: func() {
			if file == nil || buf == nil {
				return
			}
			var err error
			n, err = io.ReadFull(file, buf)
			fail.set(err)
		},
		Check: func() bool { return fail.ok() && int64(n) == size },
		After: func() {
			if file != nil {
				fail.set(file.Close())
				file = nil
			}
			if after != nil {
				after()
			}
		},
	}
}

// ReadBuffered reads the file through a bufio.Reader of bufSize bytes into a
// buffer allocated once.
func ReadBuffered(path string, size int64, bufSize int) reptest.Block {
	buf := make([]byte, size)
	var (
		file *os.File
		n    int
		fail failure
	)
	return reptest.Block{
		Name:  fmt.Sprintf("%s (%dK)", NameReadBuffered, bufSize/1024),
		Bytes: uint64(size),
		Setup: func() {
			var err error
			file, err = os.Open(path)
			fail.set(err)
		},
		Body: func() {
			if file == nil {
				return
			}
			var err error
			n, err = io.ReadFull(bufio.NewReaderSize(file, bufSize), buf)
			fail.set(err)
		},
		Check: func() bool { return fail.ok() && int64(n) == size },
		After: func() {
			if file != nil {
				fail.set(file.Close())
				file = nil
			}
		},
	}
}

// Suite returns the default blocks. When path is empty only the memory
// blocks are returned.
func Suite(path string, writeSize int) ([]reptest.Block, error) {
	blocks := []reptest.Block{
		WriteFresh(writeSize, false),
		WriteFresh(writeSize, true),
		WriteReused(writeSize),
	}
	if path == "" {
		return blocks, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}
	size := info.Size()
	return append(blocks,
		ReadFile(path, size),
		ReadInto(path, size),
		ReadFresh(path, size),
		ReadBuffered(path, size, 64*1024),
	), nil
}
