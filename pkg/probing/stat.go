package probing

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMalformedStat is returned when a stat line cannot be parsed.
var ErrMalformedStat = errors.New("malformed stat line")

// SelfStat holds the fields of /proc/<pid>/stat the harness cares about.
type SelfStat struct {
	Name        string
	MinorFaults uint64
	MajorFaults uint64
	UserTicks   uint64
	SystemTicks uint64
	Processor   int
}

// Faults returns minor plus major faults.
func (s SelfStat) Faults() uint64 {
	return s.MinorFaults + s.MajorFaults
}

// ReadSelfStat parses /proc/self/stat.
func ReadSelfStat() (SelfStat, error) {
	return readStat(procSelfStat)
}

// ReadThreadStat parses /proc/thread-self/stat for the calling OS thread.
func ReadThreadStat() (SelfStat, error) {
	return readStat(procThreadStat)
}

func readStat(path string) (SelfStat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelfStat{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseStat(data)
}

// statFields splits a /proc stat line into the command name and the fields
// after it. The command name may contain spaces and parentheses, so fields
// are counted from the last ')'. fields[0] is field 3 (state) of proc(5).
func statFields(data []byte) (name []byte, fields [][]byte, err error) {
	start := bytes.IndexByte(data, '(')
	end := bytes.LastIndexByte(data, ')')
	if start == -1 || end == -1 || end <= start || end+2 > len(data) {
		return nil, nil, ErrMalformedStat
	}
	return data[start+1 : end], bytes.Fields(data[end+2:]), nil
}

func statUint(fields [][]byte, i int, what string) (uint64, error) {
	v, err := strconv.ParseUint(string(fields[i]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedStat, what, err)
	}
	return v, nil
}

// ParseStat extracts fields from a /proc stat line.
func ParseStat(data []byte) (SelfStat, error) {
	name, fields, err := statFields(data)
	if err != nil {
		return SelfStat{}, err
	}
	s := SelfStat{Name: string(name)}

	if len(fields) < 37 {
		return s, fmt.Errorf("%w: %d fields after name", ErrMalformedStat, len(fields))
	}

	if s.MinorFaults, err = statUint(fields, 7, "minflt"); err != nil {
		return s, err
	}
	if s.MajorFaults, err = statUint(fields, 9, "majflt"); err != nil {
		return s, err
	}
	if s.UserTicks, err = statUint(fields, 11, "utime"); err != nil {
		return s, err
	}
	if s.SystemTicks, err = statUint(fields, 12, "stime"); err != nil {
		return s, err
	}
	if s.Processor, err = strconv.Atoi(string(fields[36])); err != nil {
		return s, fmt.Errorf("%w: processor: %v", ErrMalformedStat, err)
	}
	return s, nil
}

// StatCPU returns utime plus stime, in clock ticks, of a stat line. It
// needs only the fields up to stime, so it accepts truncated lines that
// ParseStat rejects.
func StatCPU(data []byte) (uint64, error) {
	_, fields, err := statFields(data)
	if err != nil {
		return 0, err
	}
	if len(fields) < 13 {
		return 0, fmt.Errorf("%w: %d fields after name", ErrMalformedStat, len(fields))
	}
	utime, err := statUint(fields, 11, "utime")
	if err != nil {
		return 0, err
	}
	stime, err := statUint(fields, 12, "stime")
	if err != nil {
		return 0, err
	}
	return utime + stime, nil
}
