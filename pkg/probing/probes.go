// Package probing reads the platform counters the harness consumes: resource
// usage, per-thread scheduler state and CPU affinity.
package probing

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	procSelfStat   = "/proc/self/stat"
	procThreadStat = "/proc/thread-self/stat"
)

// File reads a file and returns its content.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// FileLines reads a file into lines.
func FileLines(path string) ([]string, error) {
	v, err := File(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimRight(v, "\n"), "\n"), nil
}

// FileKV reads a key-value file like /proc/self/status.
func FileKV(path, sep string) (map[string]string, error) {
	lines, err := FileLines(path)
	if err != nil {
		return nil, err
	}
	kv := make(map[string]string, len(lines))
	for _, line := range lines {
		idx := strings.Index(line, sep)
		if idx != -1 {
			kv[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return kv, nil
}

// ParseUint64 parses a base-10 counter, tolerating surrounding whitespace.
func ParseUint64(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// Exists checks if a path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
