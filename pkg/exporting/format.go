// Package exporting persists result records in tabular file formats.
package exporting

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for unknown format names or extensions.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Record is one flat result row.
type Record = map[string]any

// Format defines the interface for a data format.
type Format interface {
	Name() string
	Extensions() []string
	Reader() Reader
	Writer() Writer
}

// Reader reads records from a file.
type Reader interface {
	Open(path string) error
	Read() ([]Record, error)
	Close() error
}

// Writer writes records to a file.
type Writer interface {
	Init(path string) error
	Write(record Record) error
	WriteBatch(records []Record) error
	Flush() error
	Close() error
	Path() string
}

var (
	registry    = make(map[string]Format)
	extRegistry = make(map[string]Format)
)

// Register adds a format to the registry.
func Register(f Format) {
	name := strings.ToLower(f.Name())
	registry[name] = f
	for _, ext := range f.Extensions() {
		extRegistry[strings.ToLower(ext)] = f
	}
}

// Get returns a format by name.
func Get(name string) (Format, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// GetByExtension returns a format by file extension.
func GetByExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extRegistry[ext]
	return f, ok
}

// GetByPath returns a format based on the file's extension.
func GetByPath(path string) (Format, bool) {
	return GetByExtension(filepath.Ext(path))
}

// Names lists the registered format names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetExtension returns the primary file extension for a format name,
// falling back to jsonl.
func GetExtension(format string) string {
	if f, ok := Get(format); ok {
		return f.Extensions()[0]
	}
	return ".jsonl"
}

// OutputPath joins dir and name with the extension of format.
func OutputPath(dir, name, format string) string {
	return filepath.Join(dir, name+GetExtension(format))
}

// LoadRecords loads all records from a file.
func LoadRecords(path string) ([]Record, error) {
	f, ok := GetByPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	reader := f.Reader()
	if err := reader.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	records, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// SaveRecords writes records to a file.
func SaveRecords(path string, records []Record) error {
	f, ok := GetByPath(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return fmt.Errorf("failed to initialize writer: %w", err)
	}

	if err := writer.WriteBatch(records); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}

	return writer.Close()
}

// columns returns the sorted union of keys across records.
func columns(records ...Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
