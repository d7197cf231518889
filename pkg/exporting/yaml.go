package exporting

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLFormat{})
}

// YAMLFormat stores records as a single YAML sequence. Records are held in
// memory until Close.
type YAMLFormat struct{}

func (f *YAMLFormat) Name() string         { return "yaml" }
func (f *YAMLFormat) Extensions() []string { return []string{".yaml", ".yml"} }
func (f *YAMLFormat) Reader() Reader       { return &YAMLReader{} }
func (f *YAMLFormat) Writer() Writer       { return &YAMLWriter{} }

// YAMLReader reads a YAML sequence of mappings.
type YAMLReader struct {
	file *os.File
}

func (r *YAMLReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.file = file
	return nil
}

func (r *YAMLReader) Read() ([]Record, error) {
	var records []Record
	if err := yaml.NewDecoder(r.file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	for _, rec := range records {
		for k, v := range rec {
			if i, ok := v.(int); ok {
				rec[k] = int64(i)
			}
		}
	}
	return records, nil
}

func (r *YAMLReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// YAMLWriter writes a YAML sequence of mappings.
type YAMLWriter struct {
	path    string
	records []Record
	mu      sync.Mutex
}

func (w *YAMLWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	return file.Close()
}

func (w *YAMLWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, record)
	return nil
}

func (w *YAMLWriter) WriteBatch(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, records...)
	return nil
}

// Flush rewrites the whole file with every record seen so far.
func (w *YAMLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(w.records); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (w *YAMLWriter) Close() error {
	return w.Flush()
}

func (w *YAMLWriter) Path() string {
	return w.path
}
