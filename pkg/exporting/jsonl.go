package exporting

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

const (
	DefaultBufferSize = 64 * 1024
	MaxLineSize       = 10 * 1024 * 1024
)

func init() {
	Register(&JSONLFormat{})
}

// JSONLFormat handles JSON Lines, one record per line.
type JSONLFormat struct{}

func (f *JSONLFormat) Name() string         { return "jsonl" }
func (f *JSONLFormat) Extensions() []string { return []string{".jsonl", ".ndjson"} }
func (f *JSONLFormat) Reader() Reader       { return &JSONLReader{} }
func (f *JSONLFormat) Writer() Writer       { return &JSONLWriter{} }

// JSONLReader reads JSONL files. Integers keep full 64-bit precision.
type JSONLReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

func (r *JSONLReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.file = file
	r.scanner = bufio.NewScanner(file)
	r.scanner.Buffer(make([]byte, DefaultBufferSize), MaxLineSize)
	return nil
}

func (r *JSONLReader) Read() ([]Record, error) {
	var records []Record
	for line := 1; r.scanner.Scan(); line++ {
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var record Record
		if err := dec.Decode(&record); err != nil {
			slog.Warn("skipping malformed jsonl line", "path", r.file.Name(), "line", line, "err", err)
			continue
		}
		for k, v := range record {
			if n, ok := v.(json.Number); ok {
				record[k] = normalizeNumber(n)
			}
		}
		records = append(records, record)
	}

	if err := r.scanner.Err(); err != nil {
		return records, fmt.Errorf("scanner error: %w", err)
	}
	return records, nil
}

// normalizeNumber picks int64, then uint64, then float64.
func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func (r *JSONLReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// JSONLWriter writes JSONL files.
type JSONLWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	mu   sync.Mutex
}

func (w *JSONLWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	w.file = file
	w.buf = bufio.NewWriterSize(file, DefaultBufferSize)
	w.enc = json.NewEncoder(w.buf)
	return nil
}

func (w *JSONLWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return nil
}

func (w *JSONLWriter) WriteBatch(records []Record) error {
	for i, r := range records {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf != nil {
		return w.buf.Flush()
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *JSONLWriter) Path() string {
	return w.path
}
