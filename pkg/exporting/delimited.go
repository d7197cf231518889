package exporting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"PerfHarness/pkg/utils"
)

func init() {
	Register(&CSVFormat{})
	Register(&TSVFormat{})
}

// CSVFormat handles CSV files.
type CSVFormat struct{}

func (f *CSVFormat) Name() string         { return "csv" }
func (f *CSVFormat) Extensions() []string { return []string{".csv"} }
func (f *CSVFormat) Reader() Reader       { return &DelimitedReader{delimiter: ','} }
func (f *CSVFormat) Writer() Writer       { return &DelimitedWriter{delimiter: ','} }

// TSVFormat handles TSV files.
type TSVFormat struct{}

func (f *TSVFormat) Name() string         { return "tsv" }
func (f *TSVFormat) Extensions() []string { return []string{".tsv"} }
func (f *TSVFormat) Reader() Reader       { return &DelimitedReader{delimiter: '\t'} }
func (f *TSVFormat) Writer() Writer       { return &DelimitedWriter{delimiter: '\t'} }

// DelimitedReader reads CSV/TSV files with a header row.
type DelimitedReader struct {
	file      *os.File
	reader    *csv.Reader
	header    []string
	delimiter rune
}

// Open opens the file and reads the header row.
func (r *DelimitedReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.file = file
	r.reader = csv.NewReader(file)
	r.reader.Comma = r.delimiter
	r.reader.FieldsPerRecord = -1
	r.reader.LazyQuotes = true

	header, err := r.reader.Read()
	if err != nil {
		_ = r.file.Close()
		return fmt.Errorf("failed to read header: %w", err)
	}
	r.header = header
	return nil
}

// Read parses all remaining rows. Empty cells are left out of the record.
func (r *DelimitedReader) Read() ([]Record, error) {
	var records []Record
	for {
		row, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		record := make(Record, len(row))
		for i, val := range row {
			if i >= len(r.header) || val == "" {
				continue
			}
			record[r.header[i]] = parseCell(val)
		}
		records = append(records, record)
	}
}

// parseCell restores the type a cell was most likely written with.
func parseCell(val string) any {
	if i, err := strconv.ParseInt(val, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(val, 10, 64); err == nil {
		return u
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	switch strings.ToLower(val) {
	case "true":
		return true
	case "false":
		return false
	}
	return val
}

// Close closes the underlying file handle.
func (r *DelimitedReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// DelimitedWriter writes CSV/TSV files. The header is fixed by the first
// write; keys that appear later are dropped.
type DelimitedWriter struct {
	path      string
	file      *os.File
	writer    *csv.Writer
	header    []string
	delimiter rune
	dropped   map[string]struct{}
	mu        sync.Mutex
}

// Init creates the file and prepares the writer.
func (w *DelimitedWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w.path = path
	w.file = file
	w.writer = csv.NewWriter(file)
	w.writer.Comma = w.delimiter
	w.dropped = make(map[string]struct{})
	return nil
}

// Write writes a single record.
func (w *DelimitedWriter) Write(record Record) error {
	return w.WriteBatch([]Record{record})
}

// WriteBatch writes records. On the first call the header is the union of
// every key in the batch.
func (w *DelimitedWriter) WriteBatch(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.header == nil && len(records) > 0 {
		w.header = columns(records...)
		if err := w.writer.Write(w.header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range records {
		if err := w.writeRow(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

func (w *DelimitedWriter) writeRow(record Record) error {
	row := make([]string, len(w.header))
	used := 0
	for i, key := range w.header {
		if val, ok := record[key]; ok {
			row[i] = utils.FormatValue(val)
			used++
		}
	}
	if used < len(record) {
		w.noteDropped(record)
	}
	return w.writer.Write(row)
}

func (w *DelimitedWriter) noteDropped(record Record) {
	for k := range record {
		if _, known := w.dropped[k]; known {
			continue
		}
		found := false
		for _, h := range w.header {
			if h == k {
				found = true
				break
			}
		}
		if !found {
			w.dropped[k] = struct{}{}
			slog.Debug("column not in header, dropped", "path", w.path, "column", k)
		}
	}
}

// Flush writes any buffered data to the file.
func (w *DelimitedWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		w.writer.Flush()
		return w.writer.Error()
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (w *DelimitedWriter) Close() error {
	err := w.Flush()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Path returns the file path.
func (w *DelimitedWriter) Path() string {
	return w.path
}
