package exporting

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Columns stamped on every exported record.
const (
	FieldSession   = "session_id"
	FieldHostname  = "hostname"
	FieldTimestamp = "timestamp"
	FieldKind      = "kind"
)

// Exporter writes records of one session to a file, stamping each with the
// session id, host and a unix-millisecond timestamp.
type Exporter struct {
	path     string
	format   string
	writer   Writer
	session  string
	hostname string
	kind     string
	now      func() time.Time
	logger   *slog.Logger
	written  int
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithSession sets the session id. Defaults to a random UUID.
func WithSession(id string) ExporterOption {
	return func(e *Exporter) {
		if id != "" {
			e.session = id
		}
	}
}

// WithHostname overrides the detected host name.
func WithHostname(name string) ExporterOption {
	return func(e *Exporter) {
		if name != "" {
			e.hostname = name
		}
	}
}

// WithKind tags every record with the kind of measurement that produced it.
func WithKind(kind string) ExporterOption {
	return func(e *Exporter) {
		e.kind = kind
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExportLogger sets the logger.
func WithExportLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an exporter for the given path and format.
func NewExporter(path, format string, opts ...ExporterOption) (*Exporter, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize writer: %w", err)
	}

	hostname, _ := os.Hostname()
	e := &Exporter{
		path:     path,
		format:   f.Name(),
		writer:   writer,
		session:  uuid.NewString(),
		hostname: hostname,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Debug("exporter opened", "path", path, "format", e.format, "session", e.session)
	return e, nil
}

func (e *Exporter) Path() string    { return e.path }
func (e *Exporter) Format() string  { return e.format }
func (e *Exporter) Session() string { return e.session }

// stamp copies record and adds the session columns. Existing keys win.
func (e *Exporter) stamp(record Record) Record {
	out := make(Record, len(record)+4)
	out[FieldSession] = e.session
	out[FieldHostname] = e.hostname
	out[FieldTimestamp] = e.now().UnixMilli()
	if e.kind != "" {
		out[FieldKind] = e.kind
	}
	for k, v := range record {
		out[k] = v
	}
	return out
}

// Write writes a single record.
func (e *Exporter) Write(record Record) error {
	if err := e.writer.Write(e.stamp(record)); err != nil {
		return err
	}
	e.written++
	return nil
}

// WriteBatch writes multiple records as one batch.
func (e *Exporter) WriteBatch(records []Record) error {
	stamped := make([]Record, len(records))
	for i, r := range records {
		stamped[i] = e.stamp(r)
	}
	if err := e.writer.WriteBatch(stamped); err != nil {
		return err
	}
	e.written += len(records)
	return nil
}

// Flush ensures all buffered data is written.
func (e *Exporter) Flush() error {
	return e.writer.Flush()
}

// Close finalizes and closes the exporter.
func (e *Exporter) Close() error {
	if err := e.writer.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", e.path, err)
	}
	e.logger.Info("results exported", "path", e.path, "format", e.format, "records", e.written)
	return nil
}
