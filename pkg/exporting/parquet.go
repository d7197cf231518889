package exporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// ParquetBatchSize is the number of buffered records that triggers a write.
// The schema is the union of keys in the first batch.
const ParquetBatchSize = 1000

func init() {
	Register(&ParquetFormat{})
}

// ParquetFormat handles Parquet files.
type ParquetFormat struct{}

func (f *ParquetFormat) Name() string         { return "parquet" }
func (f *ParquetFormat) Extensions() []string { return []string{".parquet"} }
func (f *ParquetFormat) Reader() Reader       { return &ParquetReader{} }
func (f *ParquetFormat) Writer() Writer       { return &ParquetWriter{} }

// ParquetReader reads flat Parquet files.
type ParquetReader struct {
	file  *os.File
	pfile *parquet.File
}

func (r *ParquetReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	r.file = file
	r.pfile = pf
	return nil
}

func (r *ParquetReader) Read() ([]Record, error) {
	if r.pfile == nil {
		return nil, errors.New("reader not initialized")
	}

	fields := r.pfile.Schema().Fields()
	unsigned := make([]bool, len(fields))
	for i, f := range fields {
		if lt := f.Type().LogicalType(); lt != nil && lt.Integer != nil {
			unsigned[i] = !lt.Integer.IsSigned
		}
	}

	records := make([]Record, 0, r.pfile.NumRows())
	buf := make([]parquet.Row, 128)
	for _, rg := range r.pfile.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				record := make(Record, len(fields))
				for _, v := range row {
					col := v.Column()
					if col < 0 || col >= len(fields) || v.IsNull() {
						continue
					}
					record[fields[col].Name()] = fromParquet(v, unsigned[col])
				}
				records = append(records, record)
			}
			if errors.Is(err, io.EOF) || (err == nil && n == 0) {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
		}
		rows.Close()
	}
	return records, nil
}

func fromParquet(v parquet.Value, unsigned bool) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		if unsigned {
			return v.Uint64()
		}
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func (r *ParquetReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParquetWriter writes Snappy-compressed Parquet files using the Row API.
type ParquetWriter struct {
	path    string
	file    *os.File
	writer  *parquet.Writer
	columns []string
	pending []Record
	mu      sync.Mutex
}

func (w *ParquetWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	w.file = file
	w.pending = make([]Record, 0, ParquetBatchSize)
	return nil
}

func (w *ParquetWriter) initSchema() {
	w.columns = columns(w.pending...)

	group := make(parquet.Group, len(w.columns))
	for _, name := range w.columns {
		group[name] = parquetNode(firstValue(w.pending, name))
	}
	w.writer = parquet.NewWriter(w.file, parquet.NewSchema("record", group),
		parquet.Compression(&parquet.Snappy),
	)
}

func firstValue(records []Record, key string) any {
	for _, r := range records {
		if v, ok := r[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func parquetNode(val any) parquet.Node {
	switch val.(type) {
	case int, int8, int16, int32, int64:
		return parquet.Optional(parquet.Int(64))
	case uint, uint8, uint16, uint32, uint64:
		return parquet.Optional(parquet.Uint(64))
	case float32, float64:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

// toParquet converts val for column col. Group columns are sorted by name,
// matching w.columns.
func toParquet(val any, col int) parquet.Value {
	if val == nil {
		return parquet.NullValue().Level(0, 0, col)
	}

	var v parquet.Value
	switch x := val.(type) {
	case bool:
		v = parquet.BooleanValue(x)
	case int:
		v = parquet.Int64Value(int64(x))
	case int8:
		v = parquet.Int64Value(int64(x))
	case int16:
		v = parquet.Int64Value(int64(x))
	case int32:
		v = parquet.Int64Value(int64(x))
	case int64:
		v = parquet.Int64Value(x)
	case uint:
		v = parquet.Int64Value(int64(x))
	case uint8:
		v = parquet.Int64Value(int64(x))
	case uint16:
		v = parquet.Int64Value(int64(x))
	case uint32:
		v = parquet.Int64Value(int64(x))
	case uint64:
		v = parquet.Int64Value(int64(x))
	case float32:
		v = parquet.DoubleValue(float64(x))
	case float64:
		v = parquet.DoubleValue(x)
	case string:
		v = parquet.ByteArrayValue([]byte(x))
	default:
		v = parquet.ByteArrayValue([]byte(fmt.Sprint(x)))
	}
	return v.Level(0, 1, col)
}

func (w *ParquetWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, record)
	if len(w.pending) >= ParquetBatchSize {
		return w.flushPending()
	}
	return nil
}

func (w *ParquetWriter) WriteBatch(records []Record) error {
	for i, r := range records {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

func (w *ParquetWriter) flushPending() error {
	if len(w.pending) == 0 {
		return nil
	}
	if w.writer == nil {
		w.initSchema()
	}

	rows := make([]parquet.Row, len(w.pending))
	for i, record := range w.pending {
		row := make(parquet.Row, len(w.columns))
		for col, name := range w.columns {
			row[col] = toParquet(record[name], col)
		}
		rows[i] = row
	}
	if _, err := w.writer.WriteRows(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}

	w.pending = w.pending[:0]
	return nil
}

func (w *ParquetWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flushPending(); err != nil {
		return err
	}
	if w.writer != nil {
		return w.writer.Flush()
	}
	return nil
}

func (w *ParquetWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer != nil {
		if err := w.writer.Close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *ParquetWriter) Path() string {
	return w.path
}
