package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ToFloat64 converts a record value to float64, returning 0 on failure.
func ToFloat64(v any) float64 {
	f, _ := ToFloat64Ok(v)
	return f
}

// ToFloat64Ok converts a record value to float64, reporting success.
// Strings are parsed so values read back from csv/tsv files chart the same
// way as values from jsonl or parquet.
func ToFloat64Ok(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToUint64 converts a record value to a counter, returning 0 for negative or
// non-numeric input.
func ToUint64(v any) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0
		}
		return u
	}
	f, ok := ToFloat64Ok(v)
	if !ok || f < 0 {
		return 0
	}
	return uint64(f)
}

// ToString converts a record value to string.
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatValue renders a record value for csv/tsv output.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
