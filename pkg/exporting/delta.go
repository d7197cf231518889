package exporting

import (
	"sort"

	"PerfHarness/pkg/utils"
)

// Metadata columns that are never diffed.
var deltaSkip = map[string]bool{
	FieldSession:   true,
	FieldHostname:  true,
	FieldTimestamp: true,
	FieldKind:      true,
	"frequency":    true,
}

// DeltaRecord diffs the numeric columns of two records describing the same
// benchmark. Each numeric column c yields c (current value), c_delta
// (current - baseline) and c_ratio (current / baseline, when the baseline is
// non-zero). Non-numeric columns are copied from current.
func DeltaRecord(baseline, current Record) Record {
	if baseline == nil {
		return current
	}

	result := make(Record, len(current)*3)
	for key, cur := range current {
		result[key] = cur
		if deltaSkip[key] {
			continue
		}
		base, ok := baseline[key]
		if !ok {
			continue
		}
		b, bok := utils.ToFloat64Ok(base)
		c, cok := utils.ToFloat64Ok(cur)
		if !bok || !cok {
			continue
		}
		result[key+"_delta"] = c - b
		if b != 0 {
			result[key+"_ratio"] = c / b
		}
	}
	return result
}

// DeltaRecords pairs records by the value of key and diffs each pair.
// Records without a baseline partner are returned unchanged. Output order
// follows current.
func DeltaRecords(baseline, current []Record, key string) []Record {
	index := make(map[string]Record, len(baseline))
	for _, r := range baseline {
		index[utils.ToString(r[key])] = r
	}

	out := make([]Record, 0, len(current))
	for _, r := range current {
		out = append(out, DeltaRecord(index[utils.ToString(r[key])], r))
	}
	return out
}

// Unmatched lists key values present in baseline but not in current.
func Unmatched(baseline, current []Record, key string) []string {
	seen := make(map[string]bool, len(current))
	for _, r := range current {
		seen[utils.ToString(r[key])] = true
	}
	var missing []string
	for _, r := range baseline {
		if k := utils.ToString(r[key]); !seen[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
