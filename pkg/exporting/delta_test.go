package exporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaRecord(t *testing.T) {
	base := Record{"name": "write", "best_ms": 2.0, "trials": int64(10), FieldTimestamp: int64(1), "zero": 0.0}
	cur := Record{"name": "write", "best_ms": 1.0, "trials": uint64(15), FieldTimestamp: int64(9), "zero": 3.0, "new": 1.0}

	d := DeltaRecord(base, cur)
	assert.Equal(t, "write", d["name"])
	assert.Equal(t, -1.0, d["best_ms_delta"])
	assert.Equal(t, 0.5, d["best_ms_ratio"])
	assert.Equal(t, 5.0, d["trials_delta"])
	assert.Equal(t, 3.0, d["zero_delta"])
	assert.NotContains(t, d, "zero_ratio")
	assert.NotContains(t, d, FieldTimestamp+"_delta")
	assert.NotContains(t, d, "new_delta")
	assert.NotContains(t, d, "name_delta")

	assert.Equal(t, cur, DeltaRecord(nil, cur))
}

func TestDeltaRecords(t *testing.T) {
	base := []Record{{"name": "a", "v": 1.0}, {"name": "gone", "v": 1.0}}
	cur := []Record{{"name": "a", "v": 3.0}, {"name": "fresh", "v": 2.0}}

	out := DeltaRecords(base, cur, "name")
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0]["v_delta"])
	assert.NotContains(t, out[1], "v_delta")
	assert.Equal(t, []string{"gone"}, Unmatched(base, cur, "name"))
}
