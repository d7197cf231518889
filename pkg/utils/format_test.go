package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupUint(t *testing.T) {
	assert.Equal(t, "0", GroupUint(0))
	assert.Equal(t, "100", GroupUint(100))
	assert.Equal(t, "1,000", GroupUint(1000))
	assert.Equal(t, "123,001,100", GroupUint(123001100))
	assert.Equal(t, "18,446,744,073,709,551,615", GroupUint(math.MaxUint64))
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "1,000", Group(1000, 3))
	assert.Equal(t, "-1,000", Group(-1000, 3))
	assert.Equal(t, "1,000.5", Group(1000.5, 3))
	assert.Equal(t, "100.523", Group(100.5234, 3))
}

func TestScaleBytes(t *testing.T) {
	v, unit := ScaleBytes(512)
	assert.Equal(t, 512.0, v)
	assert.Equal(t, "b", unit)

	v, unit = ScaleBytes(4096)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, "k", unit)

	v, unit = ScaleBytes(3 * MiB)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, "m", unit)

	// Exactly one unit stays in the smaller unit.
	_, unit = ScaleBytes(KiB)
	assert.Equal(t, "b", unit)
}

func TestThroughputAndPercent(t *testing.T) {
	assert.Equal(t, 2.0, Throughput(2*MiB, 1))
	assert.Equal(t, 0.0, Throughput(2*MiB, 0))
	assert.Equal(t, 25.0, Percent(1, 4))
	assert.Equal(t, 0.0, Percent(1, 0))
}
