package utils

import (
	"math"
	"math/big"

	"github.com/dustin/go-humanize"
)

const (
	KiB = 1024.0
	MiB = 1024.0 * KiB
	GiB = 1024.0 * MiB
)

// GroupUint formats n with thousands separators.
func GroupUint(n uint64) string {
	if n > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(n))
	}
	return humanize.Comma(int64(n))
}

// Group formats v with thousands separators and at most decimals fractional
// digits. Trailing zeros are dropped.
func Group(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return humanize.Ftoa(v)
	}
	return humanize.CommafWithDigits(v, decimals)
}

// ScaleBytes picks the largest of b, k or m that keeps v above one unit.
func ScaleBytes(v float64) (float64, string) {
	switch {
	case v > MiB:
		return v / MiB, "m"
	case v > KiB:
		return v / KiB, "k"
	default:
		return v, "b"
	}
}

// Throughput returns MiB per second for bytes moved in seconds.
func Throughput(bytes uint64, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / seconds / MiB
}

// Percent returns part as a percentage of total, 0 when total is 0.
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
