//go:build noprofile

package profiling

const Enabled = false
