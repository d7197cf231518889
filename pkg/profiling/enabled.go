//go:build !noprofile

package profiling

// Enabled reports whether scopes record timings. Build with -tags noprofile
// to compile them out.
const Enabled = true
