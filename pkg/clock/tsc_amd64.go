//go:build amd64

package clock

const tscSupported = true

// readTSC is implemented in tsc_amd64.s.
func readTSC() uint64
