package probing

import (
	"slices"
	"strings"
)

const procCPUInfo = "/proc/cpuinfo"

// CPUInfo describes the processor from /proc/cpuinfo.
type CPUInfo struct {
	Model string
	Flags []string
}

// ReadCPUInfo parses /proc/cpuinfo. Entries repeat per processor; the last
// processor's values are returned.
func ReadCPUInfo() (CPUInfo, error) {
	return readCPUInfo(procCPUInfo)
}

func readCPUInfo(path string) (CPUInfo, error) {
	kv, err := FileKV(path, ":")
	if err != nil {
		return CPUInfo{}, err
	}
	return CPUInfo{
		Model: kv["model name"],
		Flags: strings.Fields(kv["flags"]),
	}, nil
}

// HasFlag reports whether the CPU advertises flag.
func (c CPUInfo) HasFlag(flag string) bool {
	return slices.Contains(c.Flags, flag)
}

// InvariantTSC reports whether the time-stamp counter ticks at a constant
// rate across frequency changes and idle states.
func (c CPUInfo) InvariantTSC() bool {
	return c.HasFlag("constant_tsc") && c.HasFlag("nonstop_tsc")
}
