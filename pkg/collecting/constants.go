package collecting

const (
	MetricClocks          = "clocks"
	MetricPageFaults      = "page_faults"
	MetricContextSwitches = "context_switches"
)
