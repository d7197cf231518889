package reptest

// Status is the lifecycle state of a Tester.
type Status int

const (
	Uninit Status = iota
	Testing
	Errored
	Finished
)

func (s Status) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case Testing:
		return "testing"
	case Errored:
		return "errored"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}
