package profiling

// Scope is one open occurrence of a label. The zero Scope closes as a no-op.
type Scope struct {
	p         *Profiler
	label     Label
	parent    Label
	start     uint64
	inclusive uint64
}

// Close records the occurrence. The anchor's inclusive time is rebuilt from
// the value it had at Enter, so a recursive re-entry of the same label is not
// counted twice. The elapsed span is moved out of the parent's exclusive time.
func (s Scope) Close() {
	if s.p == nil {
		return
	}
	elapsed := s.p.src.Now() - s.start
	s.p.mustBeActive()

	a := &s.p.anchors[s.label]
	a.Count++
	a.Inclusive = s.inclusive + elapsed
	a.Exclusive += elapsed
	s.p.anchors[s.parent].Exclusive -= elapsed
	s.p.current = s.parent
}
