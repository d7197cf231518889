package collecting

// Vector holds one value per collector of a Set, in Set order.
type Vector []uint64

// NewVector returns a zeroed vector of n metrics.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Fill sets every slot to v.
func (v Vector) Fill(x uint64) {
	for i := range v {
		v[i] = x
	}
}

// Delta stores end-start per slot into v. Counters wrap.
func (v Vector) Delta(end, start Vector) {
	for i := range v {
		v[i] = end[i] - start[i]
	}
}

// Floats converts the vector for averaging and reporting.
func (v Vector) Floats() []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
