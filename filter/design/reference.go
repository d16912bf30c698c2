package design

import "github.com/tphakala/simd/f64"

// ReferenceFIR is the exact float64 rendering of the fixed-point FIR
// core's semantics. The impulse-response tests compare the quantized core
// against this filter to bound the fixed-point error.
type ReferenceFIR struct {
	taps []float64
	hist []float64
}

// NewReferenceFIR creates a float64 FIR over the given taps.
func NewReferenceFIR(taps []float64) *ReferenceFIR {
	t := make([]float64, len(taps))
	copy(t, taps)
	return &ReferenceFIR{
		taps: t,
		hist: make([]float64, len(taps)),
	}
}

// Process accepts one input sample and returns the filter output with the
// sample already shifted into the history, i.e. the output the
// fixed-point core shows one tick after accepting the same sample.
func (r *ReferenceFIR) Process(x float64) float64 {
	copy(r.hist[1:], r.hist[:len(r.hist)-1])
	r.hist[0] = x
	return f64.DotProductUnsafe(r.hist, r.taps)
}

// Reset clears the sample history.
func (r *ReferenceFIR) Reset() {
	for i := range r.hist {
		r.hist[i] = 0
	}
}

// ReferenceIIR is the float64 rendering of the fixed-point IIR core:
// a direct-form recursive filter with the leading denominator
// coefficient normalized away.
type ReferenceIIR struct {
	b []float64 // feed-forward
	a []float64 // feedback, excluding the leading 1
	x []float64
	y []float64
}

// NewReferenceIIR creates a float64 IIR from direct-form polynomials
// (b, a), where a includes the leading 1 coefficient as produced by the
// design functions.
func NewReferenceIIR(b, a []float64) *ReferenceIIR {
	r := &ReferenceIIR{
		b: make([]float64, len(b)),
		a: make([]float64, len(a)-1),
		x: make([]float64, len(b)),
		y: make([]float64, len(a)-1),
	}
	copy(r.b, b)
	copy(r.a, a[1:])
	return r
}

// Process accepts one input sample and returns the filter output after
// shifting the histories, mirroring the fixed-point core's timing.
func (r *ReferenceIIR) Process(x float64) float64 {
	copy(r.x[1:], r.x[:len(r.x)-1])
	r.x[0] = x

	out := f64.DotProductUnsafe(r.x, r.b) - f64.DotProductUnsafe(r.y, r.a)

	copy(r.y[1:], r.y[:len(r.y)-1])
	if len(r.y) > 0 {
		r.y[0] = out
	}
	return out
}

// Reset clears both histories.
func (r *ReferenceIIR) Reset() {
	for i := range r.x {
		r.x[i] = 0
	}
	for i := range r.y {
		r.y[i] = 0
	}
}
