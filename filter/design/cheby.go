package design

import (
	"fmt"
	"math"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// biquadSection is one second-order section of an IIR cascade. The
// feedback terms are stored in recursion form,
//
//	y[n] = b0·x[n] + b1·x[n-1] + b2·x[n-2] + a1·y[n-1] + a2·y[n-2]
//
// so the section's transfer function denominator is 1 - a1·z⁻¹ - a2·z⁻².
type biquadSection struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// maxIIROrder keeps direct-form polynomial expansion numerically sane;
// higher orders should be run as separate filterbank stages instead.
const maxIIROrder = 8

// Chebyshev1LowPass designs a Chebyshev Type I lowpass transfer function
// and returns the direct-form numerator and denominator polynomials
// (b, a), with a[0] == 1. len(b) == len(a) == order+1 for even orders.
//
// rippleDB is the allowed passband ripple in decibels.
func Chebyshev1LowPass(order int, rippleDB, cutoffFreq, sampleRate float64) (b, a []float64, err error) {
	sections, err := chebyshev1Sections(order, rippleDB, cutoffFreq, sampleRate, false)
	if err != nil {
		return nil, nil, err
	}
	b, a = expandSections(sections)
	return b, a, nil
}

// Chebyshev1HighPass is the highpass counterpart of Chebyshev1LowPass.
func Chebyshev1HighPass(order int, rippleDB, cutoffFreq, sampleRate float64) (b, a []float64, err error) {
	sections, err := chebyshev1Sections(order, rippleDB, cutoffFreq, sampleRate, true)
	if err != nil {
		return nil, nil, err
	}
	b, a = expandSections(sections)
	return b, a, nil
}

// chebyshev1Sections computes the biquad cascade via the bilinear
// transform of the analog Chebyshev Type I prototype.
func chebyshev1Sections(order int, rippleDB, cutoffFreq, sampleRate float64, highpass bool) ([]biquadSection, error) {
	if order < 2 || order > maxIIROrder || order%2 != 0 {
		return nil, fmt.Errorf("%w: Chebyshev order %d must be even and within [2, %d]",
			fixdsp.ErrInvalidConfig, order, maxIIROrder)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %g must be positive", fixdsp.ErrInvalidConfig, sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= sampleRate/2 {
		return nil, fmt.Errorf("%w: cutoff %g Hz outside (0, %g)",
			fixdsp.ErrInvalidConfig, cutoffFreq, sampleRate/2)
	}
	if rippleDB <= 0 {
		rippleDB = 1.0
	}

	// Frequency warping factor of the bilinear transform.
	k := math.Tan(math.Pi * cutoffFreq / sampleRate)
	k2 := k * k

	// Ripple factors: r0 = cosh²(asinh(ripple)/order), r1 = sinh(...).
	t := math.Asinh(rippleDB) / float64(order)
	r1 := math.Sinh(t)
	r0 := math.Cosh(t)
	r0 *= r0

	sections := make([]biquadSection, 0, order/2)
	for i := order/2 - 1; i >= 0; i-- {
		if highpass {
			s := math.Sin(float64(2*i+1) * math.Pi / (4 * float64(order)))
			tt := s * s
			pa := 1 / (r0 + 4*tt - 4*tt*tt - 1)
			pb := 2 * k * pa * r1 * (1 - 2*tt)
			norm := 1 / (pb + 1 + pa*k2)
			sections = append(sections, biquadSection{
				b0: norm,
				b1: -2 * norm,
				b2: norm,
				a1: 2 * (1 - pa*k2) * norm,
				a2: (pb - 1 - pa*k2) * norm,
			})
			continue
		}

		tt := math.Cos(float64(2*i+1) * math.Pi / (2 * float64(order)))
		pb := 1 / (r0 - tt*tt)
		pa := k * 2 * pb * r1 * tt
		norm := 1 / (pa + pb + k2)
		sections = append(sections, biquadSection{
			b0: k2 * norm,
			b1: 2 * k2 * norm,
			b2: k2 * norm,
			a1: 2 * (pb - k2) * norm,
			a2: (pa - k2 - pb) * norm,
		})
	}
	return sections, nil
}

// expandSections multiplies the cascade's section polynomials into a
// single direct-form transfer function, converting the recursion-form
// feedback terms into denominator coefficients.
func expandSections(sections []biquadSection) (b, a []float64) {
	b = []float64{1}
	a = []float64{1}
	for _, s := range sections {
		b = polyMul(b, []float64{s.b0, s.b1, s.b2})
		a = polyMul(a, []float64{1, -s.a1, -s.a2})
	}
	return b, a
}

// polyMul convolves two polynomial coefficient vectors.
func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, pv := range p {
		for j, qv := range q {
			out[i+j] += pv * qv
		}
	}
	return out
}
