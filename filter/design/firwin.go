package design

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

const (
	minFIRTaps = 3
	maxFIRTaps = 8191
)

func validateFIRParams(numTaps int, cutoffFreq, sampleRate float64) error {
	if numTaps < minFIRTaps || numTaps > maxFIRTaps {
		return fmt.Errorf("%w: filter length %d outside [%d, %d]",
			fixdsp.ErrInvalidConfig, numTaps, minFIRTaps, maxFIRTaps)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %g must be positive", fixdsp.ErrInvalidConfig, sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= sampleRate/2 {
		return fmt.Errorf("%w: cutoff %g Hz outside (0, %g)",
			fixdsp.ErrInvalidConfig, cutoffFreq, sampleRate/2)
	}
	return nil
}

// sinc evaluates the normalized sinc function sin(πx)/(πx).
func sinc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// LowPass designs a Hamming windowed-sinc lowpass FIR filter and
// normalizes it to unity DC gain.
func LowPass(numTaps int, cutoffFreq, sampleRate float64) ([]float64, error) {
	if err := validateFIRParams(numTaps, cutoffFreq, sampleRate); err != nil {
		return nil, err
	}

	fc := cutoffFreq / sampleRate
	center := float64(numTaps-1) / 2

	taps := make([]float64, numTaps)
	for n := range taps {
		taps[n] = 2 * fc * sinc(2*fc*(float64(n)-center))
	}
	window.Hamming(taps)

	// Unity gain at DC.
	f64.Scale(taps, taps, 1/f64.Sum(taps))

	return taps, nil
}

// HighPass designs a Hamming windowed-sinc highpass FIR filter by
// spectral inversion of the matching lowpass, normalized to unity gain
// at Nyquist. The length must be odd; an even-length linear-phase FIR
// has a forced null at Nyquist and cannot realize a highpass response.
func HighPass(numTaps int, cutoffFreq, sampleRate float64) ([]float64, error) {
	if numTaps%2 == 0 {
		return nil, fmt.Errorf("%w: highpass filter length %d must be odd",
			fixdsp.ErrInvalidConfig, numTaps)
	}

	taps, err := LowPass(numTaps, cutoffFreq, sampleRate)
	if err != nil {
		return nil, err
	}

	for n := range taps {
		taps[n] = -taps[n]
	}
	taps[(numTaps-1)/2] += 1.0

	// Unity gain at Nyquist: the alternating-sign sum.
	var nyquistGain float64
	for n, t := range taps {
		if n%2 == 0 {
			nyquistGain += t
		} else {
			nyquistGain -= t
		}
	}
	f64.Scale(taps, taps, 1/nyquistGain)

	return taps, nil
}
