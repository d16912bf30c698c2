package design

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FrequencyResponse evaluates the frequency response of an FIR tap
// vector over an numPoints-point real transform, returning the
// numPoints/2+1 bins from DC to Nyquist. The taps are zero padded to
// numPoints, so numPoints controls the frequency resolution.
func FrequencyResponse(taps []float64, numPoints int) []complex128 {
	if numPoints < len(taps) {
		numPoints = len(taps)
	}

	padded := make([]float64, numPoints)
	copy(padded, taps)

	fft := fourier.NewFFT(numPoints)
	return fft.Coefficients(nil, padded)
}

// MagnitudeDB converts a frequency response to magnitudes in decibels.
// Bins below the numeric floor are clamped to floorDB.
func MagnitudeDB(response []complex128, floorDB float64) []float64 {
	out := make([]float64, len(response))
	for i, c := range response {
		mag := cmplx.Abs(c)
		if mag <= 0 {
			out[i] = floorDB
			continue
		}
		db := 20 * math.Log10(mag)
		if db < floorDB {
			db = floorDB
		}
		out[i] = db
	}
	return out
}
