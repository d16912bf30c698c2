package design

import (
	"math"

	"github.com/streamdsp/go-fixdsp/internal/mathutil"
)

// KaiserWindow generates a Kaiser window of the given length and β.
//
// The Kaiser window trades main-lobe width against sidelobe level; β is
// usually derived from a stopband attenuation via mathutil.KaiserBeta.
// The window is symmetric: w[i] == w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	win := make([]float64, length)
	if length == 1 {
		win[0] = 1.0
		return win
	}

	// w[n] = I₀(β·sqrt(1 - ((n-α)/α)²)) / I₀(β), α = (N-1)/2
	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)

	for n := range win {
		x := (float64(n) - alpha) / alpha
		win[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}

	return win
}
