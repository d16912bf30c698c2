package design

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/internal/mathutil"
)

// halfBandAttenuation is the stopband attenuation target for the Kaiser
// window used in half-band design.
const halfBandAttenuation = 80.0

// HalfBandTaps designs a half-band lowpass FIR filter of the given order
// using a Kaiser windowed sinc at a quarter of the sample rate.
//
// The order must have the form 4m+3 (both order and order/2 odd); that is
// what makes the tap structure exploitable by the half-band core: all
// odd-index taps except the center vanish, and the center tap is exactly
// one half. The analytically-zero taps are forced to exact zeros so the
// core may skip them without error.
func HalfBandTaps(order int) ([]float64, error) {
	if order < 7 || order%2 == 0 || (order/2)%2 == 0 {
		return nil, fmt.Errorf("%w: half-band order %d must have the form 4m+3",
			fixdsp.ErrInvalidConfig, order)
	}

	win := KaiserWindow(order, mathutil.KaiserBeta(halfBandAttenuation))
	center := order / 2

	taps := make([]float64, order)
	for n := range taps {
		k := n - center
		switch {
		case k == 0:
			taps[n] = 0.5
		case k%2 == 0:
			// sinc(k/2) vanishes for even non-zero k
			taps[n] = 0
		default:
			taps[n] = 0.5 * sinc(0.5*float64(k)) * win[n]
		}
	}

	return taps, nil
}
