package fixdsp

import (
	"fmt"
	"math"
)

// Format limits chosen so that products of a full-scale sample and a
// full-scale coefficient always fit an int64.
const (
	minBitwidth      = 2
	maxBitwidth      = 30
	maxFractionWidth = 32
)

// Sample is a fixed-point signed sample. Its magnitude meaning is defined
// by the Format it was produced under; arithmetic widens to the full int64
// range and rescales by right-shifting FractionWidth bits after a multiply.
type Sample = int64

// Format describes a Q(Bitwidth.FractionWidth) fixed-point representation.
//
// Bitwidth is the width of a sample in bits including the sign bit.
// FractionWidth is the number of fractional bits a coefficient is scaled
// by. Bitwidth must not exceed FractionWidth, otherwise the full-scale
// conversion-error contract of Quantize cannot be met.
type Format struct {
	Bitwidth      int
	FractionWidth int
}

// Validate checks the format invariants.
func (f Format) Validate() error {
	if f.Bitwidth < minBitwidth || f.Bitwidth > maxBitwidth {
		return fmt.Errorf("%w: bitwidth %d out of range [%d, %d]",
			ErrInvalidFormat, f.Bitwidth, minBitwidth, maxBitwidth)
	}
	if f.FractionWidth > maxFractionWidth {
		return fmt.Errorf("%w: fraction width %d exceeds %d",
			ErrInvalidFormat, f.FractionWidth, maxFractionWidth)
	}
	if f.Bitwidth > f.FractionWidth {
		return fmt.Errorf("%w: bitwidth %d must not exceed fraction width %d",
			ErrInvalidFormat, f.Bitwidth, f.FractionWidth)
	}
	return nil
}

// FullScale returns the magnitude of a full-scale sample, 2^(Bitwidth-1).
func (f Format) FullScale() int64 {
	return 1 << (f.Bitwidth - 1)
}

// MaxSample returns the largest representable positive sample value.
func (f Format) MaxSample() int64 {
	return f.FullScale() - 1
}

// Quantize converts a real-valued coefficient to its fixed-point
// representation, round(x * 2^FractionWidth).
func (f Format) Quantize(x float64) int64 {
	return int64(math.Round(x * float64(int64(1)<<f.FractionWidth)))
}

// Dequantize converts a fixed-point coefficient back to a real value.
func (f Format) Dequantize(q int64) float64 {
	return float64(q) / float64(int64(1)<<f.FractionWidth)
}

// conversionError measures how far the quantized coefficient strays from
// the real one when applied to a full-scale sample: the fixed-point
// product is rescaled by the fraction width and compared against the
// exact real-valued product.
func (f Format) conversionError(coeff float64, q int64) float64 {
	fullScale := f.FullScale()
	fpResult := (q * fullScale) >> f.FractionWidth
	return math.Abs(float64(fpResult) - coeff*float64(fullScale))
}

// QuantizeTaps converts a real coefficient vector into fixed-point taps.
//
// For every coefficient the full-scale round-trip error must stay below
// one least-significant unit; a vector violating that bound is rejected
// here, at configuration time, rather than ever being accepted with
// silent inaccuracy.
func (f Format) QuantizeTaps(taps []float64) ([]int64, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(taps) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient vector", ErrInvalidConfig)
	}

	quantized := make([]int64, len(taps))
	for i, c := range taps {
		q := f.Quantize(c)
		if e := f.conversionError(c, q); e >= 1.0 {
			return nil, fmt.Errorf("%w: tap %d (%g): error %g >= 1 LSU in Q(%d.%d)",
				ErrQuantization, i, c, e, f.Bitwidth, f.FractionWidth)
		}
		quantized[i] = q
	}
	return quantized, nil
}
