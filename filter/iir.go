package filter

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter/design"
)

// defaultRippleDB is the allowed passband ripple of the built-in
// Chebyshev design.
const defaultRippleDB = 1.0

// IIRConfig configures a fixed-point IIR filter core.
type IIRConfig struct {
	// SampleRate of the input stream in Hz. Required unless B and A are set.
	SampleRate int

	// Format is the fixed-point representation. Zero value defaults to
	// Q(18.18).
	Format fixdsp.Format

	// CutoffFreq in Hz for the designed response. Defaults to 20 kHz.
	CutoffFreq float64

	// Order of the designed Chebyshev Type I filter; must be even.
	// Defaults to 2.
	Order int

	// Type selects lowpass or highpass design.
	Type Type

	// RippleDB is the allowed passband ripple of the Chebyshev design.
	// Defaults to 1 dB.
	RippleDB float64

	// B and A override the built-in design with an externally computed
	// transfer function. A must include the leading 1 coefficient and
	// len(B) must equal len(A).
	B, A []float64
}

func (c *IIRConfig) applyDefaults() {
	if c.Format == (fixdsp.Format{}) {
		c.Format = fixdsp.Format{Bitwidth: defaultFormatBitwidth, FractionWidth: defaultFormatFraction}
	}
	if c.CutoffFreq == 0 {
		c.CutoffFreq = defaultCutoffFreq
	}
	if c.Order == 0 {
		c.Order = defaultIIROrder
	}
	if c.RippleDB == 0 {
		c.RippleDB = defaultRippleDB
	}
}

// IIR is a direct-form fixed-point recursive filter core: a feed-forward
// stage over the input history combined with a feedback accumulation over
// past outputs. The output is combinational; each enabled tick shifts the
// new input into x and the previous output into y.
type IIR struct {
	EnableIn bool
	SignalIn int64

	format fixdsp.Format
	b      []int64 // feed-forward coefficients
	a      []int64 // feedback coefficients, leading 1 dropped
	x      *DelayLine
	y      *DelayLine
}

// NewIIR designs, quantizes and constructs an IIR core.
func NewIIR(cfg IIRConfig) (*IIR, error) {
	cfg.applyDefaults()
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}

	b, a := cfg.B, cfg.A
	if b == nil && a == nil {
		if cfg.SampleRate <= 0 {
			return nil, fmt.Errorf("%w: sample rate %d must be positive to design coefficients",
				fixdsp.ErrInvalidConfig, cfg.SampleRate)
		}
		var err error
		switch cfg.Type {
		case Lowpass:
			b, a, err = design.Chebyshev1LowPass(cfg.Order, cfg.RippleDB, cfg.CutoffFreq, float64(cfg.SampleRate))
		case Highpass:
			b, a, err = design.Chebyshev1HighPass(cfg.Order, cfg.RippleDB, cfg.CutoffFreq, float64(cfg.SampleRate))
		default:
			err = fmt.Errorf("%w: unknown filter type %d", fixdsp.ErrInvalidConfig, cfg.Type)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(b) != len(a) {
		return nil, fmt.Errorf("%w: coefficient vectors must match: len(b)=%d len(a)=%d",
			fixdsp.ErrInvalidConfig, len(b), len(a))
	}
	if len(a) < 2 {
		return nil, fmt.Errorf("%w: recursive filter needs at least order 1", fixdsp.ErrInvalidConfig)
	}

	bFP, err := cfg.Format.QuantizeTaps(b)
	if err != nil {
		return nil, err
	}
	aFP, err := cfg.Format.QuantizeTaps(a)
	if err != nil {
		return nil, err
	}

	n := len(bFP)
	x, err := NewDelayLine(n)
	if err != nil {
		return nil, err
	}
	y, err := NewDelayLine(n - 1)
	if err != nil {
		return nil, err
	}

	return &IIR{
		format: cfg.Format,
		b:      bFP,
		// the design normalizes the leading recursive coefficient to 1.0,
		// which the difference equation does not need
		a: aFP[1:],
		x: x,
		y: y,
	}, nil
}

// SignalOut returns the combinational filter output,
// Σ(x[i]·b[i])>>frac − Σ(y[i]·a[i+1])>>frac.
func (f *IIR) SignalOut() int64 {
	var sum int64
	for i, c := range f.b {
		sum += (f.x.At(i) * c) >> f.format.FractionWidth
	}
	for i, c := range f.a {
		sum -= (f.y.At(i) * c) >> f.format.FractionWidth
	}
	return sum
}

// Tick advances the core by one clock. On an enabled tick the input
// history shifts in SignalIn and the output history shifts in the output
// value the core was showing before the shift.
func (f *IIR) Tick() {
	if !f.EnableIn {
		return
	}
	out := f.SignalOut()
	f.x.Shift(f.SignalIn)
	f.y.Shift(out)
}

// Format returns the core's fixed-point format.
func (f *IIR) Format() fixdsp.Format { return f.format }

// Order returns the feed-forward length (filter order + 1).
func (f *IIR) Order() int { return len(f.b) }

func (f *IIR) setInput(enable bool, signal int64) {
	f.EnableIn = enable
	f.SignalIn = signal
}
