package filter

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter/design"
)

// Type selects the response shape of a designed filter.
type Type int

const (
	// Lowpass passes frequencies below the cutoff.
	Lowpass Type = iota

	// Highpass passes frequencies above the cutoff.
	Highpass
)

// Default filter parameters, applied when the config leaves them zero.
const (
	defaultFormatBitwidth = 18
	defaultFormatFraction = 18
	defaultCutoffFreq     = 20000.0
	defaultFIROrder       = 24
	defaultIIROrder       = 2
)

// macState enumerates the serial multiply-accumulate controller states.
type macState int

const (
	macIdle macState = iota
	macRun
	macCommit
)

// FIRConfig configures a fixed-point FIR filter core.
type FIRConfig struct {
	// SampleRate of the input stream in Hz. Required unless Taps is set.
	SampleRate int

	// Format is the fixed-point representation. Zero value defaults to
	// Q(18.18).
	Format fixdsp.Format

	// CutoffFreq in Hz for the designed response. Defaults to 20 kHz.
	CutoffFreq float64

	// Order is the number of taps of the designed filter. Defaults to 24.
	Order int

	// Type selects lowpass or highpass design.
	Type Type

	// Taps overrides the built-in design with externally computed
	// real-valued coefficients (e.g. an equiripple design).
	Taps []float64

	// MACLoop selects the serial multiply-accumulate controller, which
	// uses a single multiplier over n+2 ticks per sample instead of one
	// tick with n parallel multipliers.
	MACLoop bool
}

func (c *FIRConfig) applyDefaults() {
	if c.Format == (fixdsp.Format{}) {
		c.Format = fixdsp.Format{Bitwidth: defaultFormatBitwidth, FractionWidth: defaultFormatFraction}
	}
	if c.CutoffFreq == 0 {
		c.CutoffFreq = defaultCutoffFreq
	}
	if c.Order == 0 {
		c.Order = defaultFIROrder
	}
}

// FIR is a direct-form fixed-point FIR filter core.
//
// Ports: EnableIn gates sample acceptance; SignalIn is the input sample.
// On every tick with EnableIn set, the delay line shifts in SignalIn,
// independent of the MAC mode. In parallel mode SignalOut is
// combinational over the delay line; in serial mode it is the registered
// result of the most recently completed MAC pass.
type FIR struct {
	EnableIn bool
	SignalIn int64

	format  fixdsp.Format
	taps    []int64
	x       *DelayLine
	macLoop bool

	// serial MAC registers
	state macState
	ix    int
	opA   int64
	opB   int64
	madd  int64
	out   int64
}

// NewFIR designs, quantizes and constructs an FIR core. All invariant
// violations are reported here; streaming never fails.
func NewFIR(cfg FIRConfig) (*FIR, error) {
	cfg.applyDefaults()
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}

	taps := cfg.Taps
	if taps == nil {
		if cfg.SampleRate <= 0 {
			return nil, fmt.Errorf("%w: sample rate %d must be positive to design taps",
				fixdsp.ErrInvalidConfig, cfg.SampleRate)
		}
		var err error
		switch cfg.Type {
		case Lowpass:
			taps, err = design.LowPass(cfg.Order, cfg.CutoffFreq, float64(cfg.SampleRate))
		case Highpass:
			taps, err = design.HighPass(cfg.Order, cfg.CutoffFreq, float64(cfg.SampleRate))
		default:
			err = fmt.Errorf("%w: unknown filter type %d", fixdsp.ErrInvalidConfig, cfg.Type)
		}
		if err != nil {
			return nil, err
		}
	}

	quantized, err := cfg.Format.QuantizeTaps(taps)
	if err != nil {
		return nil, err
	}

	x, err := NewDelayLine(len(quantized))
	if err != nil {
		return nil, err
	}

	return &FIR{
		format:  cfg.Format,
		taps:    quantized,
		x:       x,
		macLoop: cfg.MACLoop,
	}, nil
}

// Tick advances the core by one clock: the serial MAC controller steps
// first, so an operand latched on an enabled tick still sees the history
// as it was before that tick's shift.
func (f *FIR) Tick() {
	if f.macLoop {
		f.tickMAC()
	}
	if f.EnableIn {
		f.x.Shift(f.SignalIn)
	}
}

func (f *FIR) tickMAC() {
	n := len(f.taps)
	switch f.state {
	case macIdle:
		if f.EnableIn {
			f.ix = 1
			f.opA = f.x.At(0)
			f.opB = f.taps[0]
			f.madd = 0
			f.state = macRun
		}
	case macRun:
		f.madd += (f.opA * f.opB) >> f.format.FractionWidth
		if f.ix == n {
			f.state = macCommit
		} else {
			f.opA = f.x.At(f.ix)
			f.opB = f.taps[f.ix]
			f.ix++
		}
	case macCommit:
		f.out = f.madd
		f.state = macIdle
	}
}

// SignalOut returns the filter output. In parallel mode it is recomputed
// combinationally from the delay line on every call.
func (f *FIR) SignalOut() int64 {
	if f.macLoop {
		return f.out
	}
	var sum int64
	for i, t := range f.taps {
		sum += (f.x.At(i) * t) >> f.format.FractionWidth
	}
	return sum
}

// Taps returns a copy of the quantized coefficient vector.
func (f *FIR) Taps() []int64 {
	out := make([]int64, len(f.taps))
	copy(out, f.taps)
	return out
}

// Format returns the core's fixed-point format.
func (f *FIR) Format() fixdsp.Format { return f.format }

// Order returns the number of taps.
func (f *FIR) Order() int { return len(f.taps) }

func (f *FIR) setInput(enable bool, signal int64) {
	f.EnableIn = enable
	f.SignalIn = signal
}
