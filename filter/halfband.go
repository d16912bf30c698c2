package filter

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter/design"
)

// defaultHalfBandOrder is 19, the smallest 4m+3 order with a useful
// transition band.
const defaultHalfBandOrder = 19

// HalfBandConfig configures a decimate-by-2 half-band FIR core.
type HalfBandConfig struct {
	// Format is the fixed-point representation. Zero value defaults to
	// Q(18.18).
	Format fixdsp.Format

	// Order is the filter length and must have the form 4m+3.
	// Defaults to 19.
	Order int

	// Taps overrides the built-in Kaiser design with externally computed
	// half-band coefficients (center tap 0.5, odd taps zero).
	Taps []float64

	// MACLoop selects the serial multiply-accumulate controller.
	MACLoop bool
}

func (c *HalfBandConfig) applyDefaults() {
	if c.Format == (fixdsp.Format{}) {
		c.Format = fixdsp.Format{Bitwidth: defaultFormatBitwidth, FractionWidth: defaultFormatFraction}
	}
	if c.Order == 0 {
		c.Order = defaultHalfBandOrder
	}
}

// HalfBand is a symmetric-tap decimate-by-2 FIR core. Tap symmetry and
// the zero odd-index taps of a half-band response cut the multiply count
// to roughly a quarter of a general FIR: each pair of mirrored samples
// shares one multiplier and the center tap degenerates to a right shift.
//
// Ports: StrobeIn marks a tick carrying a valid sample on SignalIn.
// Every second accepted sample raises StrobeOut for one tick.
type HalfBand struct {
	StrobeIn bool
	SignalIn int64

	format  fixdsp.Format
	taps    []int64
	x       *DelayLine
	macLoop bool

	decimateCounter int
	strobeOut       bool

	// serial MAC registers
	state macState
	ix    int
	opA   int64
	opB   int64
	madd  int64
	out   int64
}

// NewHalfBand designs, quantizes and constructs a half-band core.
// Orders not of the form 4m+3 are rejected: the symmetric pairing walks
// even indices only and needs an odd center position.
func NewHalfBand(cfg HalfBandConfig) (*HalfBand, error) {
	cfg.applyDefaults()
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}
	if cfg.Order%2 == 0 || (cfg.Order/2)%2 == 0 {
		return nil, fmt.Errorf("%w: half-band order %d must have the form 4m+3",
			fixdsp.ErrInvalidConfig, cfg.Order)
	}

	taps := cfg.Taps
	if taps == nil {
		var err error
		taps, err = design.HalfBandTaps(cfg.Order)
		if err != nil {
			return nil, err
		}
	}
	if len(taps) != cfg.Order {
		return nil, fmt.Errorf("%w: got %d taps for order %d", fixdsp.ErrInvalidConfig, len(taps), cfg.Order)
	}

	quantized, err := cfg.Format.QuantizeTaps(taps)
	if err != nil {
		return nil, err
	}

	x, err := NewDelayLine(cfg.Order)
	if err != nil {
		return nil, err
	}

	return &HalfBand{
		format:  cfg.Format,
		taps:    quantized,
		x:       x,
		macLoop: cfg.MACLoop,
	}, nil
}

// Tick advances the core by one clock: the serial controller steps
// first, so an operand pair latched on a strobed tick still sees the
// history as it was before that tick's shift. Afterwards an input strobe
// shifts the delay line and toggles the decimation counter.
func (h *HalfBand) Tick() {
	if h.macLoop {
		h.tickMAC()
	}

	strobeOutNext := h.strobeOut
	if h.StrobeIn {
		h.x.Shift(h.SignalIn)
		if h.decimateCounter < 1 {
			h.decimateCounter++
		} else {
			h.decimateCounter = 0
			strobeOutNext = true
		}
	}
	if h.strobeOut {
		strobeOutNext = false
	}
	h.strobeOut = strobeOutNext
}

func (h *HalfBand) tickMAC() {
	n := len(h.taps)
	switch h.state {
	case macIdle:
		if h.StrobeIn {
			h.ix = 2
			h.opA = h.x.At(0) + h.x.At(n-1)
			h.opB = h.taps[0]
			h.madd = 0
			h.state = macRun
		}
	case macRun:
		h.madd += (h.opA * h.opB) >> h.format.FractionWidth
		if h.ix > n/2 {
			h.state = macCommit
		} else {
			h.opA = h.x.At(h.ix) + h.x.At(n-1-h.ix)
			h.opB = h.taps[h.ix]
			h.ix += 2
		}
	case macCommit:
		h.out = h.madd + (h.x.At(n/2) >> 1)
		h.state = macIdle
	}
}

// SignalOut returns the filter output. In parallel mode it folds each
// mirrored sample pair onto its shared even-index tap and adds the
// half-gain center sample.
func (h *HalfBand) SignalOut() int64 {
	if h.macLoop {
		return h.out
	}
	n := len(h.taps)
	sum := h.x.At(n/2) >> 1
	for i := 0; i <= n/4; i++ {
		sum += ((h.x.At(2*i) + h.x.At(n-1-2*i)) * h.taps[2*i]) >> h.format.FractionWidth
	}
	return sum
}

// StrobeOut reports that SignalOut carries a fresh decimated sample.
func (h *HalfBand) StrobeOut() bool { return h.strobeOut }

// Taps returns a copy of the quantized coefficient vector.
func (h *HalfBand) Taps() []int64 {
	out := make([]int64, len(h.taps))
	copy(out, h.taps)
	return out
}
