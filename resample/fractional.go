package resample

import (
	"fmt"
	"math"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter"
	"github.com/streamdsp/go-fixdsp/stream"
)

// Default resampler parameters.
const (
	defaultFIRPrescale = 4
	defaultFilterOrder = 24
)

// FractionalConfig configures a fractional sample rate converter that
// changes the rate by UpsampleFactor/DownsampleFactor.
type FractionalConfig struct {
	// SampleRate of the input stream in Hz.
	SampleRate int

	// Format is the fixed-point representation of the stream payloads.
	// Zero value defaults to Q(18.18).
	Format fixdsp.Format

	// UpsampleFactor is the zero-stuffing interpolation ratio.
	UpsampleFactor int

	// DownsampleFactor is the output decimation ratio.
	DownsampleFactor int

	// Structure selects the anti-imaging filter structure. The IIR path
	// is experimental; its prescale gain does not fully compensate the
	// zero-stuffing energy loss at all ratios.
	Structure filter.Structure

	// Order of each anti-imaging filter stage. Defaults to 24.
	Order int

	// CutoffFreq of the anti-imaging filter in Hz. Defaults to 45% of the
	// narrower of the input and output Nyquist bands.
	CutoffFreq float64

	// Instances is the number of cascaded anti-imaging stages.
	// Defaults to 2.
	Instances int

	// Prescale is the gain applied to each accepted sample to make up for
	// the energy spread over the stuffed zeros. Defaults to 4 for FIR
	// stages and UpsampleFactor-1 for IIR stages.
	Prescale int64
}

func (c *FractionalConfig) applyDefaults() {
	if c.Format == (fixdsp.Format{}) {
		c.Format = fixdsp.Format{Bitwidth: 18, FractionWidth: 18}
	}
	if c.Order == 0 {
		c.Order = defaultFilterOrder
	}
	if c.CutoffFreq == 0 {
		inRate := float64(c.SampleRate)
		outRate := inRate * float64(c.UpsampleFactor) / float64(c.DownsampleFactor)
		c.CutoffFreq = 0.45 * math.Min(inRate, outRate)
	}
	if c.Prescale == 0 {
		if c.Structure == filter.StructureIIR {
			c.Prescale = int64(c.UpsampleFactor - 1)
		} else {
			c.Prescale = defaultFIRPrescale
		}
	}
}

// headroomBitwidth widens the sample width to the next multiple-of-9
// bit count above it, matching hardware multiplier granularity, so the
// prescaled zero-stuffed signal cannot clip inside the filter.
func headroomBitwidth(bitwidth int) int {
	return ((bitwidth + 7) / 8) * 9
}

// Fractional converts the sample rate of a stream by a rational factor:
// each accepted sample is prescaled and followed by UpsampleFactor-1
// zeros through an anti-imaging lowpass cascade, whose output is queued
// and decimated by DownsampleFactor on the way out.
//
// Ports: In accepts one token per upsampling cycle when the internal
// queue has room; Out presents tokens under standard valid/ready rules.
type Fractional struct {
	In  stream.Port
	Out stream.Port

	upsampleFactor   int
	downsampleFactor int
	prescale         int64

	bank *filter.Bank
	fifo *stream.Queue

	upsampleCounter   int
	downsampleCounter int
}

// NewFractional constructs a fractional resampler.
func NewFractional(cfg FractionalConfig) (*Fractional, error) {
	cfg.applyDefaults()
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d must be positive", fixdsp.ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.UpsampleFactor < 1 || cfg.DownsampleFactor < 1 {
		return nil, fmt.Errorf("%w: resampling ratio %d/%d must have positive terms",
			fixdsp.ErrInvalidConfig, cfg.UpsampleFactor, cfg.DownsampleFactor)
	}
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}

	width := headroomBitwidth(cfg.Format.Bitwidth)
	bankFormat := fixdsp.Format{Bitwidth: width, FractionWidth: width}
	if err := bankFormat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: no headroom format for bitwidth %d", fixdsp.ErrInvalidConfig, cfg.Format.Bitwidth)
	}

	bank, err := filter.NewBank(filter.BankConfig{
		Instances:  cfg.Instances,
		SampleRate: cfg.SampleRate * cfg.UpsampleFactor,
		Format:     bankFormat,
		CutoffFreq: cfg.CutoffFreq,
		Order:      cfg.Order,
		Structure:  cfg.Structure,
		Type:       filter.Lowpass,
	})
	if err != nil {
		return nil, err
	}

	fifo, err := stream.NewQueue(cfg.UpsampleFactor)
	if err != nil {
		return nil, err
	}

	return &Fractional{
		upsampleFactor:   cfg.UpsampleFactor,
		downsampleFactor: cfg.DownsampleFactor,
		prescale:         cfg.Prescale,
		bank:             bank,
		fifo:             fifo,
	}, nil
}

// Tick advances the resampler by one clock.
func (r *Fractional) Tick() {
	// Input side: accept a sample at the start of each upsampling cycle,
	// stuff zeros for the rest of it.
	r.In.Ready = r.upsampleCounter == 0 && r.fifo.CanPush()

	enable := false
	var sample int64
	switch {
	case r.In.Fires():
		sample = r.In.Payload * r.prescale
		enable = true
		r.upsampleCounter = r.upsampleFactor - 1
	case r.upsampleCounter > 0:
		sample = 0
		enable = true
		r.upsampleCounter--
	}

	// The cascade output this tick pairs with the sample entering it.
	if enable && r.fifo.CanPush() {
		r.fifo.Push(r.bank.SignalOut())
	}
	r.bank.EnableIn = enable
	r.bank.SignalIn = sample
	r.bank.Tick()

	// Output side: drain the queue, surfacing every DownsampleFactor-th
	// sample as a token.
	if r.Out.Valid && !r.Out.Ready {
		return
	}
	r.Out.Clear()
	if v, ok := r.fifo.Pop(); ok {
		if r.downsampleCounter == 0 {
			r.Out.Put(stream.Token{Payload: v})
			r.downsampleCounter = r.downsampleFactor - 1
		} else {
			r.downsampleCounter--
		}
	}
}

// Ratio returns the upsample and downsample factors.
func (r *Fractional) Ratio() (up, down int) {
	return r.upsampleFactor, r.downsampleFactor
}
