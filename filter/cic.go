package filter

import (
	"fmt"
	"math"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// CIC defaults.
const (
	defaultCICBitwidth   = 18
	defaultCICStages     = 4
	defaultCICDecimation = 12

	// maxCICDelayWidth leaves headroom inside int64 accumulators.
	maxCICDelayWidth = 62
)

// CICConfig configures a cascaded integrator-comb decimator.
type CICConfig struct {
	// Bitwidth of the output samples. Defaults to 18.
	Bitwidth int

	// Stages is the number of integrator/comb stage pairs. Defaults to 4.
	Stages int

	// Decimation is the output rate divider. Defaults to 12.
	Decimation int
}

func (c *CICConfig) applyDefaults() {
	if c.Bitwidth == 0 {
		c.Bitwidth = defaultCICBitwidth
	}
	if c.Stages == 0 {
		c.Stages = defaultCICStages
	}
	if c.Decimation == 0 {
		c.Decimation = defaultCICDecimation
	}
}

// delayWidth returns the internal accumulator width needed to keep the
// integrators from overflowing: 1 + ceil(stages·log2(decimation)) bits,
// but never narrower than the sample width.
func (c *CICConfig) delayWidth() int {
	w := 1 + int(math.Ceil(float64(c.Stages)*math.Log2(float64(c.Decimation))))
	if w < c.Bitwidth {
		w = c.Bitwidth
	}
	return w
}

// CIC is a cascaded integrator-comb decimating filter core.
//
// Ports: StrobeIn marks a tick carrying a valid input sample on SignalIn.
// Every input strobe runs the integrator cascade; every Decimation-th
// strobe fires a comb edge, which differentiates the cascade against
// one-decimation-cycle-delayed copies and commits a decimated output one
// tick later, announced by StrobeOut.
type CIC struct {
	StrobeIn bool
	SignalIn int64

	bitwidth   int
	decimation int
	shift      uint

	x  []int64 // integrators, x[0] most upstream
	y  []int64 // comb outputs
	dy []int64 // one-comb-cycle delayed copies

	decimateCounter int
	combEdge        bool
	strobeOut       bool
	out             int64
}

// NewCIC constructs a CIC core, checking the accumulator-width invariant.
func NewCIC(cfg CICConfig) (*CIC, error) {
	cfg.applyDefaults()
	if cfg.Bitwidth < 2 {
		return nil, fmt.Errorf("%w: bitwidth %d must be at least 2", fixdsp.ErrInvalidConfig, cfg.Bitwidth)
	}
	if cfg.Stages < 1 {
		return nil, fmt.Errorf("%w: stage count %d must be positive", fixdsp.ErrInvalidConfig, cfg.Stages)
	}
	if cfg.Decimation < 2 {
		return nil, fmt.Errorf("%w: decimation %d must be at least 2", fixdsp.ErrInvalidConfig, cfg.Decimation)
	}
	width := cfg.delayWidth()
	if width > maxCICDelayWidth {
		return nil, fmt.Errorf("%w: %d stages at decimation %d need %d accumulator bits, max %d",
			fixdsp.ErrInvalidConfig, cfg.Stages, cfg.Decimation, width, maxCICDelayWidth)
	}

	return &CIC{
		bitwidth:   cfg.Bitwidth,
		decimation: cfg.Decimation,
		shift:      uint(width - cfg.Bitwidth),
		x:          make([]int64, cfg.Stages),
		y:          make([]int64, cfg.Stages),
		dy:         make([]int64, cfg.Stages),
	}, nil
}

// Tick advances the core by one clock.
func (c *CIC) Tick() {
	n := len(c.x)

	// All registered reads below see pre-tick state.
	oldLast := c.x[n-1]
	oldCombEdge := c.combEdge
	c.strobeOut = oldCombEdge

	if c.StrobeIn {
		// Integrate: each stage adds the previous stage's old running sum.
		for i := n - 2; i >= 0; i-- {
			c.x[i+1] += c.x[i]
		}
		c.x[0] += c.SignalIn

		if c.decimateCounter < c.decimation-1 {
			c.decimateCounter++
		} else {
			c.decimateCounter = 0
			c.combEdge = true
		}
	}

	if oldCombEdge {
		// Comb: differentiate against the delayed copies, rescale the
		// last stage to the output width.
		c.out = c.y[n-1] >> c.shift
		for i := n - 2; i >= 0; i-- {
			oldYi := c.y[i]
			c.y[i+1] = oldYi - c.dy[i+1]
			c.dy[i+1] = oldYi
		}
		c.y[0] = oldLast - c.dy[0]
		c.dy[0] = oldLast
		c.combEdge = false
	}
}

// SignalOut returns the most recent decimated output sample.
func (c *CIC) SignalOut() int64 { return c.out }

// StrobeOut reports that SignalOut carries a fresh sample this tick.
func (c *CIC) StrobeOut() bool { return c.strobeOut }

// Decimation returns the configured rate divider.
func (c *CIC) Decimation() int { return c.decimation }
