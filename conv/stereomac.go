package conv

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/stream"
)

// Mode selects how the two impulse response columns combine the stereo
// channels. Each tap row holds a main coefficient and a bleed
// coefficient.
type Mode int

const (
	// ModeCrossfeed convolves each channel with the main response and
	// adds the opposite channel convolved with the bleed response.
	ModeCrossfeed Mode = iota

	// ModeStereo convolves the left channel with the main response and
	// the right channel with the bleed response, independently.
	ModeStereo

	// ModeMono convolves both channels with the main response.
	ModeMono
)

// Config configures a StereoMAC engine.
type Config struct {
	// Taps is the stereo impulse response: row i holds the main and
	// bleed coefficients for delay i.
	Taps [][2]int64

	// Samplerate is the stereo frame rate in Hz.
	Samplerate int

	// ClockFrequency is the tick rate in Hz. The ratio of clock to
	// sample rate bounds how many taps one MAC slice can cover per
	// frame, and thereby the slice count.
	ClockFrequency int

	// Bitwidth of samples and coefficients. The convolution sum is
	// rescaled by this width on output.
	Bitwidth int

	// Mode selects the channel combination.
	Mode Mode
}

// engineState enumerates the frame controller states.
type engineState int

const (
	stateIdle engineState = iota
	stateMAC
	stateSum
	stateOutput
)

// StereoMAC convolves a stereo stream with a two-column impulse
// response. Input tokens alternate left (First) and right (Last); for
// every accepted frame the engine runs its MAC slices across the tap
// partition, sums the per-slice accumulators and emits a left and a
// right output token.
//
// The samples-per-slice walk plus memory shift takes tapcount/slices+1
// ticks, so the engine keeps up with the frame rate by construction.
type StereoMAC struct {
	In  stream.Port
	Out stream.Port

	taps            [][2]int64
	bitwidth        int
	mode            Mode
	slices          int
	samplesPerSlice int

	// flat [word][slice] sample memories, index 0 newest
	samples1 []int64
	samples2 []int64

	state          engineState
	set1, set2     bool
	ix             int
	accL, accR     []int64
	sumL, sumR     int64
	outputChannels int
}

// Slices computes how many parallel MAC units a tap count needs at the
// given clock-to-samplerate ratio.
func Slices(tapCount, clockFrequency, samplerate int) int {
	samplesPerSlice := clockFrequency / samplerate
	return (tapCount + samplesPerSlice - 1) / samplesPerSlice
}

// NewStereoMAC constructs a convolution engine, checking that the tap
// count divides evenly across the slice partition.
func NewStereoMAC(cfg Config) (*StereoMAC, error) {
	if len(cfg.Taps) == 0 {
		return nil, fmt.Errorf("%w: impulse response is empty", fixdsp.ErrInvalidConfig)
	}
	if cfg.Samplerate <= 0 || cfg.ClockFrequency <= 0 {
		return nil, fmt.Errorf("%w: clock %d Hz and samplerate %d Hz must be positive",
			fixdsp.ErrInvalidConfig, cfg.ClockFrequency, cfg.Samplerate)
	}
	if cfg.ClockFrequency/cfg.Samplerate < 1 {
		return nil, fmt.Errorf("%w: clock %d Hz is below samplerate %d Hz",
			fixdsp.ErrInvalidConfig, cfg.ClockFrequency, cfg.Samplerate)
	}
	if cfg.Bitwidth < 2 {
		return nil, fmt.Errorf("%w: bitwidth %d must be at least 2", fixdsp.ErrInvalidConfig, cfg.Bitwidth)
	}
	switch cfg.Mode {
	case ModeCrossfeed, ModeStereo, ModeMono:
	default:
		return nil, fmt.Errorf("%w: unknown convolution mode %d", fixdsp.ErrInvalidConfig, cfg.Mode)
	}

	n := len(cfg.Taps)
	slices := Slices(n, cfg.ClockFrequency, cfg.Samplerate)
	if n%slices != 0 {
		return nil, fmt.Errorf("%w: tap count %d does not divide into %d slices",
			fixdsp.ErrInvalidConfig, n, slices)
	}

	taps := make([][2]int64, n)
	copy(taps, cfg.Taps)

	return &StereoMAC{
		taps:            taps,
		bitwidth:        cfg.Bitwidth,
		mode:            cfg.Mode,
		slices:          slices,
		samplesPerSlice: n / slices,
		samples1:        make([]int64, n),
		samples2:        make([]int64, n),
		accL:            make([]int64, slices),
		accR:            make([]int64, slices),
	}, nil
}

// accumulate combines one tap row with the two channel samples at the
// same delay, returning the contributions to the left and right sums.
func (e *StereoMAC) accumulate(left, right, main, bleed int64) (dl, dr int64) {
	switch e.mode {
	case ModeCrossfeed:
		return left*main + right*bleed, right*main + left*bleed
	case ModeStereo:
		return left * main, right * bleed
	default: // ModeMono
		return left * main, right * main
	}
}

// Tick advances the engine by one clock.
func (e *StereoMAC) Tick() {
	switch e.state {
	case stateIdle:
		e.tickIdle()
	case stateMAC:
		e.tickMAC()
	case stateSum:
		e.sumL, e.sumR = 0, 0
		for l := 0; l < e.slices; l++ {
			e.sumL += e.accL[l]
			e.sumR += e.accR[l]
		}
		e.state = stateOutput
	case stateOutput:
		e.tickOutput()
	}
}

func (e *StereoMAC) tickIdle() {
	haveFrame := e.set1 && e.set2
	e.In.Ready = !haveFrame

	if e.In.Fires() {
		// One channel per tick: First tags left, Last tags right. The
		// newest frame lives at delay 0 of the shifted memories.
		if e.In.Last {
			e.samples2[0] = e.In.Payload
			e.set2 = true
		} else {
			e.samples1[0] = e.In.Payload
			e.set1 = true
		}
	}

	if haveFrame {
		e.In.Ready = false
		for l := range e.accL {
			e.accL[l] = 0
			e.accR[l] = 0
		}
		e.ix = 0
		e.state = stateMAC
	}
}

func (e *StereoMAC) tickMAC() {
	if e.ix < e.samplesPerSlice {
		// Every slice consumes one word of its partition per tick.
		for l := 0; l < e.slices; l++ {
			k := e.ix*e.slices + l
			dl, dr := e.accumulate(e.samples1[k], e.samples2[k], e.taps[k][0], e.taps[k][1])
			e.accL[l] += dl
			e.accR[l] += dr
		}
		e.ix++
		return
	}
	// Retire the oldest frame to make room at delay 0.
	n := len(e.samples1)
	for k := n - 1; k > 0; k-- {
		e.samples1[k] = e.samples1[k-1]
		e.samples2[k] = e.samples2[k-1]
	}
	e.state = stateSum
}

func (e *StereoMAC) tickOutput() {
	if e.Out.Fires() {
		e.Out.Clear()
		e.outputChannels++
	}
	if e.outputChannels == 2 {
		e.set1, e.set2 = false, false
		e.ix = 0
		e.outputChannels = 0
		e.state = stateIdle
		return
	}
	if !e.Out.Valid {
		if e.outputChannels == 0 {
			e.Out.Put(stream.Token{Payload: e.sumL >> uint(e.bitwidth), First: true})
		} else {
			e.Out.Put(stream.Token{Payload: e.sumR >> uint(e.bitwidth), Last: true})
		}
	}
}

// Mode returns the configured channel combination.
func (e *StereoMAC) Mode() Mode { return e.mode }

// SliceCount returns the number of parallel MAC units.
func (e *StereoMAC) SliceCount() int { return e.slices }
