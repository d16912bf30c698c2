package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/stream"
)

var testFormat = fixdsp.Format{Bitwidth: 18, FractionWidth: 18}

const one = int64(1) << 18

func TestNewFractionalRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  FractionalConfig
	}{
		{name: "zero sample rate", cfg: FractionalConfig{UpsampleFactor: 2, DownsampleFactor: 3}},
		{name: "zero upsample factor", cfg: FractionalConfig{SampleRate: 48000, DownsampleFactor: 3}},
		{name: "zero downsample factor", cfg: FractionalConfig{SampleRate: 48000, UpsampleFactor: 2}},
		{name: "invalid format", cfg: FractionalConfig{
			SampleRate: 48000, UpsampleFactor: 2, DownsampleFactor: 3,
			Format: fixdsp.Format{Bitwidth: 24, FractionWidth: 18},
		}},
		{name: "no headroom format", cfg: FractionalConfig{
			SampleRate: 48000, UpsampleFactor: 2, DownsampleFactor: 3,
			Format: fixdsp.Format{Bitwidth: 30, FractionWidth: 32},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFractional(tt.cfg)
			assert.Error(t, err)
		})
	}
}

// drive feeds samples into the resampler, stalling the consumer every
// readyEvery ticks, and returns the collected output payloads.
func drive(t *testing.T, r *Fractional, samples []int64, readyEvery, drainTicks int) []int64 {
	t.Helper()

	var out []int64
	next := 0
	tick := 0
	for idle := 0; idle < drainTicks; tick++ {
		if next < len(samples) {
			r.In.Put(stream.Token{Payload: samples[next]})
		} else {
			r.In.Valid = false
			idle++
		}
		r.Out.Ready = readyEvery <= 1 || tick%readyEvery == 0

		// A token standing at the output port when the consumer is ready
		// is consumed on this tick.
		if r.Out.Valid && r.Out.Ready {
			out = append(out, r.Out.Payload)
		}
		r.Tick()
		if r.In.Fires() {
			next++
		}
	}
	require.Equal(t, len(samples), next, "all input samples must be accepted")
	return out
}

func TestFractionalTokenRatio(t *testing.T) {
	r, err := NewFractional(FractionalConfig{
		SampleRate:       48000,
		Format:           testFormat,
		UpsampleFactor:   2,
		DownsampleFactor: 3,
	})
	require.NoError(t, err)
	up, down := r.Ratio()
	assert.Equal(t, 2, up)
	assert.Equal(t, 3, down)

	samples := make([]int64, 30)
	out := drive(t, r, samples, 1, 200)

	// 30 inputs spread over 60 filter ticks decimate to 20 outputs.
	assert.Len(t, out, len(samples)*up/down)
}

func TestFractionalUpsampleDC(t *testing.T) {
	r, err := NewFractional(FractionalConfig{
		SampleRate:       48000,
		Format:           testFormat,
		UpsampleFactor:   4,
		DownsampleFactor: 1,
	})
	require.NoError(t, err)

	samples := make([]int64, 100)
	for i := range samples {
		samples[i] = one / 8
	}
	out := drive(t, r, samples, 1, 400)
	require.NotEmpty(t, out)

	// The default prescale of 4 restores the energy the stuffed zeros
	// spread out, so a DC input settles back to its own level.
	settled := out[len(out)-10:]
	for _, v := range settled {
		assert.InDelta(t, 0.125, testFormat.Dequantize(v), 0.01)
	}
}

func TestFractionalBackpressureLosesNothing(t *testing.T) {
	r, err := NewFractional(FractionalConfig{
		SampleRate:       48000,
		Format:           testFormat,
		UpsampleFactor:   1,
		DownsampleFactor: 1,
	})
	require.NoError(t, err)

	samples := make([]int64, 40)
	out := drive(t, r, samples, 3, 600)

	// With a 1/1 ratio the full queue backpressures the input port, so
	// a slow consumer still sees one output per input.
	assert.Len(t, out, len(samples))
}
