package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/stream"
)

const (
	testBitwidth   = 16
	testSamplerate = 48000
)

func TestSlices(t *testing.T) {
	assert.Equal(t, 1, Slices(16, 16*testSamplerate, testSamplerate))
	assert.Equal(t, 4, Slices(16, 4*testSamplerate, testSamplerate))
	assert.Equal(t, 8, Slices(15, 2*testSamplerate, testSamplerate))
}

func TestNewStereoMACRejectsBadConfig(t *testing.T) {
	taps := make([][2]int64, 16)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty taps", cfg: Config{Samplerate: testSamplerate, ClockFrequency: 16 * testSamplerate, Bitwidth: testBitwidth}},
		{name: "zero samplerate", cfg: Config{Taps: taps, ClockFrequency: 16 * testSamplerate, Bitwidth: testBitwidth}},
		{name: "clock below samplerate", cfg: Config{Taps: taps, Samplerate: testSamplerate, ClockFrequency: testSamplerate / 2, Bitwidth: testBitwidth}},
		{name: "narrow bitwidth", cfg: Config{Taps: taps, Samplerate: testSamplerate, ClockFrequency: 16 * testSamplerate, Bitwidth: 1}},
		{name: "unknown mode", cfg: Config{Taps: taps, Samplerate: testSamplerate, ClockFrequency: 16 * testSamplerate, Bitwidth: testBitwidth, Mode: Mode(9)}},
		{name: "uneven partition", cfg: Config{Taps: make([][2]int64, 7), Samplerate: testSamplerate, ClockFrequency: 2 * testSamplerate, Bitwidth: testBitwidth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStereoMAC(tt.cfg)
			assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig)
		})
	}
}

// runFrames pushes stereo frames through the engine with an always-ready
// consumer and returns the collected output frames.
func runFrames(t *testing.T, e *StereoMAC, frames [][2]int64) [][2]int64 {
	t.Helper()

	var tokens []stream.Token
	for _, f := range frames {
		tokens = append(tokens,
			stream.Token{Payload: f[0], First: true},
			stream.Token{Payload: f[1], Last: true},
		)
	}

	var out [][2]int64
	var cur [2]int64
	next := 0
	haveLeft := false
	limit := len(frames)*(len(e.taps)+16) + 64
	for tick := 0; tick < limit && len(out) < len(frames); tick++ {
		if next < len(tokens) {
			e.In.Put(tokens[next])
		} else {
			e.In.Valid = false
		}
		e.Out.Ready = true

		if e.Out.Valid {
			if e.Out.First {
				cur[0] = e.Out.Payload
				haveLeft = true
			} else if e.Out.Last {
				require.True(t, haveLeft, "right output before left")
				cur[1] = e.Out.Payload
				out = append(out, cur)
				haveLeft = false
			}
		}

		e.Tick()
		if e.In.Valid && e.In.Ready {
			next++
		}
	}
	require.Len(t, out, len(frames), "engine did not produce all frames in time")
	return out
}

// refConvolve is the direct rendering of the engine's arithmetic without
// the slice partition or the tick schedule.
func refConvolve(frames, taps [][2]int64, mode Mode, bitwidth int) [][2]int64 {
	n := len(taps)
	hl := make([]int64, n)
	hr := make([]int64, n)

	out := make([][2]int64, 0, len(frames))
	for _, f := range frames {
		copy(hl[1:], hl[:n-1])
		copy(hr[1:], hr[:n-1])
		hl[0], hr[0] = f[0], f[1]

		var sl, sr int64
		for k := 0; k < n; k++ {
			l, r := hl[k], hr[k]
			m, b := taps[k][0], taps[k][1]
			switch mode {
			case ModeCrossfeed:
				sl += l*m + r*b
				sr += r*m + l*b
			case ModeStereo:
				sl += l * m
				sr += r * b
			case ModeMono:
				sl += l * m
				sr += r * m
			}
		}
		out = append(out, [2]int64{sl >> uint(bitwidth), sr >> uint(bitwidth)})
	}
	return out
}

func TestStereoMACMonoSingleTap(t *testing.T) {
	const gain = int64(3) << testBitwidth / 4 // 0.75 in Q16
	e, err := NewStereoMAC(Config{
		Taps:           [][2]int64{{gain, 0}},
		Samplerate:     testSamplerate,
		ClockFrequency: 16 * testSamplerate,
		Bitwidth:       testBitwidth,
		Mode:           ModeMono,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, e.SliceCount())

	frames := [][2]int64{{1000, -2000}, {-400, 800}}
	out := runFrames(t, e, frames)

	for i, f := range frames {
		assert.Equal(t, (f[0]*gain)>>testBitwidth, out[i][0], "frame %d left", i)
		assert.Equal(t, (f[1]*gain)>>testBitwidth, out[i][1], "frame %d right", i)
	}
}

func TestStereoMACCrossfeedMatchesReference(t *testing.T) {
	taps := make([][2]int64, 8)
	for i := range taps {
		taps[i] = [2]int64{int64(5000 - 900*i), int64(300 * (i - 3))}
	}
	e, err := NewStereoMAC(Config{
		Taps:           taps,
		Samplerate:     testSamplerate,
		ClockFrequency: 4 * testSamplerate,
		Bitwidth:       testBitwidth,
		Mode:           ModeCrossfeed,
	})
	require.NoError(t, err)

	frames := [][2]int64{{1 << 14, 0}, {0, -1 << 13}, {123, 456}, {-789, 1011}, {0, 0}, {32000, -32000}}
	out := runFrames(t, e, frames)
	want := refConvolve(frames, taps, ModeCrossfeed, testBitwidth)
	assert.Equal(t, want, out)
}

func TestStereoMACStereoMatchesReference(t *testing.T) {
	taps := make([][2]int64, 4)
	for i := range taps {
		taps[i] = [2]int64{int64(1 << (12 - i)), int64(1 << (11 - i))}
	}
	e, err := NewStereoMAC(Config{
		Taps:           taps,
		Samplerate:     testSamplerate,
		ClockFrequency: 4 * testSamplerate,
		Bitwidth:       testBitwidth,
		Mode:           ModeStereo,
	})
	require.NoError(t, err)

	frames := [][2]int64{{100, 200}, {-300, 400}, {500, -600}}
	out := runFrames(t, e, frames)
	want := refConvolve(frames, taps, ModeStereo, testBitwidth)
	assert.Equal(t, want, out)
}

func TestStereoMACSliceCountInvariant(t *testing.T) {
	taps := make([][2]int64, 8)
	for i := range taps {
		taps[i] = [2]int64{int64(4000 - 700*i), int64(150 * i)}
	}
	frames := [][2]int64{{9000, -4000}, {1, 2}, {-3, 4}, {5000, 5000}}

	var results [][][2]int64
	for _, clockMul := range []int{8, 2} {
		e, err := NewStereoMAC(Config{
			Taps:           taps,
			Samplerate:     testSamplerate,
			ClockFrequency: clockMul * testSamplerate,
			Bitwidth:       testBitwidth,
			Mode:           ModeCrossfeed,
		})
		require.NoError(t, err)
		results = append(results, runFrames(t, e, frames))
	}

	// Partitioning the taps across more or fewer MAC units must not
	// change a single output bit.
	assert.Equal(t, results[0], results[1])
}

func TestQuantizeStereoIR(t *testing.T) {
	format := fixdsp.Format{Bitwidth: 18, FractionWidth: 18}
	ir := [][2]float64{{0.5, 0.25}, {-0.25, 0.125}}

	taps, err := QuantizeStereoIR(ir, format)
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{
		{1 << 17, 1 << 16},
		{-(1 << 16), 1 << 15},
	}, taps)

	_, err = QuantizeStereoIR(ir, fixdsp.Format{Bitwidth: 24, FractionWidth: 18})
	assert.ErrorIs(t, err, fixdsp.ErrInvalidFormat)
}
