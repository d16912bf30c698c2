package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter/design"
)

func TestNewIIRDefaults(t *testing.T) {
	f, err := NewIIR(IIRConfig{SampleRate: 96000})
	require.NoError(t, err)
	assert.Equal(t, 3, f.Order(), "default order 2 gives 3 coefficients")
}

func TestNewIIRRejectsBadConfig(t *testing.T) {
	_, err := NewIIR(IIRConfig{})
	assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig, "missing sample rate without custom coefficients")

	_, err = NewIIR(IIRConfig{SampleRate: 48000, Order: 3})
	assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig, "odd order")

	_, err = NewIIR(IIRConfig{B: []float64{1, 0}, A: []float64{1}})
	assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig, "mismatched coefficient lengths")

	_, err = NewIIR(IIRConfig{B: []float64{1}, A: []float64{1}})
	assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig, "no recursion")
}

func TestIIROnePoleImpulse(t *testing.T) {
	// y[n] = 0.5·x[n] + 0.5·y[n-1]: geometric impulse response.
	f, err := NewIIR(IIRConfig{
		Format: testFormat,
		B:      []float64{0.5, 0},
		A:      []float64{1, -0.5},
	})
	require.NoError(t, err)

	want := 0.5
	for i := 0; i < 12; i++ {
		f.EnableIn = true
		if i == 0 {
			f.SignalIn = one
		} else {
			f.SignalIn = 0
		}
		f.Tick()
		got := testFormat.Dequantize(f.SignalOut())
		assert.InDelta(t, want, got, 4.0/float64(one), "impulse sample %d", i)
		want *= 0.5
	}
}

func TestIIRTracksFloatReference(t *testing.T) {
	b, a, err := design.Chebyshev1LowPass(2, 1.0, 2000, 48000)
	require.NoError(t, err)

	f, err := NewIIR(IIRConfig{Format: testFormat, B: b, A: a})
	require.NoError(t, err)
	ref := design.NewReferenceIIR(b, a)

	// Recursive rounding noise accumulates; the bound is loose but far
	// below the signal level.
	const tolerance = 1e-3

	phase := 0.0
	for i := 0; i < 2000; i++ {
		x := 0.5 * math.Sin(phase)
		phase += 0.05

		f.EnableIn = true
		f.SignalIn = testFormat.Quantize(x)
		f.Tick()

		want := ref.Process(x)
		got := testFormat.Dequantize(f.SignalOut())
		assert.InDelta(t, want, got, tolerance, "sample %d", i)
	}
}

func TestIIRDesignedLowpassDC(t *testing.T) {
	f, err := NewIIR(IIRConfig{SampleRate: 48000, CutoffFreq: 1000, Order: 2, Format: testFormat})
	require.NoError(t, err)

	var out int64
	for i := 0; i < 4000; i++ {
		f.EnableIn = true
		f.SignalIn = one / 2
		f.Tick()
		out = f.SignalOut()
	}
	// Settles to the input scaled by the near-unity passband gain.
	assert.InDelta(t, 0.5, testFormat.Dequantize(out), 0.1)
}

func TestIIRIgnoresDisabledTicks(t *testing.T) {
	f, err := NewIIR(IIRConfig{Format: testFormat, B: []float64{1, 0}, A: []float64{1, -0.5}})
	require.NoError(t, err)

	f.EnableIn = true
	f.SignalIn = one
	f.Tick()
	settled := f.SignalOut()

	f.EnableIn = false
	for i := 0; i < 10; i++ {
		f.Tick()
	}
	assert.Equal(t, settled, f.SignalOut(), "state must hold while disabled")
}
