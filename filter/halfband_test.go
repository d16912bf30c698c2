package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/internal/testutil"
)

func TestNewHalfBandRejectsBadOrders(t *testing.T) {
	for _, order := range []int{4, 5, 9, 13, 21} {
		_, err := NewHalfBand(HalfBandConfig{Order: order})
		assert.ErrorIs(t, err, fixdsp.ErrInvalidConfig, "order %d", order)
	}
}

func TestHalfBandDecimatesByTwo(t *testing.T) {
	h, err := NewHalfBand(HalfBandConfig{Format: testFormat})
	require.NoError(t, err)

	input := make([]int64, 64)
	out := testutil.DriveStrobed(h, func(strobe bool, signal int64) {
		h.StrobeIn = strobe
		h.SignalIn = signal
	}, input, 4)

	assert.Len(t, out, len(input)/2, "one output strobe per two input strobes")
}

func TestHalfBandImpulseResponse(t *testing.T) {
	h, err := NewHalfBand(HalfBandConfig{Format: testFormat, Order: 19})
	require.NoError(t, err)
	taps := h.Taps()
	n := len(taps)

	// Feed a unit impulse and read the parallel output after every
	// strobe: sample k shows the response at delay k.
	for k := 0; k < n; k++ {
		h.StrobeIn = true
		if k == 0 {
			h.SignalIn = one
		} else {
			h.SignalIn = 0
		}
		h.Tick()
		h.StrobeIn = false
		h.Tick()

		var want int64
		switch {
		case k == n/2:
			want = one >> 1
		case k%2 == 0:
			want = taps[k]
		}
		assert.Equal(t, want, h.SignalOut(), "impulse response sample %d", k)
	}
}

func TestHalfBandDCGain(t *testing.T) {
	h, err := NewHalfBand(HalfBandConfig{Format: testFormat, Order: 19})
	require.NoError(t, err)

	var out int64
	for i := 0; i < 100; i++ {
		h.StrobeIn = true
		h.SignalIn = one / 2
		h.Tick()
		h.StrobeIn = false
		h.Tick()
		out = h.SignalOut()
	}
	assert.InDelta(t, 0.5, testFormat.Dequantize(out), 1e-3)
}

func TestHalfBandSerialMatchesParallel(t *testing.T) {
	const order = 19
	parallel, err := NewHalfBand(HalfBandConfig{Format: testFormat, Order: order})
	require.NoError(t, err)
	serial, err := NewHalfBand(HalfBandConfig{Format: testFormat, Order: order, MACLoop: true})
	require.NoError(t, err)

	taps := parallel.Taps()
	n := len(taps)
	fw := uint(testFormat.FractionWidth)
	// Load, one accumulate per even tap pair, commit.
	macTicks := n/4 + 3

	samples := []int64{one / 2, -one / 3, one / 5, one, -one, one / 7, 0, one / 2, one / 9, -one / 2}
	hist := make([]int64, n) // mirror of the delay line, index 0 newest
	for k, s := range samples {
		parallel.StrobeIn = true
		parallel.SignalIn = s
		parallel.Tick()
		parallel.StrobeIn = false
		parallel.Tick()
		parallelOut := parallel.SignalOut()

		serial.StrobeIn = true
		serial.SignalIn = s
		serial.Tick()
		serial.StrobeIn = false
		for i := 1; i < macTicks; i++ {
			serial.Tick()
		}

		// The first operand pair is latched before the shift; all later
		// pairs and the center term match the parallel sum over the
		// shifted history.
		serialEdge := hist[0] + hist[n-1]
		copy(hist[1:], hist[:n-1])
		hist[0] = s
		parallelEdge := hist[0] + hist[n-1]

		want := parallelOut - (parallelEdge*taps[0])>>fw + (serialEdge*taps[0])>>fw
		assert.Equal(t, want, serial.SignalOut(), "sample %d", k)
	}
}
