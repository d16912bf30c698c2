// Package testutil provides shared assertions and stream-driving
// helpers for the fixed-point core tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// Default tolerances for the test suites.
const (
	DefaultTolerance = 1e-10
	DBTolerance      = 0.01
)

// AssertSymmetric verifies that a coefficient vector is symmetric
// (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertDCGain verifies that the coefficient sum equals the expected DC
// gain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, expectedGain, sum, tolerance,
		"DC gain = %f, want %f", sum, expectedGain)
}

// AssertCenterIsMax verifies that the center element is the maximum
// value, as in any symmetric lowpass prototype.
func AssertCenterIsMax(t *testing.T, s []float64) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	centerIdx := len(s) / 2
	centerValue := s[centerIdx]
	for i, v := range s {
		if v > centerValue {
			return assert.Fail(t, "center is not max",
				"s[%d]=%f > center s[%d]=%f", i, v, centerIdx, centerValue)
		}
	}
	return true
}

// AssertCloseFP verifies that a fixed-point value matches a real-valued
// reference within tol least significant units of the format.
func AssertCloseFP(t *testing.T, format fixdsp.Format, want float64, got int64, tol int64) bool {
	t.Helper()
	ref := format.Quantize(want)
	diff := got - ref
	if diff < 0 {
		diff = -diff
	}
	return assert.LessOrEqual(t, diff, tol,
		"fixed-point value %d differs from reference %d (%f) by %d LSU, tol %d",
		got, ref, want, diff, tol)
}

// Quantize converts a real value through the format, failing the test on
// a quantization error instead of returning one.
func Quantize(t *testing.T, format fixdsp.Format, v float64) int64 {
	t.Helper()
	require.NoError(t, format.Validate())
	return format.Quantize(v)
}

// Impulse returns a fixed-point unit impulse of length n: full scale
// followed by zeros.
func Impulse(format fixdsp.Format, n int) []int64 {
	out := make([]int64, n)
	out[0] = format.FullScale()
	return out
}

// strobeCore is the surface shared by the strobe-driven decimating cores.
type strobeCore interface {
	Tick()
	SignalOut() int64
	StrobeOut() bool
}

// DriveStrobed feeds samples into a strobe-driven core, one sample per
// tick followed by idle ticks, and collects every output announced by
// the core's output strobe. flush idle ticks run after the last sample
// to drain pipelined outputs.
func DriveStrobed(core strobeCore, setInput func(strobe bool, signal int64), samples []int64, flush int) []int64 {
	var outputs []int64
	step := func(strobe bool, signal int64) {
		setInput(strobe, signal)
		core.Tick()
		if core.StrobeOut() {
			outputs = append(outputs, core.SignalOut())
		}
	}
	for _, s := range samples {
		step(true, s)
		step(false, 0)
	}
	for i := 0; i < flush; i++ {
		step(false, 0)
	}
	return outputs
}
