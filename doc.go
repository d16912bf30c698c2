// Package fixdsp provides the shared fixed-point plumbing for a family of
// streaming DSP cores: the Q(bitwidth.fraction) sample format, coefficient
// quantization with a bounded-error contract, and the configuration errors
// shared by every core package.
//
// The cores themselves live in subpackages:
//
//   - stream:        the valid/ready/first/last token handshake, a bounded
//     queue and a constant stream generator
//   - filter:        FIR, IIR, CIC and half-band cores plus the filterbank
//   - filter/design: elaboration-time coefficient design (windowed sinc,
//     Kaiser, Chebyshev I) and float64 reference filters
//   - resample:      the fractional (M/N) resampler
//   - conv:          the parallel-slice stereo convolution engine
//
// All cores follow one scheduling model: a single discrete tick. Input
// ports are plain struct fields set before Tick, Tick commits all
// registered state in a two-phase read-then-write step, and combinational
// outputs are pure functions of the registered state. Coefficients are
// quantized once at construction and never mutated; every configuration
// invariant is checked by the constructor and surfaced as an error, and
// no error is ever raised mid-stream.
package fixdsp
