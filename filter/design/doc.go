// Package design computes real-valued filter coefficients at elaboration
// time. The streaming cores in package filter quantize these once at
// construction; nothing in this package runs on the sample path.
//
// Provided designs: Hamming windowed-sinc FIR low/highpass, Kaiser
// windowed-sinc half-band taps, and Chebyshev Type I IIR transfer
// functions. FrequencyResponse evaluates a designed tap vector for
// analysis tools and tests, and the Reference filters implement the exact
// float64 semantics the fixed-point cores are measured against.
package design
