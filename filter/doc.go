// Package filter implements the streaming fixed-point filter cores: FIR
// (parallel or serial multiply-accumulate), IIR, CIC and half-band, plus
// the filterbank that chains identical stages.
//
// Every core follows the single-tick scheduling model described in the
// root package: set the input port fields, call Tick, read the outputs.
// Coefficients are designed (package filter/design) and quantized once at
// construction; the delay lines are the only state mutated while
// streaming.
package filter
