// Package resample provides a fixed-point fractional sample rate
// converter built from the filter cascade in package filter and the
// stream primitives in package stream.
package resample
