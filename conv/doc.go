// Package conv provides a time-multiplexed stereo convolution engine
// for FIR impulse responses that are too long for one multiplier per
// tap: the tap memory is partitioned into slices that each own one
// multiply-accumulate unit, and the engine walks the partition over
// several ticks per stereo frame.
package conv
