package filter

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// DelayLine is a fixed-length history of samples, index 0 holding the
// most recent one. Shifting is O(1): the backing ring buffer rotates
// instead of moving every element.
type DelayLine struct {
	buf  []int64
	head int
}

// NewDelayLine creates a delay line holding n samples, all zero.
func NewDelayLine(n int) (*DelayLine, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: delay line length %d must be positive", fixdsp.ErrInvalidConfig, n)
	}
	return &DelayLine{buf: make([]int64, n)}, nil
}

// Shift pushes v as the newest sample; the oldest one falls off.
func (d *DelayLine) Shift(v int64) {
	d.head--
	if d.head < 0 {
		d.head = len(d.buf) - 1
	}
	d.buf[d.head] = v
}

// At returns the i-th most recent sample; At(0) is the newest.
func (d *DelayLine) At(i int) int64 {
	return d.buf[(d.head+i)%len(d.buf)]
}

// Len returns the delay line length.
func (d *DelayLine) Len() int {
	return len(d.buf)
}

// Reset zeroes the whole history.
func (d *DelayLine) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.head = 0
}
