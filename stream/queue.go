package stream

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// Queue is a bounded synchronous FIFO of payloads. It is the software
// rendering of the gateware SyncFIFO: CanPush mirrors w_rdy, CanPop
// mirrors r_rdy, and a full queue backpressures the producer instead of
// dropping data.
type Queue struct {
	buf  []int64
	head int
	n    int
}

// NewQueue creates a queue holding at most depth payloads.
func NewQueue(depth int) (*Queue, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: queue depth %d must be positive", fixdsp.ErrInvalidConfig, depth)
	}
	return &Queue{buf: make([]int64, depth)}, nil
}

// CanPush reports whether the queue has room for another payload.
func (q *Queue) CanPush() bool { return q.n < len(q.buf) }

// CanPop reports whether the queue holds at least one payload.
func (q *Queue) CanPop() bool { return q.n > 0 }

// Len returns the number of buffered payloads.
func (q *Queue) Len() int { return q.n }

// Cap returns the queue depth.
func (q *Queue) Cap() int { return len(q.buf) }

// Push appends a payload. It reports false, without storing anything,
// when the queue is full.
func (q *Queue) Push(v int64) bool {
	if !q.CanPush() {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = v
	q.n++
	return true
}

// Pop removes and returns the oldest payload. The second return value is
// false when the queue is empty.
func (q *Queue) Pop() (int64, bool) {
	if !q.CanPop() {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return v, true
}

// Reset discards all buffered payloads.
func (q *Queue) Reset() {
	q.head = 0
	q.n = 0
}
