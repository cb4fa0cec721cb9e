package mjpegcapture

import (
	"sync"
	"sync/atomic"
	"time"
)

// channelCapacity is the fixed handoff bound between producer and consumer.
// Two slots absorb a consumer hiccup without letting stale frames pile up.
const channelCapacity = 2

// PopResult describes the outcome of a FrameChannel pop.
type PopResult int

const (
	// PopFrame means a frame was delivered.
	PopFrame PopResult = iota
	// PopTimeout means no frame arrived within the wait; this is the
	// normal polling cadence, not an error.
	PopTimeout
	// PopDone is the terminal sentinel: the producer has stopped
	// permanently and no more frames will ever be produced.
	PopDone
)

// String returns a human-readable string representation of the result
func (r PopResult) String() string {
	switch r {
	case PopFrame:
		return "frame"
	case PopTimeout:
		return "timeout"
	case PopDone:
		return "done"
	default:
		return "unknown"
	}
}

// FrameChannel is the bounded single-producer single-consumer handoff
// between the network context and the processing context.
//
// Admission is drop-newest: when the buffer is full the incoming frame is
// discarded and the buffered (older) frames are kept. Under sustained
// overload this favors staleness over latency; downstream consumers were
// validated against exactly these semantics, so it is deliberate.
//
// The terminal sentinel bypasses the drop policy entirely: it is recorded
// once when the producer exits for any reason and is observable by the
// consumer even over a full channel.
type FrameChannel struct {
	frames chan Frame
	done   chan struct{}

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error

	pushed  atomic.Uint64
	dropped atomic.Uint64
}

func newFrameChannel() *FrameChannel {
	return &FrameChannel{
		frames: make(chan Frame, channelCapacity),
		done:   make(chan struct{}),
	}
}

// TryPush offers a frame to the consumer without blocking.
//
// Returns false when the channel is at capacity: the incoming frame is
// discarded and existing buffered frames are left untouched.
func (c *FrameChannel) TryPush(frame Frame) bool {
	select {
	case c.frames <- frame:
		c.pushed.Add(1)
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// PopWithTimeout blocks up to the given duration for the next frame.
//
// PopDone takes priority over buffered frames: once the producer has
// terminated, the very next pop observes it even if the channel was full.
func (c *FrameChannel) PopWithTimeout(timeout time.Duration) (Frame, PopResult) {
	select {
	case <-c.done:
		return Frame{}, PopDone
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame := <-c.frames:
		return frame, PopFrame
	case <-c.done:
		return Frame{}, PopDone
	case <-timer.C:
		return Frame{}, PopTimeout
	}
}

// Err returns the producer's terminal error, if any. Valid after a pop has
// returned PopDone; nil means the producer stopped by cancellation.
func (c *FrameChannel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// close records the terminal sentinel. Called exactly once by the producer
// after its loop exits; idempotent against racing shutdown paths.
func (c *FrameChannel) close(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		close(c.done)
	})
}
