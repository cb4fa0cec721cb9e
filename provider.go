package mjpegcapture

import "context"

// StreamProvider defines the contract for camera frame acquisition.
//
// Implementations must guarantee:
//   - Start() returns immediately (non-blocking)
//   - the returned FrameChannel delivers frames in production order, with
//     gaps under overload but never reordering or duplication
//   - the channel's terminal sentinel is observable exactly once, after the
//     producer has stopped for any reason
//   - Stop() is idempotent (safe to call multiple times)
//   - Stats() is thread-safe (can be called from any goroutine)
type StreamProvider interface {
	// Start launches the producer loop and returns the frame handoff
	// channel. Frames arrive asynchronously once the camera responds.
	Start(ctx context.Context) (*FrameChannel, error)

	// Stop cancels the producer and waits for it to exit with a bounded
	// timeout. A producer blocked in a network read is interrupted by
	// request-context cancellation; if it still overruns the timeout it is
	// abandoned rather than forcibly killed.
	Stop() error

	// Stats returns current stream statistics.
	Stats() StreamStats
}
