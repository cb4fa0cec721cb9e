package mjpeg

// Frame is a minimal decoded frame for internal use (avoids import cycle).
// The public Frame type is defined in the parent package and carries the
// producer-assigned sequence number and trace metadata.
type Frame struct {
	Width  int
	Height int
	Stride int
	// Data contains interleaved RGBA bytes (4 bytes per pixel).
	Data []byte
}

// Source yields decoded frames from one underlying camera connection.
//
// A Source is lazy, infinite and non-restartable: Next blocks until a frame
// is available or the connection fails. Any error from Next is fatal for
// this connection; the supervisor opens a fresh Source on retry, so no
// demultiplexer state survives across connections.
type Source interface {
	// Next returns the next successfully decoded frame. Payloads that fail
	// to decode are skipped internally and never surface as errors.
	Next() (*Frame, error)

	// Close releases the underlying transport. Idempotent.
	Close() error
}
