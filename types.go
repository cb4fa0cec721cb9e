package mjpegcapture

import (
	"time"

	"github.com/e7canasta/mjpeg-capture/internal/mjpeg"
)

// Frame represents a single decoded video frame with metadata.
//
// Ownership transfers through the FrameChannel: once pushed, the producer
// never touches the frame again, so the consumer may mutate Data freely.
type Frame struct {
	// Seq is the monotonic producer-assigned sequence number. The drop
	// policy may create gaps, never reordering or duplication.
	Seq uint64
	// Timestamp is when the frame was decoded
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Stride is the byte distance between vertically adjacent pixels
	Stride int
	// Data contains interleaved RGBA bytes (4 bytes per pixel)
	Data []byte
	// SourceStream identifies the stream (e.g., "door-cam")
	SourceStream string
	// TraceID is a unique identifier for distributed tracing
	TraceID string
}

// Mode selects the ingestion strategy for a camera address.
type Mode int

const (
	// ModeStream reads one long-lived multipart/x-mixed-replace response.
	ModeStream Mode = iota
	// ModePoll issues one GET per frame against a snapshot endpoint.
	ModePoll
)

// String returns a human-readable string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModePoll:
		return "poll"
	default:
		return "stream"
	}
}

// ConnectionState is re-exported from the internal package; transitions are
// owned by the producer's supervisor loop.
type ConnectionState = mjpeg.ConnectionState

// Connection states, re-exported for consumers inspecting StreamStats.
const (
	StateDisconnected = mjpeg.StateDisconnected
	StateConnecting   = mjpeg.StateConnecting
	StateStreaming    = mjpeg.StateStreaming
	StateRetrying     = mjpeg.StateRetrying
)

// Config contains configuration for an MJPEG camera stream.
// Immutable once passed to NewMJPEGStream.
type Config struct {
	// URL is the camera address. May be empty when DefaultURL is set.
	// Normalized at construction time: snapshot-style addresses select
	// poll mode, anything else gets the /stream path appended.
	URL string
	// DefaultURL is used when URL is empty. Callers typically resolve it
	// from the process environment once at startup.
	DefaultURL string
	// SourceStream identifies the stream in frames and logs (optional).
	SourceStream string
	// ConnectTimeout bounds dial plus response headers (default 10s).
	ConnectTimeout time.Duration
	// ReadTimeout bounds a single stalled body read (default 30s).
	ReadTimeout time.Duration
	// ReconnectDelay is the fixed pause between attempts (default 2s).
	ReconnectDelay time.Duration
	// DisableReconnect makes the producer yield a single connection's
	// output and stop, propagating its terminal error to the channel.
	DisableReconnect bool
	// UserAgent overrides the request User-Agent header (optional).
	UserAgent string
}

// Configuration defaults, matching what ESP32-class cameras tolerate.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultReconnectDelay = 2 * time.Second

	defaultUserAgent = "mjpeg-capture/0.1"
)

// StreamStats contains current stream statistics
type StreamStats struct {
	// FrameCount is the total number of frames produced
	FrameCount uint64
	// FramesDropped is the total number of frames dropped (channel full)
	FramesDropped uint64
	// DropRate is the percentage of frames dropped (0-100)
	DropRate float64
	// BytesRead is the total bytes read from the camera
	BytesRead uint64
	// Attempts is the connection attempts since the last received frame
	Attempts uint32
	// Reconnects is the total number of retry cycles
	Reconnects uint32
	// State is the current connection state
	State ConnectionState
	// Mode is the ingestion strategy in use
	Mode Mode
	// URL is the normalized camera address
	URL string
	// FPSReal is the measured frame rate since Start
	FPSReal float64
	// LatencyMS is the time since the last frame in milliseconds
	LatencyMS int64
	// SourceStream identifies the stream
	SourceStream string
}
