package mjpeg

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// ConnectionState describes where the supervisor currently is in the
// connect/stream/retry cycle. Transitions are owned exclusively by the
// supervisor goroutine; readers observe the state atomically.
type ConnectionState int32

const (
	// StateDisconnected is the initial state, and the terminal one when the
	// caller has disabled reconnection and the single attempt ended.
	StateDisconnected ConnectionState = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateStreaming means bytes are being received from the camera.
	StateStreaming
	// StateRetrying means the last connection failed and the supervisor is
	// sleeping out the reconnect delay.
	StateRetrying
)

// String returns a human-readable string representation of the state
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// OpenFunc opens one camera connection and returns its frame source.
type OpenFunc func(ctx context.Context) (Source, error)

// SupervisorConfig contains the retry settings for the reconnect loop.
type SupervisorConfig struct {
	// ReconnectDelay is the fixed pause between attempts.
	ReconnectDelay time.Duration
	// Reconnect keeps the loop alive across failures. When false, exactly
	// one connection's output is yielded and its terminal error propagates.
	Reconnect bool
	// URL is carried for log context only.
	URL string
}

// Supervisor wraps a connection factory in an indefinite retry loop and
// delivers a single frame sequence across arbitrarily many connections.
//
// The attempt counter is process-lifetime, not per-connection: it grows
// with every connection attempt and resets to zero on the first frame
// received after a (re)connection. Full error detail is logged only for the
// first two attempts since the last reset; after that a terse waiting
// message avoids flooding the log during a long camera outage.
type Supervisor struct {
	open  OpenFunc
	cfg   SupervisorConfig
	state atomic.Int32

	attempts   atomic.Uint32
	reconnects atomic.Uint32
}

func NewSupervisor(open OpenFunc, cfg SupervisorConfig) *Supervisor {
	return &Supervisor{open: open, cfg: cfg}
}

// State returns the current connection state. Safe from any goroutine.
func (s *Supervisor) State() ConnectionState {
	return ConnectionState(s.state.Load())
}

// Attempts returns the connection attempts since the last received frame.
func (s *Supervisor) Attempts() uint32 {
	return s.attempts.Load()
}

// Reconnects returns the total number of retry cycles so far.
func (s *Supervisor) Reconnects() uint32 {
	return s.reconnects.Load()
}

// Run drives the connect/stream/retry loop until ctx is cancelled, calling
// deliver for every decoded frame in arrival order.
//
// With reconnection enabled this loop never terminates on error: stopping
// is the caller's responsibility via ctx. With reconnection disabled it
// returns the single connection's terminal error.
func (s *Supervisor) Run(ctx context.Context, deliver func(*Frame)) error {
	defer s.state.Store(int32(StateDisconnected))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.state.Store(int32(StateConnecting))
		attempt := s.attempts.Add(1)
		if attempt <= 2 {
			slog.Info("mjpeg-capture: connecting", "url", s.cfg.URL, "attempt", attempt)
		}

		err := s.runConnection(ctx, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt = s.attempts.Load()
		if attempt <= 2 {
			slog.Error("mjpeg-capture: stream error",
				"url", s.cfg.URL,
				"error", err,
				"category", ClassifyError(err).String(),
				"attempt", attempt,
				"hint", "check camera is powered and no other client holds the stream (single-client limit)",
			)
		}
		slog.Warn("mjpeg-capture: waiting for stream", "attempt", attempt)

		if !s.cfg.Reconnect {
			return err
		}

		s.state.Store(int32(StateRetrying))
		s.reconnects.Add(1)
		select {
		case <-time.After(s.cfg.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		slog.Info("mjpeg-capture: reconnecting", "url", s.cfg.URL)
	}
}

// runConnection opens one connection and pumps its frames until it fails.
// The returned error is always non-nil: a Source is infinite by contract,
// so the only way out is a transport error or cancellation.
func (s *Supervisor) runConnection(ctx context.Context, deliver func(*Frame)) error {
	src, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	// Bytes are flowing once the response headers arrived.
	s.state.Store(int32(StateStreaming))

	first := true
	for {
		frame, err := src.Next()
		if err != nil {
			return err
		}
		if first {
			// A healthy frame proves the camera recovered: further
			// failures start a fresh retry cycle with full logging.
			s.attempts.Store(0)
			first = false
		}
		deliver(frame)
	}
}
