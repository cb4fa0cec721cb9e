package mjpegcapture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/mjpeg-capture/internal/mjpeg"
)

// MJPEGStream implements StreamProvider over HTTP for ESP32-class network
// cameras, in either multipart-stream or snapshot-poll mode.
type MJPEGStream struct {
	// Configuration (immutable after construction)
	url          string
	mode         Mode
	sourceStream string
	opts         mjpeg.Options
	supCfg       mjpeg.SupervisorConfig

	// Producer machinery
	sup     *mjpeg.Supervisor
	channel *FrameChannel

	// Lifecycle
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Statistics (atomic for thread-safety)
	frameCount  atomic.Uint64
	bytesRead   atomic.Uint64
	started     time.Time
	lastFrameMu sync.Mutex
	lastFrameAt time.Time
}

var _ StreamProvider = (*MJPEGStream)(nil)

// NewMJPEGStream creates a camera stream with fail-fast validation.
//
// The address is normalized here: snapshot-style URLs (/snap.jpg,
// /cam-lo.jpg) select poll mode, everything else is treated as a multipart
// stream endpoint with /stream appended when missing. An empty URL falls
// back to cfg.DefaultURL; both empty is a configuration error.
func NewMJPEGStream(cfg Config) (*MJPEGStream, error) {
	if cfg.URL == "" && cfg.DefaultURL == "" {
		return nil, fmt.Errorf("mjpeg-capture: camera URL is required")
	}
	if cfg.ConnectTimeout < 0 || cfg.ReadTimeout < 0 || cfg.ReconnectDelay < 0 {
		return nil, fmt.Errorf("mjpeg-capture: timeouts must be non-negative")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	url, poll := mjpeg.Normalize(cfg.URL, cfg.DefaultURL)
	mode := ModeStream
	if poll {
		mode = ModePoll
	}

	s := &MJPEGStream{
		url:          url,
		mode:         mode,
		sourceStream: cfg.SourceStream,
		opts: mjpeg.Options{
			URL:            url,
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			UserAgent:      cfg.UserAgent,
		},
		supCfg: mjpeg.SupervisorConfig{
			ReconnectDelay: cfg.ReconnectDelay,
			Reconnect:      !cfg.DisableReconnect,
			URL:            url,
		},
	}
	s.opts.BytesRead = &s.bytesRead

	slog.Info("mjpeg-capture: stream created",
		"url", url,
		"mode", mode.String(),
		"source_stream", cfg.SourceStream,
		"reconnect", !cfg.DisableReconnect,
	)

	return s, nil
}

// URL returns the normalized camera address.
func (s *MJPEGStream) URL() string { return s.url }

// Mode returns the ingestion strategy selected during normalization.
func (s *MJPEGStream) Mode() Mode { return s.mode }

// Start launches the producer goroutine and returns the handoff channel.
//
// This method returns immediately; frames arrive asynchronously once the
// camera responds. The producer runs the reconnect loop until ctx is
// cancelled (or, with reconnection disabled, until its single connection
// ends), then records the channel's terminal sentinel.
func (s *MJPEGStream) Start(ctx context.Context) (*FrameChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil, fmt.Errorf("mjpeg-capture: stream already started")
	}

	prodCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = time.Now()
	s.channel = newFrameChannel()

	open := func(ctx context.Context) (mjpeg.Source, error) {
		if s.mode == ModePoll {
			return mjpeg.OpenPoll(ctx, s.opts)
		}
		return mjpeg.OpenStream(ctx, s.opts)
	}
	s.sup = mjpeg.NewSupervisor(open, s.supCfg)

	channel := s.channel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.sup.Run(prodCtx, func(f *mjpeg.Frame) {
			s.deliver(channel, f)
		})
		// The sentinel must be recorded exactly once, whatever ended the
		// loop: cancellation, a terminal error with reconnection disabled,
		// or a setup failure.
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		channel.close(err)
		slog.Info("mjpeg-capture: producer stopped", "url", s.url, "error", err)
	}()

	slog.Info("mjpeg-capture: stream started", "url", s.url, "mode", s.mode.String())
	return channel, nil
}

// deliver assigns frame identity and offers it to the consumer.
func (s *MJPEGStream) deliver(channel *FrameChannel, f *mjpeg.Frame) {
	frame := Frame{
		Seq:          s.frameCount.Add(1),
		Timestamp:    time.Now(),
		Width:        f.Width,
		Height:       f.Height,
		Stride:       f.Stride,
		Data:         f.Data,
		SourceStream: s.sourceStream,
		TraceID:      uuid.New().String(),
	}

	s.lastFrameMu.Lock()
	s.lastFrameAt = frame.Timestamp
	s.lastFrameMu.Unlock()

	if !channel.TryPush(frame) {
		slog.Debug("mjpeg-capture: dropping frame, channel full",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}
}

// Stop cancels the producer and waits for it to exit.
//
// Cancellation interrupts even a blocked network read because requests
// carry the producer context; the join timeout is a safety net. A producer
// that overruns it is abandoned (it is a daemon-scoped background task),
// never forcibly killed. Idempotent.
func (s *MJPEGStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		slog.Debug("mjpeg-capture: stream not started, nothing to stop")
		return nil
	}

	slog.Info("mjpeg-capture: stopping stream", "url", s.url)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Debug("mjpeg-capture: producer stopped cleanly")
	case <-time.After(3 * time.Second):
		slog.Warn("mjpeg-capture: stop timeout exceeded, abandoning producer")
	}

	slog.Info("mjpeg-capture: stream stopped",
		"frames_produced", s.frameCount.Load(),
		"reconnects", s.sup.Reconnects(),
		"uptime", time.Since(s.started),
	)

	s.cancel = nil
	return nil
}

// Stats returns current stream statistics.
//
// Thread-safe: counters are atomic and may advance while this snapshot is
// being assembled.
func (s *MJPEGStream) Stats() StreamStats {
	frameCount := s.frameCount.Load()

	var dropped uint64
	var state ConnectionState = StateDisconnected
	var attempts, reconnects uint32
	s.mu.Lock()
	if s.channel != nil {
		dropped = s.channel.dropped.Load()
	}
	if s.sup != nil {
		state = s.sup.State()
		attempts = s.sup.Attempts()
		reconnects = s.sup.Reconnects()
	}
	started := s.started
	s.mu.Unlock()

	var dropRate float64
	if frameCount > 0 {
		dropRate = float64(dropped) / float64(frameCount) * 100.0
	}

	var fpsReal float64
	if !started.IsZero() {
		if uptime := time.Since(started).Seconds(); uptime > 0 {
			fpsReal = float64(frameCount) / uptime
		}
	}

	var latencyMS int64
	s.lastFrameMu.Lock()
	if !s.lastFrameAt.IsZero() {
		latencyMS = time.Since(s.lastFrameAt).Milliseconds()
	}
	s.lastFrameMu.Unlock()

	return StreamStats{
		FrameCount:    frameCount,
		FramesDropped: dropped,
		DropRate:      dropRate,
		BytesRead:     s.bytesRead.Load(),
		Attempts:      attempts,
		Reconnects:    reconnects,
		State:         state,
		Mode:          s.mode,
		URL:           s.url,
		FPSReal:       fpsReal,
		LatencyMS:     latencyMS,
		SourceStream:  s.sourceStream,
	}
}
