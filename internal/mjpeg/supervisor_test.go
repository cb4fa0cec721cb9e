package mjpeg

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedSource yields a fixed number of frames, then fails.
type scriptedSource struct {
	frames int
	err    error
	closed bool
}

func (s *scriptedSource) Next() (*Frame, error) {
	if s.frames > 0 {
		s.frames--
		return &Frame{Width: 8, Height: 8}, nil
	}
	return nil, s.err
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

func TestSupervisor_AttemptCounter(t *testing.T) {
	const failures = 4
	connErr := errors.New("connection refused")

	var sup *Supervisor
	var observed []uint32
	calls := 0
	open := func(ctx context.Context) (Source, error) {
		calls++
		// Attempts was incremented on connecting: at call k it reads k,
		// proving it was k-1 immediately before this attempt.
		observed = append(observed, sup.Attempts())
		if calls <= failures {
			return nil, connErr
		}
		return &scriptedSource{frames: 1, err: connErr}, nil
	}
	sup = NewSupervisor(open, SupervisorConfig{
		ReconnectDelay: time.Millisecond,
		Reconnect:      true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var attemptsAtFrame uint32 = 99
	done := make(chan error, 1)
	go func() {
		done <- sup.Run(ctx, func(*Frame) {
			attemptsAtFrame = sup.Attempts()
			cancel()
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}

	want := []uint32{1, 2, 3, 4, 5}
	if len(observed) < len(want) {
		t.Fatalf("observed attempts %v, want at least %v", observed, want)
	}
	for i, w := range want {
		if observed[i] != w {
			t.Errorf("attempt counter at connect %d = %d, want %d", i+1, observed[i], w)
		}
	}
	if attemptsAtFrame != 0 {
		t.Errorf("attempt counter after first frame = %d, want 0 (reset)", attemptsAtFrame)
	}
}

func TestSupervisor_ReconnectDisabledPropagatesError(t *testing.T) {
	connErr := errors.New("stream dropped")
	src := &scriptedSource{frames: 2, err: connErr}
	open := func(ctx context.Context) (Source, error) { return src, nil }

	sup := NewSupervisor(open, SupervisorConfig{Reconnect: false})

	delivered := 0
	err := sup.Run(context.Background(), func(*Frame) { delivered++ })

	if !errors.Is(err, connErr) {
		t.Errorf("Run() error = %v, want %v", err, connErr)
	}
	if delivered != 2 {
		t.Errorf("delivered %d frames, want 2 (exactly one connection's output)", delivered)
	}
	if !src.closed {
		t.Error("source was not closed")
	}
	if got := sup.State(); got != StateDisconnected {
		t.Errorf("State() = %v, want %v", got, StateDisconnected)
	}
}

func TestSupervisor_ReconnectDisabledOpenFailure(t *testing.T) {
	openErr := errors.New("connect timeout")
	open := func(ctx context.Context) (Source, error) { return nil, openErr }

	sup := NewSupervisor(open, SupervisorConfig{Reconnect: false})
	err := sup.Run(context.Background(), func(*Frame) {
		t.Error("no frame should be delivered")
	})
	if !errors.Is(err, openErr) {
		t.Errorf("Run() error = %v, want %v", err, openErr)
	}
}

func TestSupervisor_CancelDuringRetryDelay(t *testing.T) {
	open := func(ctx context.Context) (Source, error) {
		return nil, errors.New("unreachable")
	}
	sup := NewSupervisor(open, SupervisorConfig{
		ReconnectDelay: time.Hour, // cancellation must not wait this out
		Reconnect:      true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx, func(*Frame) {}) }()

	// Give the loop a moment to fail the first attempt and start sleeping.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit after cancellation during backoff")
	}
}

func TestSupervisor_ReconnectsAcrossConnections(t *testing.T) {
	connErr := errors.New("reset by peer")
	calls := 0
	open := func(ctx context.Context) (Source, error) {
		calls++
		return &scriptedSource{frames: 1, err: connErr}, nil
	}
	sup := NewSupervisor(open, SupervisorConfig{
		ReconnectDelay: time.Millisecond,
		Reconnect:      true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	delivered := 0
	done := make(chan error, 1)
	go func() {
		done <- sup.Run(ctx, func(*Frame) {
			delivered++
			if delivered == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}

	if delivered < 3 {
		t.Errorf("delivered %d frames, want at least 3 across reconnections", delivered)
	}
	if calls < 3 {
		t.Errorf("open called %d times, want at least 3", calls)
	}
	if sup.Reconnects() < 2 {
		t.Errorf("Reconnects() = %d, want at least 2", sup.Reconnects())
	}
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateStreaming, "streaming"},
		{StateRetrying, "retrying"},
		{ConnectionState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ConnectionState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
