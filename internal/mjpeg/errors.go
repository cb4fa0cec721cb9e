package mjpeg

import (
	"errors"
	"fmt"
	"strings"
)

// FetchError is a typed transport error for a single HTTP exchange.
//
// Status is zero when the request never produced a response (dial failure,
// timeout, reset); otherwise it carries the non-2xx HTTP status code.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrorCategory classifies connection errors for telemetry.
type ErrorCategory int

const (
	// ErrCategoryNetwork indicates network-related failures (connection, timeout, DNS)
	ErrCategoryNetwork ErrorCategory = iota
	// ErrCategoryStatus indicates an HTTP-level rejection (non-2xx response)
	ErrCategoryStatus
	// ErrCategoryFraming indicates multipart framing failures (bad content type)
	ErrCategoryFraming
	// ErrCategoryUnknown indicates unclassified errors
	ErrCategoryUnknown
)

// String returns a human-readable string representation of the error category
func (e ErrorCategory) String() string {
	switch e {
	case ErrCategoryNetwork:
		return "network"
	case ErrCategoryStatus:
		return "status"
	case ErrCategoryFraming:
		return "framing"
	default:
		return "unknown"
	}
}

// ClassifyError categorizes a connection or stream error for telemetry.
//
// This enables better debugging in production by distinguishing between
// network issues (reconnect may help), HTTP rejections (camera busy, single
// client limit) and framing problems (endpoint is not an MJPEG stream).
// Classification is based on error type and message heuristics.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrCategoryUnknown
	}

	var fe *FetchError
	if errors.As(err, &fe) && fe.Status != 0 {
		return ErrCategoryStatus
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"boundary", "multipart", "content-type"} {
		if strings.Contains(msg, kw) {
			return ErrCategoryFraming
		}
	}
	for _, kw := range []string{
		"connection", "timeout", "deadline", "unreachable", "refused",
		"reset", "dns", "resolve", "socket", "eof", "broken pipe",
		"context canceled",
	} {
		if strings.Contains(msg, kw) {
			return ErrCategoryNetwork
		}
	}
	return ErrCategoryUnknown
}
