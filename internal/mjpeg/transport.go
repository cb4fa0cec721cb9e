package mjpeg

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// Options carries the transport settings shared by both ingestion modes.
type Options struct {
	URL            string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string

	// BytesRead, when non-nil, is incremented with every byte received from
	// the camera. Shared with the owning stream's statistics.
	BytesRead *atomic.Uint64
}

// setRequestHeaders applies the headers both modes need. Compression must be
// disabled: the demultiplexer operates on raw multipart bytes and a gzip
// layer would destroy the boundary structure.
func setRequestHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Accept-Encoding", "identity")
}

// newStreamClient builds an HTTP client for the long-lived multipart
// connection. The overall client timeout stays zero (the response body is
// read indefinitely); the connect timeout bounds dial and response headers.
func newStreamClient(connectTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			ResponseHeaderTimeout: connectTimeout,
			DisableCompression:    true,
		},
	}
}

// watchdogBody wraps a response body so that a read stalled longer than the
// configured read timeout cancels the request context, failing the blocked
// Read. net/http offers no per-read deadline, so the cancellation has to
// come from outside the read.
type watchdogBody struct {
	rc      io.ReadCloser
	timeout time.Duration
	cancel  context.CancelFunc
}

func (b *watchdogBody) Read(p []byte) (int, error) {
	if b.timeout > 0 {
		t := time.AfterFunc(b.timeout, b.cancel)
		defer t.Stop()
	}
	return b.rc.Read(p)
}

func (b *watchdogBody) Close() error {
	b.cancel()
	return b.rc.Close()
}
