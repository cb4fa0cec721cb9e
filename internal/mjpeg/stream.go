package mjpeg

import (
	"context"
	"fmt"
	"mime"
	"net/http"
)

// defaultBoundary is assumed when the camera omits the boundary parameter.
// ESP32-CAM firmwares commonly advertise it but some builds do not.
const defaultBoundary = "frame"

// StreamSource reads frames from one long-lived multipart/x-mixed-replace
// response. The connection lives until the camera drops it, a read times
// out, or the producer context is cancelled.
type StreamSource struct {
	resp  *http.Response
	body  *watchdogBody
	demux *demuxer
}

// OpenStream issues the streaming GET and prepares the demultiplexer.
//
// The request carries the caller's context, so cancellation interrupts even
// a blocked body read. Reads stalled longer than the read timeout fail the
// connection via the body watchdog.
func OpenStream(ctx context.Context, opts Options) (*StreamSource, error) {
	reqCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, opts.URL, nil)
	if err != nil {
		cancel()
		return nil, &FetchError{URL: opts.URL, Err: err}
	}
	setRequestHeaders(req, opts.UserAgent)

	resp, err := newStreamClient(opts.ConnectTimeout).Do(req)
	if err != nil {
		cancel()
		return nil, &FetchError{URL: opts.URL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &FetchError{URL: opts.URL, Status: resp.StatusCode}
	}

	boundary, err := boundaryFromContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}

	body := &watchdogBody{rc: resp.Body, timeout: opts.ReadTimeout, cancel: cancel}
	return &StreamSource{
		resp:  resp,
		body:  body,
		demux: newDemuxer(body, boundary, opts.BytesRead),
	}, nil
}

// Next returns the next decoded frame from the multipart stream.
//
// Payloads that fail to decode are skipped; transport errors (including
// mid-frame) propagate to the supervisor as fatal for this connection.
func (s *StreamSource) Next() (*Frame, error) {
	for {
		payload, err := s.demux.Next()
		if err != nil {
			return nil, err
		}
		if frame, ok := Decode(payload); ok {
			return frame, nil
		}
	}
}

// Close tears down the connection. Idempotent.
func (s *StreamSource) Close() error {
	return s.body.Close()
}

// boundaryFromContentType extracts the multipart boundary token, fixed for
// the connection lifetime. A missing parameter falls back to the
// conventional "frame" token rather than failing the connection.
func boundaryFromContentType(contentType string) (string, error) {
	if contentType == "" {
		return defaultBoundary, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("parse content-type %q: %w", contentType, err)
	}
	if b := params["boundary"]; b != "" {
		return b, nil
	}
	return defaultBoundary, nil
}
