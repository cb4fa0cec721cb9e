package mjpeg

import (
	"context"
	"io"
	"net/http"
)

// PollSource fetches frames by polling a single-image endpoint: one GET per
// frame. ESP32-CAM snapshot endpoints (/snap.jpg, /cam-lo.jpg) often deliver
// better quality and rate than the firmware's multipart stream.
type PollSource struct {
	ctx    context.Context
	client *http.Client
	opts   Options
}

// OpenPoll prepares a snapshot-polling source. No network access happens
// here; each Next issues its own request.
func OpenPoll(ctx context.Context, opts Options) (*PollSource, error) {
	return &PollSource{
		ctx: ctx,
		// The whole exchange is bounded by the connect timeout: a snapshot
		// either arrives promptly or the camera is wedged.
		client: &http.Client{Timeout: opts.ConnectTimeout},
		opts:   opts,
	}, nil
}

// Next issues one GET and returns the decoded snapshot.
//
// Transport failures and non-2xx statuses surface as *FetchError; retrying
// is the supervisor's job, not ours. A body that fails to decode yields no
// frame for that iteration and the next request is issued immediately.
func (p *PollSource) Next() (*Frame, error) {
	for {
		req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, p.opts.URL, nil)
		if err != nil {
			return nil, &FetchError{URL: p.opts.URL, Err: err}
		}
		setRequestHeaders(req, p.opts.UserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, &FetchError{URL: p.opts.URL, Err: err}
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &FetchError{URL: p.opts.URL, Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &FetchError{URL: p.opts.URL, Status: resp.StatusCode}
		}
		if p.opts.BytesRead != nil {
			p.opts.BytesRead.Add(uint64(len(body)))
		}

		if frame, ok := Decode(body); ok {
			return frame, nil
		}
		// Undecodable snapshot: skip and poll again.
	}
}

// Close is a no-op; poll mode holds no persistent connection.
func (p *PollSource) Close() error { return nil }
