package mjpeg

import (
	"bytes"
	"io"
	"strconv"
	"sync/atomic"
)

// readChunkSize is the transport read granularity. Larger chunks reduce
// syscall overhead when draining a high-rate MJPEG stream.
const readChunkSize = 4096

// markerTail is the number of extra bytes retained beyond the marker length
// while seeking, enough to catch a marker split across a chunk boundary.
const markerTail = 4

// demuxer extracts JPEG payloads from a multipart/x-mixed-replace byte
// stream. Chunk boundaries are arbitrary with respect to frame boundaries:
// the camera writes whenever it pleases, so the demuxer accumulates bytes
// and runs a two-phase state machine over the buffer.
//
// Phases:
//
//	seeking: scan for the boundary marker ("--" + token), then for the
//	         header block terminator, then parse Content-Length. Parts
//	         without a positive Content-Length are skipped (the payload
//	         length is unknowable without it).
//	reading: wait until the buffer holds exactly Content-Length bytes,
//	         slice them out as the payload, consume the trailing line
//	         terminator, return to seeking.
//
// Both CRLF and bare-LF line conventions are accepted; ESP32-class firmwares
// are not consistent about them.
//
// A demuxer is single-use: transport errors propagate out of Next and the
// caller opens a fresh connection with a fresh demuxer, so no parse state
// ever survives a reconnect.
type demuxer struct {
	r      io.Reader
	marker []byte // "--" + boundary token
	buf    []byte
	chunk  []byte

	// pending is the Content-Length of the part body being read; zero while
	// seeking.
	pending int
	// inHeader is set between consuming a marker and finding the header
	// block terminator. While set the buffer must not be trimmed, or a
	// header split across chunks would be lost.
	inHeader bool

	bytesRead *atomic.Uint64
}

func newDemuxer(r io.Reader, boundary string, bytesRead *atomic.Uint64) *demuxer {
	return &demuxer{
		r:         r,
		marker:    append([]byte("--"), boundary...),
		chunk:     make([]byte, readChunkSize),
		bytesRead: bytesRead,
	}
}

// Next returns the next raw JPEG payload.
//
// Any transport error (including one that hits mid-frame) is returned as-is
// and is fatal for this demuxer.
func (d *demuxer) Next() ([]byte, error) {
	for {
		if payload, ok := d.extract(); ok {
			return payload, nil
		}
		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
			if d.bytesRead != nil {
				d.bytesRead.Add(uint64(n))
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// extract runs the state machine over the accumulated buffer. It returns
// ok=false when more input is needed.
func (d *demuxer) extract() ([]byte, bool) {
	for {
		if d.pending > 0 {
			if len(d.buf) < d.pending {
				return nil, false
			}
			payload := make([]byte, d.pending)
			copy(payload, d.buf[:d.pending])
			d.buf = d.buf[d.pending:]
			d.trimLineBreak()
			d.pending = 0
			return payload, true
		}

		if !d.inHeader {
			idx := bytes.Index(d.buf, d.marker)
			if idx < 0 {
				// Bound memory while no marker is in sight, but keep a
				// tail long enough to recognize a marker split across
				// the next chunk boundary.
				if keep := len(d.marker) + markerTail; len(d.buf) > keep {
					d.buf = d.buf[len(d.buf)-keep:]
				}
				return nil, false
			}
			d.buf = d.buf[idx+len(d.marker):]
			d.trimLineBreak()
			d.inHeader = true
		}

		header, rest, found := splitHeaderBlock(d.buf)
		if !found {
			// Header terminator not seen yet. Keep the buffer intact and
			// wait for more input.
			return nil, false
		}
		d.buf = rest
		d.inHeader = false

		length := parseContentLength(header)
		if length <= 0 {
			// No usable length: this part's extent is unknowable, so the
			// frame is dropped and seeking resumes at the next marker.
			continue
		}
		d.pending = length
	}
}

// trimLineBreak consumes one leading CRLF or bare LF.
func (d *demuxer) trimLineBreak() {
	if bytes.HasPrefix(d.buf, []byte("\r\n")) {
		d.buf = d.buf[2:]
	} else if bytes.HasPrefix(d.buf, []byte("\n")) {
		d.buf = d.buf[1:]
	}
}

// splitHeaderBlock splits buf at the first blank line, accepting both CRLF
// and bare-LF conventions.
func splitHeaderBlock(buf []byte) (header, rest []byte, found bool) {
	if idx := bytes.Index(buf, []byte("\r\n\r\n")); idx >= 0 {
		return buf[:idx], buf[idx+4:], true
	}
	if idx := bytes.Index(buf, []byte("\n\n")); idx >= 0 {
		return buf[:idx], buf[idx+2:], true
	}
	return nil, buf, false
}

// parseContentLength scans a part's header block case-insensitively for a
// Content-Length field. Returns zero when absent or malformed.
func parseContentLength(header []byte) int {
	for _, line := range bytes.Split(header, []byte("\n")) {
		line = bytes.TrimSpace(line)
		const field = "content-length:"
		if len(line) < len(field) {
			continue
		}
		if !bytes.EqualFold(line[:len(field)], []byte(field)) {
			continue
		}
		value := string(bytes.TrimSpace(line[len(field):]))
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
