// Package mjpegcapture ingests motion-JPEG video from resource-constrained
// network cameras (ESP32-CAM class) over HTTP and hands decoded frames to a
// consumer through a bounded drop-on-full channel.
//
// OpenCV-style capture pipelines often fail or time out against these
// cameras; this package instead parses the multipart stream manually, the
// same way browsers receive it, and survives the endpoints' habits: drops,
// resets, single-client limits, and chunk boundaries that land anywhere
// relative to frame boundaries.
//
// # Quick Start
//
//	stream, err := mjpegcapture.NewMJPEGStream(mjpegcapture.Config{
//	    URL:          "http://192.168.1.100",
//	    SourceStream: "door-cam",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Stop()
//
//	frames, err := stream.Start(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    frame, res := frames.PopWithTimeout(500 * time.Millisecond)
//	    switch res {
//	    case mjpegcapture.PopFrame:
//	        process(frame)
//	    case mjpegcapture.PopTimeout:
//	        // normal cadence while the camera reconnects
//	    case mjpegcapture.PopDone:
//	        return
//	    }
//	}
//
// # Ingestion Modes
//
// The camera address is normalized and classified at construction time:
//
//   - Snapshot endpoints (/snap.jpg, /cam-lo.jpg, any .jpg path) are polled
//     with one GET per frame. Often better FPS and quality on ESP32-CAM.
//   - Everything else is treated as a multipart/x-mixed-replace stream;
//     the /stream path segment is appended when missing.
//
// # Frame Format
//
// Frames are delivered as interleaved RGBA bytes (4 bytes per pixel, Stride
// bytes per row) with a monotonic sequence number and a per-frame TraceID.
// Ownership transfers through the channel: after a pop the consumer may
// mutate the frame freely.
//
// # Handoff and Drop Policy
//
// The FrameChannel holds at most two undelivered frames. When it is full
// the incoming frame is discarded and the buffered (older) frames are kept,
// so under sustained overload the consumer sees a strictly increasing,
// gap-containing sequence — never reordering, never duplicates. A terminal
// sentinel, observable even over a full channel, marks the producer's
// permanent exit.
//
// # Error Handling and Reconnection
//
// Transport errors are recoverable: the producer retries indefinitely with
// a fixed delay, logging full detail for the first two attempts since the
// last received frame and a terse waiting message afterward. Malformed
// multipart parts and undecodable JPEG payloads cost one frame each, never
// the stream. With Config.DisableReconnect the producer yields one
// connection's output and stops, propagating its terminal error through
// FrameChannel.Err.
//
// # Thread Safety
//
//   - Start/Stop are serialized; Stop is idempotent
//   - Stats uses atomic counters and can be called from any goroutine
//   - FrameChannel is single-producer single-consumer
//   - Tunables cells are safe for one writer and many readers
//
// # Limitations
//
//   - JPEG payloads only (no H.264/H.265)
//   - basic HTTP headers only, no authentication schemes
//   - one consumer per stream instance (no fan-out)
//   - frames are never persisted
package mjpegcapture
