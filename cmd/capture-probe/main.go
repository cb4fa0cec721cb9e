// Command capture-probe connects to an MJPEG camera, consumes frames and
// reports stream statistics. Useful for validating a camera endpoint and
// watching reconnection behavior before wiring the stream into a pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mjpegcapture "github.com/e7canasta/mjpeg-capture"
)

func main() {
	var (
		url           = flag.String("url", "", "camera URL (required; STREAM_URL env is the fallback)")
		sourceStream  = flag.String("source", "probe", "source stream label")
		statsInterval = flag.Duration("stats-interval", 5*time.Second, "statistics reporting interval")
		noReconnect   = flag.Bool("no-reconnect", false, "stop after the first connection ends")
		debug         = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// The environment default is resolved once, here, and handed to the
	// stream explicitly.
	defaultURL := os.Getenv("STREAM_URL")
	if *url == "" && defaultURL == "" {
		fmt.Fprintln(os.Stderr, "Error: --url is required (or set STREAM_URL)")
		flag.Usage()
		os.Exit(1)
	}

	stream, err := mjpegcapture.NewMJPEGStream(mjpegcapture.Config{
		URL:              *url,
		DefaultURL:       defaultURL,
		SourceStream:     *sourceStream,
		DisableReconnect: *noReconnect,
	})
	if err != nil {
		logger.Error("failed to create stream", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, stopping gracefully")
		cancel()
	}()

	frames, err := stream.Start(ctx)
	if err != nil {
		logger.Error("failed to start stream", "error", err)
		os.Exit(1)
	}

	logger.Info("probing camera",
		"url", stream.URL(),
		"mode", stream.Mode().String(),
	)

	lastStats := time.Now()
	for {
		frame, res := frames.PopWithTimeout(500 * time.Millisecond)
		switch res {
		case mjpegcapture.PopFrame:
			logger.Debug("frame received",
				"seq", frame.Seq,
				"size", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
				"trace_id", frame.TraceID,
			)
		case mjpegcapture.PopTimeout:
			// Normal cadence while the camera is quiet or reconnecting.
		case mjpegcapture.PopDone:
			if err := frames.Err(); err != nil {
				logger.Error("stream terminated", "error", err)
			}
			printStats(stream.Stats())
			if err := stream.Stop(); err != nil {
				logger.Error("stop failed", "error", err)
			}
			return
		}

		if time.Since(lastStats) >= *statsInterval {
			printStats(stream.Stats())
			lastStats = time.Now()
		}
	}
}

func printStats(stats mjpegcapture.StreamStats) {
	fmt.Printf("── stats ────────────────────────────────\n")
	fmt.Printf("  state:      %s\n", stats.State)
	fmt.Printf("  frames:     %d (%.2f fps)\n", stats.FrameCount, stats.FPSReal)
	fmt.Printf("  dropped:    %d (%.1f%%)\n", stats.FramesDropped, stats.DropRate)
	fmt.Printf("  bytes read: %d\n", stats.BytesRead)
	fmt.Printf("  reconnects: %d (attempts since last frame: %d)\n", stats.Reconnects, stats.Attempts)
	fmt.Printf("  latency:    %dms since last frame\n", stats.LatencyMS)
}
