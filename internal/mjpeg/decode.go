package mjpeg

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"
)

// Decode decodes a JPEG payload into an RGBA frame.
//
// Decode failure is non-fatal at stream level: callers skip the payload and
// continue with the next one, so ok is returned instead of an error.
func Decode(payload []byte) (*Frame, bool) {
	img, err := jpeg.Decode(bytes.NewReader(payload))
	if err != nil {
		slog.Debug("mjpeg-capture: dropping undecodable payload",
			"size_bytes", len(payload),
			"error", err,
		)
		return nil, false
	}

	// Normalize to interleaved RGBA regardless of the JPEG's subsampling.
	b := img.Bounds()
	rgba, isRGBA := img.(*image.RGBA)
	if !isRGBA {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	return &Frame{
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: rgba.Stride,
		Data:   rgba.Pix,
	}, true
}
