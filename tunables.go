package mjpegcapture

import "sync/atomic"

// Tunables is a small set of parameters written by the consumer (typically
// from user input) and read by processing code on either side of the frame
// channel. Every cell is atomic: a single writer, any number of readers, no
// torn values.
//
// This replaces the convention-only shared map the original tooling used
// for interactive tuning (e.g. picking a reference pixel level by key
// press).
type Tunables struct {
	referenceLevel atomic.Uint32
	debug          atomic.Bool
}

// SetReferenceLevel stores the reference pixel level (0-255) chosen by the
// user, e.g. by sampling a pixel under the cursor.
func (t *Tunables) SetReferenceLevel(level uint8) {
	t.referenceLevel.Store(uint32(level))
}

// ReferenceLevel returns the current reference pixel level.
func (t *Tunables) ReferenceLevel() uint8 {
	return uint8(t.referenceLevel.Load())
}

// SetDebug toggles verbose per-frame diagnostics.
func (t *Tunables) SetDebug(on bool) { t.debug.Store(on) }

// Debug reports whether verbose diagnostics are enabled.
func (t *Tunables) Debug() bool { return t.debug.Load() }
