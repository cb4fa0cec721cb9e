package mjpeg

import "strings"

// Normalize canonicalizes a user-supplied camera address and classifies it
// as snapshot-poll or multipart-stream.
//
// Rules (pure string transformation, no network access):
//   - Empty input falls back to def.
//   - Snapshot-style addresses ("snap"/"cam-" marker with a .jpg path, or a
//     plain .jpg suffix) are poll mode; a trailing slash is stripped.
//   - Addresses already ending in the streaming path are kept as-is
//     (trailing slash normalized away).
//   - Anything else gets the streaming path appended with exactly one
//     separating slash.
func Normalize(raw, def string) (url string, poll bool) {
	url = raw
	if url == "" {
		url = def
	}
	if isSnapshotURL(url) {
		return strings.TrimRight(url, "/"), true
	}
	trimmed := strings.TrimRight(url, "/")
	if strings.HasSuffix(trimmed, "/stream") {
		return trimmed, false
	}
	return trimmed + "/stream", false
}

// isSnapshotURL reports whether the address denotes a single-image endpoint.
// ESP32-CAM firmwares expose /snap.jpg or /cam-lo.jpg style paths.
func isSnapshotURL(url string) bool {
	if strings.HasSuffix(strings.TrimRight(url, "/"), ".jpg") {
		return true
	}
	return (strings.Contains(url, "snap") || strings.Contains(url, "cam-")) &&
		strings.Contains(url, ".jpg")
}
