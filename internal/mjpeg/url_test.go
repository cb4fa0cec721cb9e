package mjpeg

import "testing"

func TestNormalize(t *testing.T) {
	const def = "http://192.168.1.100/cam-lo.jpg"

	tests := []struct {
		name     string
		raw      string
		wantURL  string
		wantPoll bool
	}{
		{
			name:     "snapshot cam- marker unchanged",
			raw:      "http://h/cam-lo.jpg",
			wantURL:  "http://h/cam-lo.jpg",
			wantPoll: true,
		},
		{
			name:     "bare host gets stream path",
			raw:      "http://h",
			wantURL:  "http://h/stream",
			wantPoll: false,
		},
		{
			name:     "trailing slash gets stream path",
			raw:      "http://h/",
			wantURL:  "http://h/stream",
			wantPoll: false,
		},
		{
			name:     "snap.jpg unchanged",
			raw:      "http://h/snap.jpg",
			wantURL:  "http://h/snap.jpg",
			wantPoll: true,
		},
		{
			name:     "existing stream path kept",
			raw:      "http://h/stream",
			wantURL:  "http://h/stream",
			wantPoll: false,
		},
		{
			name:     "stream path with trailing slash normalized",
			raw:      "http://h/stream/",
			wantURL:  "http://h/stream",
			wantPoll: false,
		},
		{
			name:     "snapshot with trailing slash stripped",
			raw:      "http://h/snap.jpg/",
			wantURL:  "http://h/snap.jpg",
			wantPoll: true,
		},
		{
			name:     "empty falls back to default",
			raw:      "",
			wantURL:  def,
			wantPoll: true,
		},
		{
			name:     "nested path gets stream appended",
			raw:      "http://h/camera/front",
			wantURL:  "http://h/camera/front/stream",
			wantPoll: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, poll := Normalize(tt.raw, def)
			if url != tt.wantURL {
				t.Errorf("Normalize(%q) url = %q, want %q", tt.raw, url, tt.wantURL)
			}
			if poll != tt.wantPoll {
				t.Errorf("Normalize(%q) poll = %v, want %v", tt.raw, poll, tt.wantPoll)
			}
		})
	}
}
