package safeurl

import "testing"

func TestIsHTTPOrHTTPS(t *testing.T) {
	tests := []struct {
		url   string
		allow bool
	}{
		{"http://example.com/", true},
		{"https://videos.pexels.com/video-files/1/1.mp4", true},
		{"HTTPS://x", true},
		{"file:///etc/passwd", false},
		{"ftp://example.com", false},
		{"", false},
		{"not-a-url", false},
		{"https://", false},
	}
	for _, tt := range tests {
		got := IsHTTPOrHTTPS(tt.url)
		if got != tt.allow {
			t.Errorf("IsHTTPOrHTTPS(%q) = %v, want %v", tt.url, got, tt.allow)
		}
	}
}

func TestStripQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://h/a.mp4?token=1&x=2", "https://h/a.mp4"},
		{"https://h/a.mp4#t=3", "https://h/a.mp4"},
		{"https://h/a.mp4", "https://h/a.mp4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripQuery(tt.in); got != tt.want {
			t.Errorf("StripQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("https://pixabay.com/api/videos/?key=secret&q=sea"); got != "https://pixabay.com/api/videos/?[redacted]" {
		t.Errorf("Redact = %q", got)
	}
	if got := Redact("https://h/a.mp4"); got != "https://h/a.mp4" {
		t.Errorf("Redact without query = %q", got)
	}
}
