package safeurl

import (
	"net/url"
	"strings"
)

// IsHTTPOrHTTPS returns true if u is a valid URL with scheme http or https.
// Provider links that fail this are never downloaded (no file://, ftp://, etc.).
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	s := strings.ToLower(parsed.Scheme)
	return (s == "http" || s == "https") && parsed.Host != ""
}

// StripQuery returns u without its query string and fragment.
// Signed CDN links differ only in their query, so this is the stable part of a clip URL.
func StripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

// Redact replaces the query string with a marker so API keys never reach the logs.
func Redact(u string) string {
	if i := strings.Index(u, "?"); i >= 0 {
		return u[:i] + "?[redacted]"
	}
	return u
}
