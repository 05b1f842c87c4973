package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
	MaxIdleConnsPerHost    = 8

	// UserAgent is sent on every catalog and download request.
	UserAgent = "clipstock/1.0"
)

// Options tunes a client built by New. Zero values fall back to the defaults above.
type Options struct {
	// Timeout bounds a whole request including body read. Downloads of large
	// clips need a generous value; 0 = DefaultTimeout.
	Timeout time.Duration
	// ProxyURL routes all traffic through one proxy. Empty = honour
	// HTTP_PROXY / HTTPS_PROXY / NO_PROXY from the environment.
	ProxyURL string
}

var defaultClient = New(Options{})

// Default returns the shared tuned HTTP client for providers and the materializer.
func Default() *http.Client {
	return defaultClient
}

// New returns a client with a tuned transport and the proxy selection described by opts.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               ProxyFunc(opts.ProxyURL),
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: MaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
		},
	}
}

// ProxyFunc returns the transport proxy selector. A non-empty proxyURL is used for both
// http and https targets; otherwise the standard proxy environment variables apply.
func ProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if proxyURL != "" {
		cfg = &httpproxy.Config{HTTPProxy: proxyURL, HTTPSProxy: proxyURL, NoProxy: cfg.NoProxy}
	}
	pf := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return pf(req.URL)
	}
}
