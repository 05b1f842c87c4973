package httpclient

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy controls when to retry after a response. Used by DoWithRetry.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts after the first. 0 disables retries.
	MaxRetries int
	// Retry429: on 429 Too Many Requests, wait Retry-After (capped at Max429Wait).
	Retry429   bool
	Max429Wait time.Duration
	// Retry5xx: on 5xx, wait Backoff5xx (doubling per attempt).
	Retry5xx   bool
	Backoff5xx time.Duration
	// RetryNetwork also retries transport errors (connection reset, DNS) with Backoff5xx.
	RetryNetwork bool
}

// DefaultRetryPolicy retries once on 429 (cap 30s), 5xx and transport errors (1s backoff).
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:   1,
	Retry429:     true,
	Max429Wait:   30 * time.Second,
	Retry5xx:     true,
	Backoff5xx:   1 * time.Second,
	RetryNetwork: true,
}

// NoRetry performs a single attempt.
var NoRetry = RetryPolicy{}

// DoWithRetry performs req and retries per policy. 4xx (except 429) are never retried.
// Requests must not carry a body. Caller must close resp.Body when err == nil.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	if client == nil {
		client = Default()
	}
	backoff := policy.Backoff5xx
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			next, err := cloneRequest(ctx, req)
			if err != nil {
				return nil, err
			}
			req = next
		}
		resp, err := client.Do(req)
		last := attempt >= policy.MaxRetries
		if err != nil {
			if last || !policy.RetryNetwork || ctx.Err() != nil {
				return nil, err
			}
			if werr := sleep(ctx, backoff); werr != nil {
				return nil, werr
			}
			backoff *= 2
			continue
		}
		code := resp.StatusCode
		var wait time.Duration
		switch {
		case code == http.StatusTooManyRequests && policy.Retry429:
			wait = parseRetryAfter(resp.Header.Get("Retry-After"), policy.Max429Wait)
		case code >= 500 && policy.Retry5xx:
			wait = backoff
			backoff *= 2
		default:
			return resp, nil
		}
		if last {
			return resp, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	next, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		next.Header[k] = v
	}
	return next, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// parseRetryAfter parses Retry-After (seconds or HTTP-date); returns duration capped at max.
func parseRetryAfter(s string, max time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1 * time.Second
	}
	if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
		d := time.Duration(sec) * time.Second
		if d > max {
			return max
		}
		return d
	}
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		return 1 * time.Second
	}
	until := time.Until(t)
	if until <= 0 {
		return 0
	}
	if until > max {
		return max
	}
	return until
}
