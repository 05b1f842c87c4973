// Package provider searches remote stock-video catalogs for clips that fit a target aspect.
//
// Each catalog is a Searcher variant; the acquisition orchestrator only sees the interface,
// so adding a catalog never touches it.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/snapetech/clipstock/internal/aspect"
	"github.com/snapetech/clipstock/internal/httpclient"
	"github.com/snapetech/clipstock/internal/material"
	"github.com/snapetech/clipstock/internal/metrics"
	"github.com/snapetech/clipstock/internal/safeurl"
)

// PageSize is the number of catalog items requested per search.
const PageSize = 20

// ErrMalformedResponse means the catalog answered 200 but without the expected collection field.
var ErrMalformedResponse = errors.New("provider: malformed catalog response")

// Searcher is the capability every catalog implements.
type Searcher interface {
	Name() string
	// Search returns candidates for term in catalog order. Items shorter than minDuration
	// are skipped, and each item contributes at most its first rendition matching a.
	// On any failure it returns no candidates and a non-nil error; it never panics.
	Search(ctx context.Context, term string, minDuration float64, a aspect.Aspect) ([]material.Candidate, error)
	// Authorize attaches catalog credentials to a download request for one of its links.
	Authorize(req *http.Request)
}

// Options configures a Searcher built by New.
type Options struct {
	Name    string // "pexels" (default) or "pixabay"
	APIKey  string
	BaseURL string // override the catalog host; "" = public API
	Client  *http.Client
	// RPS throttles search requests; <= 0 disables throttling.
	RPS     float64
	Retry   httpclient.RetryPolicy
	Metrics *metrics.Metrics
}

// Names lists the supported catalogs.
var Names = []string{"pexels", "pixabay"}

// New returns the Searcher named by opts.Name.
func New(opts Options) (Searcher, error) {
	base := baseClient{
		apiKey:  opts.APIKey,
		client:  opts.Client,
		retry:   opts.Retry,
		metrics: opts.Metrics,
	}
	if base.client == nil {
		base.client = httpclient.Default()
	}
	if opts.RPS > 0 {
		base.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	switch strings.ToLower(opts.Name) {
	case "", "pexels":
		base.name = "pexels"
		base.baseURL = strings.TrimSuffix(orDefault(opts.BaseURL, PexelsBaseURL), "/")
		return &Pexels{baseClient: base}, nil
	case "pixabay":
		base.name = "pixabay"
		base.baseURL = strings.TrimSuffix(orDefault(opts.BaseURL, PixabayBaseURL), "/")
		return &Pixabay{baseClient: base}, nil
	}
	return nil, fmt.Errorf("provider: unknown catalog %q (want one of %s)", opts.Name, strings.Join(Names, ", "))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// baseClient carries what every catalog shares: credentials, transport, throttle.
type baseClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	retry   httpclient.RetryPolicy
	metrics *metrics.Metrics
}

func (b *baseClient) Name() string { return b.name }

// getJSON issues one throttled GET and decodes the body into v.
// authorize may be nil when credentials travel in the query string.
func (b *baseClient) getJSON(ctx context.Context, rawURL string, authorize func(*http.Request), v interface{}) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", httpclient.AcceptEncoding)
	if authorize != nil {
		authorize(req)
	}
	resp, err := httpclient.DoWithRetry(ctx, b.client, req, b.retry)
	if err != nil {
		return fmt.Errorf("get %s: %w", safeurl.Redact(rawURL), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("get %s: %s", safeurl.Redact(rawURL), resp.Status)
	}
	body, err := httpclient.DecodeBody(resp)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// outcome labels a search result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
