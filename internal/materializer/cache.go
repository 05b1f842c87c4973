package materializer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/snapetech/clipstock/internal/cache"
	"github.com/snapetech/clipstock/internal/httpclient"
	"github.com/snapetech/clipstock/internal/metrics"
	"github.com/snapetech/clipstock/internal/safeurl"
)

// Cache downloads remote clips into CacheDir, keyed by the URL without its query.
// A non-empty file at the derived path is a hit and is returned without any network call.
type Cache struct {
	CacheDir string
	Client   *http.Client
	// Authorize attaches provider credentials to download requests. May be nil.
	Authorize func(*http.Request)
	Retry     httpclient.RetryPolicy
	Metrics   *metrics.Metrics

	group singleflight.Group
}

// Fetch implements Fetcher. Concurrent calls for the same URL share one download.
func (c *Cache) Fetch(ctx context.Context, sourceURL string) (string, error) {
	if !safeurl.IsHTTPOrHTTPS(sourceURL) {
		return "", fmt.Errorf("materializer: refusing url %q", safeurl.Redact(sourceURL))
	}
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("materializer: cache dir: %w", err)
	}
	finalPath := cache.Path(c.CacheDir, sourceURL)
	if cached(finalPath) {
		c.Metrics.CacheHit()
		return finalPath, nil
	}
	c.Metrics.CacheMiss()

	// The shared download outlives any single caller; the client timeout bounds it.
	dctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(cache.Key(sourceURL), func() (interface{}, error) {
		// Another process may have finished the same clip while we waited.
		if cached(finalPath) {
			return finalPath, nil
		}
		return finalPath, c.download(dctx, sourceURL, finalPath)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Shared {
			log.Printf("materializer: joined in-flight download url=%q", safeurl.Redact(sourceURL))
		}
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

func (c *Cache) download(ctx context.Context, sourceURL, finalPath string) error {
	client := c.Client
	if client == nil {
		client = httpclient.Default()
	}
	release, err := httpclient.GlobalHostSem.Acquire(ctx, sourceURL)
	if err != nil {
		return err
	}
	defer release()

	log.Printf("materializer: download url=%q dest=%q", safeurl.Redact(sourceURL), finalPath)
	n, err := downloadToFile(ctx, client, c.Retry, c.Authorize, sourceURL, finalPath)
	switch {
	case errors.Is(err, ErrEmptyDownload):
		c.Metrics.Download("empty", 0)
	case err != nil:
		c.Metrics.Download("error", 0)
	default:
		c.Metrics.Download("ok", n)
	}
	if err != nil {
		log.Printf("materializer: download failed url=%q err=%v", safeurl.Redact(sourceURL), err)
		return err
	}
	log.Printf("materializer: download ok url=%q bytes=%d final=%q", safeurl.Redact(sourceURL), n, finalPath)
	return nil
}

func cached(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}
