package materializer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/snapetech/clipstock/internal/cache"
	"github.com/snapetech/clipstock/internal/httpclient"
	"github.com/snapetech/clipstock/internal/metrics"
)

func clipServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCache(dir string) *Cache {
	return &Cache{
		CacheDir:  dir,
		Client:    &http.Client{Timeout: 5 * time.Second},
		Authorize: func(r *http.Request) { r.Header.Set("Authorization", "secret") },
		Retry:     httpclient.NoRetry,
	}
}

func partials(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".vid-*.partial"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestFetch_downloadsThenHits(t *testing.T) {
	var hits int32
	srv := clipServer(t, "fake mp4 bytes", &hits)
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c := newCache(dir)
	ctx := context.Background()
	url := srv.URL + "/video-files/1/clip.mp4?token=abc"

	p1, err := c.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if p1 != cache.Path(dir, url) {
		t.Errorf("path = %q, want %q", p1, cache.Path(dir, url))
	}
	data, err := os.ReadFile(p1)
	if err != nil || string(data) != "fake mp4 bytes" {
		t.Fatalf("content = %q err=%v", data, err)
	}

	// Different query string: same cache entry, no second request.
	p2, err := c.Fetch(ctx, srv.URL+"/video-files/1/clip.mp4?token=other")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if p2 != p1 {
		t.Errorf("second path = %q, want %q", p2, p1)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("network hits = %d, want 1", n)
	}
	if left := partials(t, dir); len(left) != 0 {
		t.Errorf("leftover partials: %v", left)
	}
}

func TestFetch_emptyBodyLeavesNothing(t *testing.T) {
	var hits int32
	srv := clipServer(t, "", &hits)
	dir := t.TempDir()
	c := newCache(dir)
	url := srv.URL + "/empty.mp4"

	p, err := c.Fetch(context.Background(), url)
	if !errors.Is(err, ErrEmptyDownload) {
		t.Fatalf("err = %v, want ErrEmptyDownload", err)
	}
	if p != "" {
		t.Errorf("path = %q, want empty", p)
	}
	if _, err := os.Stat(cache.Path(dir, url)); !os.IsNotExist(err) {
		t.Errorf("final path should not exist: %v", err)
	}
	if left := partials(t, dir); len(left) != 0 {
		t.Errorf("leftover partials: %v", left)
	}
}

func TestFetch_zeroByteFileIsNotAHit(t *testing.T) {
	var hits int32
	srv := clipServer(t, "real", &hits)
	dir := t.TempDir()
	url := srv.URL + "/a.mp4"
	if err := os.WriteFile(cache.Path(dir, url), nil, 0644); err != nil {
		t.Fatal(err)
	}
	p, err := newCache(dir).Fetch(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(p); string(data) != "real" {
		t.Errorf("content = %q", data)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("zero-byte file should trigger a download")
	}
}

func TestFetch_httpError(t *testing.T) {
	var hits int32
	srv := clipServer(t, "x", &hits)
	dir := t.TempDir()
	c := newCache(dir)
	c.Authorize = nil

	_, err := c.Fetch(context.Background(), srv.URL+"/a.mp4")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want 401", err)
	}
	if _, err := os.Stat(cache.Path(dir, srv.URL+"/a.mp4")); !os.IsNotExist(err) {
		t.Errorf("final path should not exist")
	}
}

func TestFetch_rejectsNonHTTP(t *testing.T) {
	if _, err := newCache(t.TempDir()).Fetch(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected error for file:// URL")
	}
}

func TestFetch_concurrentSameURL(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte("clip"))
	}))
	defer srv.Close()

	c := newCache(t.TempDir())
	url := srv.URL + "/same.mp4"
	var wg sync.WaitGroup
	paths := make([]string, 4)
	errs := make([]error, 4)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = c.Fetch(context.Background(), url)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("fetch %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("fetch %d path %q != %q", i, paths[i], paths[0])
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("network hits = %d, want 1", n)
	}
}

func TestFetch_cancelledCallerDoesNotAbortSharedDownload(t *testing.T) {
	var hits int32
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		started <- struct{}{}
		<-release
		w.Write([]byte("clip"))
	}))
	defer srv.Close()

	c := newCache(t.TempDir())
	url := srv.URL + "/shared.mp4"

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctxA, url)
		errA <- err
	}()
	<-started

	type result struct {
		path string
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		p, err := c.Fetch(context.Background(), url)
		resB <- result{p, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller err = %v, want context.Canceled", err)
	}
	close(release)

	b := <-resB
	if b.err != nil {
		t.Fatalf("waiting caller: %v", b.err)
	}
	if b.path != cache.Path(c.CacheDir, url) {
		t.Errorf("path = %q", b.path)
	}
	if fi, err := os.Stat(b.path); err != nil || fi.Size() != 4 {
		t.Errorf("cached file: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("network hits = %d, want 1", n)
	}
}

func TestFetch_metrics(t *testing.T) {
	var hits int32
	srv := clipServer(t, "12345", &hits)
	c := newCache(t.TempDir())
	c.Metrics = metrics.New(prometheus.NewRegistry())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(ctx, srv.URL+"/m.mp4"); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(c.Metrics.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v", got)
	}
	if got := testutil.ToFloat64(c.Metrics.DownloadBytes); got != 5 {
		t.Errorf("bytes = %v", got)
	}
}

func TestOffline(t *testing.T) {
	dir := t.TempDir()
	url := "https://cdn.example.com/a.mp4"
	o := Offline{CacheDir: dir}
	if _, err := o.Fetch(context.Background(), url); !errors.Is(err, ErrNotCached) {
		t.Fatalf("err = %v, want ErrNotCached", err)
	}
	if err := os.WriteFile(cache.Path(dir, url), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := o.Fetch(context.Background(), url+"?sig=1")
	if err != nil || p != cache.Path(dir, url) {
		t.Fatalf("Fetch = %q, %v", p, err)
	}
}
