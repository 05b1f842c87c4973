package materializer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/snapetech/clipstock/internal/cache"
	"github.com/snapetech/clipstock/internal/httpclient"
	"github.com/snapetech/clipstock/internal/safeurl"
)

// downloadToFile streams sourceURL into a temp file next to finalPath and renames it
// into place only once the body is complete and non-empty. Rename is atomic within the
// cache dir, so a racing process either sees nothing or the whole file.
func downloadToFile(ctx context.Context, client *http.Client, policy httpclient.RetryPolicy, authorize func(*http.Request), sourceURL, finalPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)
	if authorize != nil {
		authorize(req)
	}
	resp, err := httpclient.DoWithRetry(ctx, client, req, policy)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", safeurl.Redact(sourceURL), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("get %s: %s", safeurl.Redact(sourceURL), resp.Status)
	}

	dir := filepath.Dir(finalPath)
	tmp, err := os.CreateTemp(dir, cache.PartialPattern(sourceURL))
	if err != nil {
		return 0, fmt.Errorf("create partial: %w", err)
	}
	tmpName := tmp.Name()
	n, copyErr := io.Copy(tmp, resp.Body)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmpName)
		return 0, fmt.Errorf("write %s: %w", tmpName, copyErr)
	case syncErr != nil:
		os.Remove(tmpName)
		return 0, fmt.Errorf("sync %s: %w", tmpName, syncErr)
	case closeErr != nil:
		os.Remove(tmpName)
		return 0, fmt.Errorf("close %s: %w", tmpName, closeErr)
	case n == 0:
		os.Remove(tmpName)
		return 0, ErrEmptyDownload
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return n, nil
}
