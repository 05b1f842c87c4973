package materializer

import (
	"context"
	"errors"
)

// Fetcher makes a remote clip available on local disk and returns its path.
type Fetcher interface {
	// Fetch returns the local path for sourceURL, downloading it on a cache miss.
	// On failure it returns ("", err); nothing is left at the final cache path.
	Fetch(ctx context.Context, sourceURL string) (localPath string, err error)
}

var (
	// ErrEmptyDownload means the upstream answered but delivered zero bytes.
	ErrEmptyDownload = errors.New("materializer: empty download")
	// ErrNotCached is returned by Offline on a cache miss.
	ErrNotCached = errors.New("materializer: not cached")
)
