package materializer

import (
	"context"

	"github.com/snapetech/clipstock/internal/cache"
)

// Offline serves clips from CacheDir only. Misses return ErrNotCached; it never touches the network.
type Offline struct {
	CacheDir string
}

func (o Offline) Fetch(ctx context.Context, sourceURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := cache.Path(o.CacheDir, sourceURL)
	if cached(p) {
		return p, nil
	}
	return "", ErrNotCached
}
