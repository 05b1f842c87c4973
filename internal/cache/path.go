// Package cache derives content-addressed cache locations for remote clips.
// Everything here is pure so callers and tests can predict file names without I/O.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"

	"github.com/snapetech/clipstock/internal/safeurl"
)

const (
	filePrefix = "vid-"
	fileExt    = ".mp4"
)

// Key is the md5 hex digest of sourceURL with its query string removed.
// Same URL (ignoring query) always yields the same key.
func Key(sourceURL string) string {
	sum := md5.Sum([]byte(safeurl.StripQuery(sourceURL)))
	return hex.EncodeToString(sum[:])
}

// Path returns the final cache file path for sourceURL. A non-empty file here is complete.
func Path(cacheDir, sourceURL string) string {
	return filepath.Join(cacheDir, filePrefix+Key(sourceURL)+fileExt)
}

// PartialPattern is the os.CreateTemp pattern used while downloading sourceURL.
// The leading dot keeps temp files out of casual listings; rename to Path when complete.
func PartialPattern(sourceURL string) string {
	return "." + filePrefix + Key(sourceURL) + "-*.partial"
}
