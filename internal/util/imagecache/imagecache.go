// Package imagecache keeps downloaded source images on disk so repeated
// extractions of the same URL skip the network.
package imagecache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	imgpkg "github.com/jmylchreest/colorvibe/internal/image"
)

// DefaultDir returns the default cache directory path.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "colorvibe", "images"), nil
	}
	return filepath.Join(cacheDir, "colorvibe", "images"), nil
}

// Key returns the deterministic cache file name for a URL: the first 16
// bytes of its SHA-256 in hex plus the URL path's extension.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := ""
	if i := strings.Index(url, "://"); i >= 0 {
		p := url[i+3:]
		if j := strings.IndexAny(p, "?#"); j >= 0 {
			p = p[:j]
		}
		if k := strings.IndexByte(p, '/'); k >= 0 {
			ext = strings.ToLower(path.Ext(p[k:]))
		}
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// Cache is an imgpkg.Loader that serves URLs from disk, fetching misses
// through Next.
type Cache struct {
	Dir      string
	Next     imgpkg.Loader
	MaxBytes int64

	// Refresh ignores cached copies and re-downloads.
	Refresh bool
}

// New returns a Cache in dir fetching misses with an SSRF-guarded URL loader.
func New(dir string, maxBytes int64) *Cache {
	return &Cache{Dir: dir, Next: imgpkg.NewURLLoader(maxBytes), MaxBytes: maxBytes}
}

// Load returns the image at url, downloading and storing it on a miss.
func (c *Cache) Load(ctx context.Context, url string) (*imgpkg.Source, error) {
	cached := filepath.Join(c.Dir, Key(url))

	if !c.Refresh {
		f, err := os.Open(cached) // #nosec G304 -- name derived from a hash
		switch {
		case err == nil:
			defer func() { _ = f.Close() }()
			src, err := imgpkg.Read(f, url, c.MaxBytes)
			if err == nil {
				return src, nil
			}
			// A corrupt or oversized entry is replaced below.
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read cached image: %w", err)
		}
	}

	src, err := c.Next.Load(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cached, src.Data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}
	return src, nil
}
