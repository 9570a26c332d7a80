// Package image loads, validates and prepares source images for colour
// extraction.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/colorvibe/internal/security"
	httputil "github.com/jmylchreest/colorvibe/internal/util/http"
)

var (
	// ErrDecodeImage is returned when image bytes cannot be decoded.
	ErrDecodeImage = errors.New("failed to decode image")

	// ErrUnsupportedType is returned when the content is not an allowed image type.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("image too large")
)

// DefaultMaxBytes is the default upload size limit.
const DefaultMaxBytes = 10 << 20

// DefaultMaxPixels is the default limit on decoded image area.
const DefaultMaxPixels = 40_000_000

// AllowedTypes returns the MIME types accepted as source images.
func AllowedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
}

// Source is a raw, type-checked image as received from the user.
type Source struct {
	Name string
	MIME string
	Data []byte
}

// Decode decodes the source bytes into an image no larger than DefaultMaxPixels.
func (s *Source) Decode() (image.Image, error) {
	return s.DecodeLimit(DefaultMaxPixels)
}

// DecodeLimit decodes the source bytes after checking the dimensions in the
// image header. Images whose width times height exceeds maxPixels are
// rejected with ErrTooLarge before any pixel data is allocated.
func (s *Source) DecodeLimit(maxPixels int64) (image.Image, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(s.Data))
	if err != nil {
		return nil, fmt.Errorf("%w (format: %s): %v", ErrDecodeImage, format, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d %s image exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, format, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(s.Data))
	if err != nil {
		return nil, fmt.Errorf("%w (format: %s): %v", ErrDecodeImage, format, err)
	}
	return img, nil
}

// Read reads at most maxBytes from r, sniffs the content type and rejects
// anything that is not an allowed image type.
func Read(r io.Reader, name string, maxBytes int64) (*Source, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		if errors.Is(err, security.ErrSizeLimit) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return FromBytes(data, name)
}

// FromBytes sniffs data and wraps it in a Source.
func FromBytes(data []byte, name string) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedType)
	}
	mt := mimetype.Detect(data)
	if !slices.ContainsFunc(AllowedTypes(), mt.Is) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}
	return &Source{Name: name, MIME: mt.String(), Data: data}, nil
}

// Loader fetches a source image by path or URL.
type Loader interface {
	Load(ctx context.Context, path string) (*Source, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	MaxBytes int64
}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader(maxBytes int64) *FileLoader {
	return &FileLoader{MaxBytes: maxBytes}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(_ context.Context, path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return Read(file, filepath.Base(path), l.MaxBytes)
}

// URLLoader loads images over HTTPS from public hosts.
type URLLoader struct {
	MaxBytes int64
	Options  httputil.FetchOptions

	// Validate checks the URL before fetching. Defaults to security.ValidateHTTPURL.
	Validate func(string) error
}

// NewURLLoader creates a URLLoader with SSRF validation enabled.
func NewURLLoader(maxBytes int64) *URLLoader {
	return &URLLoader{MaxBytes: maxBytes, Validate: security.ValidateHTTPURL}
}

// Load fetches and type-checks an image from url.
func (l *URLLoader) Load(ctx context.Context, url string) (*Source, error) {
	if l.Validate != nil {
		if err := l.Validate(url); err != nil {
			return nil, fmt.Errorf("refusing to fetch image: %w", err)
		}
	}

	opts := l.Options
	opts.MaxBytes = l.MaxBytes
	data, err := httputil.Fetch(ctx, url, opts)
	if err != nil {
		if errors.Is(err, httputil.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrTooLarge, err)
		}
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	name := url
	if i := strings.LastIndexByte(url, '/'); i >= 0 && i < len(url)-1 {
		name = url[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return FromBytes(data, name)
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	files *FileLoader
	urls  *URLLoader
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(maxBytes int64) *SmartLoader {
	return &SmartLoader{
		files: NewFileLoader(maxBytes),
		urls:  NewURLLoader(maxBytes),
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (*Source, error) {
	if IsURL(path) {
		return l.urls.Load(ctx, path)
	}
	return l.files.Load(ctx, path)
}

// IsURL reports whether path looks like an HTTP(S) URL rather than a file.
func IsURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
