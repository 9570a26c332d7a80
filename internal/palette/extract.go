package palette

import (
	"context"
	"errors"
	"image"

	"github.com/jmylchreest/colorvibe/internal/colour"
)

// RequestCount is how many swatches are requested from the extractor.
// Only the first Size are used; asking for more lets the quantiser settle
// on better boxes for the dominant colours.
const RequestCount = 8

// ErrNoSwatches is reported when extraction succeeds but yields nothing.
var ErrNoSwatches = errors.New("extractor returned no colours")

// ExtractResult is the outcome of deriving a palette from an image.
// Extraction never fails outright: on error Palette is the default palette,
// FellBack is set and Err holds the cause.
type ExtractResult struct {
	Palette  Palette
	Swatches *colour.Swatches
	Err      error

	// FellBack is set when Palette is the default palette because extraction failed.
	FellBack bool

	// Padded is set when fewer than Size swatches were found and the
	// remaining roles kept their default colours.
	Padded bool
}

// Extract quantises img and maps the dominant colours onto the roles in
// order. The extractor runs in its own goroutine so a cancelled ctx returns
// promptly with the default palette. Extractors implementing
// colour.ContextExtractor also stop their own work on cancellation; others
// run on in the background until they finish.
func Extract(ctx context.Context, extractor colour.Extractor, img image.Image) ExtractResult {
	return ExtractN(ctx, extractor, img, RequestCount)
}

// ExtractN is Extract with an explicit number of colours requested from the
// quantiser. Values below 1 use RequestCount.
func ExtractN(ctx context.Context, extractor colour.Extractor, img image.Image, count int) ExtractResult {
	if count < 1 {
		count = RequestCount
	}
	type outcome struct {
		s   *colour.Swatches
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := colour.ExtractContext(ctx, extractor, img, count)
		done <- outcome{s: s, err: err}
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return fallback(ctx.Err())
	case o = <-done:
	}

	if o.err != nil {
		return fallback(o.err)
	}
	if o.s == nil || o.s.Len() == 0 {
		return fallback(ErrNoSwatches)
	}

	n := min(o.s.Len(), Size)
	return ExtractResult{
		Palette:  FromRGB(o.s.Colors[:n]),
		Swatches: o.s,
		Padded:   n < Size,
	}
}

func fallback(err error) ExtractResult {
	return ExtractResult{Palette: Default(), Err: err, FellBack: true}
}
