package colour

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Extractor defines the interface for colour quantisation algorithms.
type Extractor interface {
	// Extract reduces an image to at most count representative colours.
	Extract(img image.Image, count int) (*Swatches, error)
}

// ContextExtractor is an Extractor that stops between passes once ctx is
// done, returning ctx.Err().
type ContextExtractor interface {
	Extractor
	ExtractContext(ctx context.Context, img image.Image, count int) (*Swatches, error)
}

// ExtractContext runs ex under ctx. Extractors that do not implement
// ContextExtractor run to completion regardless of ctx.
func ExtractContext(ctx context.Context, ex Extractor, img image.Image, count int) (*Swatches, error) {
	if ce, ok := ex.(ContextExtractor); ok {
		return ce.ExtractContext(ctx, img, count)
	}
	return ex.Extract(img, count)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmMedianCut uses modified median cut quantisation.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmKMeans uses k-means clustering for colour extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmMedianCut, AlgorithmKMeans}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// ExtractorConfig holds configuration for colour extraction.
type ExtractorConfig struct {
	Algorithm  Algorithm
	ColorCount int

	// MergeDistance is the CIEDE2000 distance below which two swatches are
	// merged into the heavier one. Zero disables merging.
	MergeDistance float64

	// Seed makes k-means deterministic when set.
	Seed *int64
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:     AlgorithmMedianCut,
		ColorCount:    8,
		MergeDistance: 0.03,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s (valid algorithms: %v)", c.Algorithm, ValidAlgorithms())
	}
	if c.ColorCount < 1 {
		return fmt.Errorf("color count must be at least 1, got %d", c.ColorCount)
	}
	if c.ColorCount > 256 {
		return fmt.Errorf("color count too large: %d (maximum: 256)", c.ColorCount)
	}
	if c.MergeDistance < 0 {
		return fmt.Errorf("merge distance cannot be negative: %g", c.MergeDistance)
	}
	return nil
}

// NewExtractor creates a new Extractor for the configured algorithm.
func NewExtractor(cfg ExtractorConfig) (Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Extractor
	switch cfg.Algorithm {
	case AlgorithmMedianCut:
		base = NewMedianCutExtractor()
	case AlgorithmKMeans:
		km := NewKMeansExtractor()
		if cfg.Seed != nil {
			km = km.WithRand(rand.New(rand.NewPCG(uint64(*cfg.Seed), 0))) // #nosec G115 -- seed bits only
		}
		base = km
	}

	if cfg.MergeDistance == 0 {
		return base, nil
	}
	return &mergingExtractor{next: base, distance: cfg.MergeDistance}, nil
}

// mergingExtractor folds perceptually near-identical swatches together.
type mergingExtractor struct {
	next     Extractor
	distance float64
}

func (m *mergingExtractor) Extract(img image.Image, count int) (*Swatches, error) {
	return m.ExtractContext(context.Background(), img, count)
}

func (m *mergingExtractor) ExtractContext(ctx context.Context, img image.Image, count int) (*Swatches, error) {
	s, err := ExtractContext(ctx, m.next, img, count)
	if err != nil {
		return nil, err
	}
	return MergeSimilar(s, m.distance), nil
}

// MergeSimilar merges swatches closer than threshold (CIEDE2000) into the
// heavier swatch, summing weights. Input order is dominant first, so the
// surviving colour is always the more populous one.
func MergeSimilar(s *Swatches, threshold float64) *Swatches {
	colors := make([]RGB, 0, s.Len())
	weights := make([]float64, 0, s.Len())
	labs := make([]colorful.Color, 0, s.Len())

	for i, c := range s.Colors {
		cf := toColorful(c)
		merged := false
		for j := range labs {
			if labs[j].DistanceCIEDE2000(cf) < threshold {
				weights[j] += s.Weights[i]
				merged = true
				break
			}
		}
		if !merged {
			colors = append(colors, c)
			weights = append(weights, s.Weights[i])
			labs = append(labs, cf)
		}
	}
	return NewSwatches(colors, weights)
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
