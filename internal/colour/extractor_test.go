package colour

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// stripes builds an image with one vertical band per colour, widths
// proportional to the given pixel counts.
func stripes(colors []color.Color, widths []int) image.Image {
	total := 0
	for _, w := range widths {
		total += w
	}
	img := image.NewNRGBA(image.Rect(0, 0, total, 10))
	x := 0
	for i, c := range colors {
		for dx := 0; dx < widths[i]; dx++ {
			for y := 0; y < 10; y++ {
				img.Set(x+dx, y, c)
			}
		}
		x += widths[i]
	}
	return img
}

func near(a, b RGB, tolerance int) bool {
	return absDiff(a.R, b.R) <= tolerance && absDiff(a.G, b.G) <= tolerance && absDiff(a.B, b.B) <= tolerance
}

func weightSum(s *Swatches) float64 {
	sum := 0.0
	for _, w := range s.Weights {
		sum += w
	}
	return sum
}

func TestMedianCutExtract(t *testing.T) {
	red := color.NRGBA{R: 220, G: 30, B: 30, A: 255}
	blue := color.NRGBA{R: 30, G: 60, B: 200, A: 255}
	img := stripes([]color.Color{red, blue}, []int{30, 10})

	s, err := NewMedianCutExtractor().Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Extract() returned %d swatches, want 2", s.Len())
	}
	if !near(s.Colors[0], ToRGB(red), 8) {
		t.Errorf("dominant swatch = %v, want near %v", s.Colors[0], ToRGB(red))
	}
	if !near(s.Colors[1], ToRGB(blue), 8) {
		t.Errorf("second swatch = %v, want near %v", s.Colors[1], ToRGB(blue))
	}
	if math.Abs(s.Weights[0]-0.75) > 1e-9 {
		t.Errorf("dominant weight = %v, want 0.75", s.Weights[0])
	}
	if math.Abs(weightSum(s)-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", weightSum(s))
	}
}

func TestMedianCutManyColours(t *testing.T) {
	var colors []color.Color
	var widths []int
	for i := range 12 {
		colors = append(colors, color.NRGBA{R: uint8(i * 20), G: uint8(240 - i*20), B: uint8(i * 10), A: 255})
		widths = append(widths, i+1)
	}
	img := stripes(colors, widths)

	s, err := NewMedianCutExtractor().Extract(img, 8)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s.Len() == 0 || s.Len() > 8 {
		t.Fatalf("Extract() returned %d swatches, want 1..8", s.Len())
	}
	for i := 1; i < s.Len(); i++ {
		if s.Weights[i] > s.Weights[i-1] {
			t.Errorf("swatches not sorted by weight at %d: %v > %v", i, s.Weights[i], s.Weights[i-1])
		}
	}
}

func TestMedianCutSkipsTransparentAndWhite(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
	}{
		{name: "transparent", color: color.NRGBA{R: 10, G: 10, B: 10, A: 0}},
		{name: "near white", color: color.NRGBA{R: 252, G: 253, B: 254, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := stripes([]color.Color{tt.color}, []int{5})
			if _, err := NewMedianCutExtractor().Extract(img, 5); err == nil {
				t.Error("Extract() expected error when no usable pixels exist")
			}
		})
	}
}

func TestExtractorsRejectBadInput(t *testing.T) {
	img := stripes([]color.Color{color.Black}, []int{2})
	extractors := map[string]Extractor{
		"mediancut": NewMedianCutExtractor(),
		"kmeans":    NewKMeansExtractor(),
	}
	for name, e := range extractors {
		t.Run(name, func(t *testing.T) {
			if _, err := e.Extract(nil, 5); err == nil {
				t.Error("expected error for nil image")
			}
			if _, err := e.Extract(img, 0); err == nil {
				t.Error("expected error for zero count")
			}
			if _, err := e.Extract(img, 257); err == nil {
				t.Error("expected error for oversized count")
			}
		})
	}
}

func TestKMeansFewUniqueColours(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	img := stripes([]color.Color{red, green}, []int{1, 3})

	s, err := NewKMeansExtractor().Extract(img, 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Extract() returned %d swatches, want 2", s.Len())
	}
	if s.Colors[0] != ToRGB(green) {
		t.Errorf("dominant swatch = %v, want %v", s.Colors[0], ToRGB(green))
	}
}

func TestKMeansSeededIsDeterministic(t *testing.T) {
	var colors []color.Color
	var widths []int
	for i := range 10 {
		colors = append(colors, color.NRGBA{R: uint8(i * 25), G: uint8(i * 7), B: uint8(255 - i*25), A: 255})
		widths = append(widths, 3)
	}
	img := stripes(colors, widths)

	seed := int64(42)
	cfg := ExtractorConfig{Algorithm: AlgorithmKMeans, ColorCount: 4, Seed: &seed}

	run := func() *Swatches {
		e, err := NewExtractor(cfg)
		if err != nil {
			t.Fatalf("NewExtractor() error = %v", err)
		}
		s, err := e.Extract(img, cfg.ColorCount)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		return s
	}

	a, b := run(), run()
	if a.Len() != 4 {
		t.Fatalf("Extract() returned %d swatches, want 4", a.Len())
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Errorf("seeded runs differ at %d: %v vs %v", i, a.Colors[i], b.Colors[i])
		}
	}
	if math.Abs(weightSum(a)-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", weightSum(a))
	}
}

func TestExtractorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExtractorConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultExtractorConfig()},
		{name: "kmeans", cfg: ExtractorConfig{Algorithm: AlgorithmKMeans, ColorCount: 5}},
		{name: "unknown algorithm", cfg: ExtractorConfig{Algorithm: "octree", ColorCount: 5}, wantErr: true},
		{name: "zero count", cfg: ExtractorConfig{Algorithm: AlgorithmMedianCut}, wantErr: true},
		{name: "too many", cfg: ExtractorConfig{Algorithm: AlgorithmMedianCut, ColorCount: 300}, wantErr: true},
		{name: "negative merge", cfg: ExtractorConfig{Algorithm: AlgorithmMedianCut, ColorCount: 5, MergeDistance: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, nerr := NewExtractor(tt.cfg); (nerr != nil) != tt.wantErr {
				t.Errorf("NewExtractor() error = %v, wantErr %v", nerr, tt.wantErr)
			}
		})
	}
}

func TestMergeSimilar(t *testing.T) {
	s := NewSwatches(
		[]RGB{{R: 100, G: 100, B: 100}, {R: 200, G: 20, B: 20}, {R: 101, G: 100, B: 100}},
		[]float64{0.5, 0.3, 0.2},
	)

	merged := MergeSimilar(s, 0.03)
	if merged.Len() != 2 {
		t.Fatalf("MergeSimilar() left %d swatches, want 2", merged.Len())
	}
	if merged.Colors[0] != (RGB{R: 100, G: 100, B: 100}) {
		t.Errorf("surviving colour = %v, want the heavier grey", merged.Colors[0])
	}
	if math.Abs(merged.Weights[0]-0.7) > 1e-9 {
		t.Errorf("merged weight = %v, want 0.7", merged.Weights[0])
	}
}

func TestNewSwatchesSortsAndFillsWeights(t *testing.T) {
	s := NewSwatches([]RGB{{R: 1}, {R: 2}, {R: 3}}, []float64{0.1, 0.6, 0.3})
	want := []uint8{2, 3, 1}
	for i, r := range want {
		if s.Colors[i].R != r {
			t.Errorf("Colors[%d].R = %d, want %d", i, s.Colors[i].R, r)
		}
	}

	eq := NewSwatches([]RGB{{R: 1}, {R: 2}}, nil)
	for i, w := range eq.Weights {
		if w != 0.5 {
			t.Errorf("Weights[%d] = %v, want 0.5", i, w)
		}
	}

	if _, err := eq.Get(2); err == nil {
		t.Error("Get(2) expected out of bounds error")
	}
}

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 200), A: 255})
		}
	}
	return img
}

func TestExtractContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	km := NewKMeansExtractor()
	tests := []struct {
		name string
		ex   Extractor
	}{
		{name: "median cut", ex: NewMedianCutExtractor()},
		{name: "kmeans", ex: km},
		{name: "merging", ex: &mergingExtractor{next: NewMedianCutExtractor(), distance: 0.03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractContext(ctx, tt.ex, gradient(40, 40), 8); !errors.Is(err, context.Canceled) {
				t.Errorf("ExtractContext() error = %v, want context.Canceled", err)
			}
			if _, err := ExtractContext(context.Background(), tt.ex, gradient(40, 40), 8); err != nil {
				t.Errorf("ExtractContext() with live context error = %v", err)
			}
		})
	}
}
