package colour

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Swatches is the ordered result of quantising an image: representative
// colours with their relative weights (share of sampled pixels), dominant first.
type Swatches struct {
	Colors  []RGB
	Weights []float64
}

// NewSwatches creates Swatches sorted by descending weight.
// A nil or short weights slice is treated as equal weighting.
func NewSwatches(colors []RGB, weights []float64) *Swatches {
	s := &Swatches{
		Colors:  append([]RGB(nil), colors...),
		Weights: make([]float64, len(colors)),
	}
	for i := range s.Weights {
		if i < len(weights) {
			s.Weights[i] = weights[i]
		} else if len(colors) > 0 {
			s.Weights[i] = 1 / float64(len(colors))
		}
	}
	sort.Stable(byWeight{s})
	return s
}

// Len returns the number of colours.
func (s *Swatches) Len() int {
	return len(s.Colors)
}

// Hex returns the colours as hex strings.
func (s *Swatches) Hex() []string {
	out := make([]string, len(s.Colors))
	for i, c := range s.Colors {
		out[i] = c.Hex()
	}
	return out
}

// Get returns the colour at index.
func (s *Swatches) Get(index int) (RGB, error) {
	if index < 0 || index >= len(s.Colors) {
		return RGB{}, fmt.Errorf("index out of bounds: %d (have %d swatches)", index, len(s.Colors))
	}
	return s.Colors[index], nil
}

// SwatchJSON represents a swatch in JSON output format.
type SwatchJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	HSL    string  `json:"hsl"`
	Weight float64 `json:"weight"`
}

// ToJSON converts the swatches to indented JSON.
func (s *Swatches) ToJSON() ([]byte, error) {
	out := struct {
		Count  int          `json:"count"`
		Colors []SwatchJSON `json:"colors"`
	}{Count: s.Len(), Colors: make([]SwatchJSON, s.Len())}

	for i, c := range s.Colors {
		out.Colors[i] = SwatchJSON{Hex: c.Hex(), RGB: c, HSL: c.HSL().String(), Weight: s.Weights[i]}
	}
	return json.MarshalIndent(out, "", "  ")
}

type byWeight struct{ s *Swatches }

func (b byWeight) Len() int           { return len(b.s.Colors) }
func (b byWeight) Less(i, j int) bool { return b.s.Weights[i] > b.s.Weights[j] }
func (b byWeight) Swap(i, j int) {
	b.s.Colors[i], b.s.Colors[j] = b.s.Colors[j], b.s.Colors[i]
	b.s.Weights[i], b.s.Weights[j] = b.s.Weights[j], b.s.Weights[i]
}
