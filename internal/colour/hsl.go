package colour

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// HSL is a colour in HSL space with unrounded components.
// H is in degrees [0, 360), S and L are fractions in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String formats the colour as "hsl(H, S%, L%)" rounded to whole units.
// A hue that rounds up to 360 is reported as 0.
func (c HSL) String() string {
	h := int(math.Round(c.H))
	if h >= 360 {
		h -= 360
	}
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h, int(math.Round(c.S*100)), int(math.Round(c.L*100)))
}

// RGB converts the colour back to RGB.
func (c HSL) RGB() RGB {
	return HSLToRGB(c.H, c.S, c.L)
}

// HSL converts the colour to HSL space.
func (rgb RGB) HSL() HSL {
	h, s, l := rgbToHSL(rgb)
	return HSL{H: h, S: s, L: l}
}

// RGBToHSL converts integer channels to an "hsl(H, S%, L%)" string.
// Out-of-range channels are clamped to [0, 255].
func RGBToHSL(r, g, b int) string {
	return NewRGB(r, g, b).HSL().String()
}

// rgbToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func rgbToHSL(rgb RGB) (h, s, l float64) {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	l = (maxVal + minVal) / 2.0

	// Achromatic.
	if delta == 0 {
		return 0, 0, l
	}

	if l > 0.5 {
		s = delta / (2.0 - maxVal - minVal)
	} else {
		s = delta / (maxVal + minVal)
	}

	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}

	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, l
}

// HSLToRGB converts HSL to RGB colour space.
// h is hue in degrees, s and l are fractions in [0, 1].
func HSLToRGB(h, s, l float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

var hslPattern = regexp.MustCompile(`^hsl\((\d+),\s*(\d+)%,\s*(\d+)%\)$`)

// ParseHSL extracts the integer components from an "hsl(H, S%, L%)" string.
// The boolean is false when the string does not have that shape.
func ParseHSL(s string) (h, sat, light int, ok bool) {
	m := hslPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}
	h, _ = strconv.Atoi(m[1])
	sat, _ = strconv.Atoi(m[2])
	light, _ = strconv.Atoi(m[3])
	return h, sat, light, true
}

// HueDistance calculates the angular distance between two hues on the colour wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Abs(h1 - h2)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
