package colour

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidHex is returned when a hex colour string cannot be parsed.
var ErrInvalidHex = errors.New("invalid hex colour")

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c RGB) float64 {
	r := gammaCorrect(float64(c.R) / 255.0)
	g := gammaCorrect(float64(c.G) / 255.0)
	b := gammaCorrect(float64(c.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatioRGB calculates the WCAG 2.0 contrast ratio between two colours.
// Returns a value between 1 and 21, where 21 is black against white.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatioRGB(c1, c2 RGB) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ContrastRatio calculates the contrast ratio between two hex colours.
// An unparseable argument yields an error wrapping ErrInvalidHex.
func ContrastRatio(hex1, hex2 string) (float64, error) {
	c1, ok := HexToRGB(hex1)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex1)
	}
	c2, ok := HexToRGB(hex2)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex2)
	}
	return ContrastRatioRGB(c1, c2), nil
}

// Grade is a WCAG conformance level for a contrast ratio.
type Grade string

const (
	GradeAAA     Grade = "AAA"
	GradeAA      Grade = "AA"
	GradeAALarge Grade = "AA Large"
	GradeFail    Grade = "Fail"
)

// GradeFor returns the best WCAG level the ratio satisfies for body text.
func GradeFor(ratio float64) Grade {
	switch {
	case ratio >= 7:
		return GradeAAA
	case ratio >= 4.5:
		return GradeAA
	case ratio >= 3:
		return GradeAALarge
	default:
		return GradeFail
	}
}
