// Package colour provides colour conversion, contrast, mood classification and
// palette extraction for ColorVibe.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/jmylchreest/colorvibe/internal/security"
)

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// NewRGB builds an RGB from integer channels.
// Channels outside [0, 255] are clamped rather than rejected.
func NewRGB(r, g, b int) RGB {
	return RGB{
		R: security.SafeUint8(r),
		G: security.SafeUint8(g),
		B: security.SafeUint8(b),
	}
}

// RGBToHex formats integer channels as "#rrggbb".
// Out-of-range channels are clamped to [0, 255].
func RGBToHex(r, g, b int) string {
	return NewRGB(r, g, b).Hex()
}

// HexToRGB parses a six digit hex colour with an optional leading '#'.
// Digits are case-insensitive. The boolean is false when s does not match
// that shape; the returned RGB is meaningless in that case.
func HexToRGB(s string) (RGB, bool) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return RGB{}, false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return RGB{}, false
		}
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, true
}

// MustHex parses a hex colour and panics if it is malformed.
// Only intended for package-level constants.
func MustHex(s string) RGB {
	rgb, ok := HexToRGB(s)
	if !ok {
		panic(fmt.Sprintf("colour: invalid hex literal %q", s))
	}
	return rgb
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
