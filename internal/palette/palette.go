// Package palette models the five-role colour palette ColorVibe themes are
// built from, together with the operations the UI performs on it.
package palette

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmylchreest/colorvibe/internal/colour"
)

// Role identifies which part of a theme a palette member styles.
type Role string

const (
	RolePrimary    Role = "primary"
	RoleSecondary  Role = "secondary"
	RoleAccent     Role = "accent"
	RoleBackground Role = "background"
	RoleText       Role = "text"
)

// Size is the number of members in every palette.
const Size = 5

// ErrUnknownRole is returned when a role name is not one of the five roles.
var ErrUnknownRole = errors.New("unknown colour role")

// Roles returns the roles in palette order.
func Roles() [Size]Role {
	return [Size]Role{RolePrimary, RoleSecondary, RoleAccent, RoleBackground, RoleText}
}

// Index returns the palette position of the role, or -1 if it is unknown.
func (r Role) Index() int {
	for i, role := range Roles() {
		if role == r {
			return i
		}
	}
	return -1
}

// ParseRole converts a role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Color is one palette member. The hex, rgb and hsl encodings are all
// derived from RGB.
type Color struct {
	Role   Role
	RGB    colour.RGB
	Locked bool
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return c.RGB.Hex()
}

// RGBString returns the colour as "rgb(r, g, b)".
func (c Color) RGBString() string {
	return c.RGB.String()
}

// HSLString returns the colour as "hsl(H, S%, L%)".
func (c Color) HSLString() string {
	return c.RGB.HSL().String()
}

type colorJSON struct {
	Role   Role   `json:"role"`
	Hex    string `json:"hex"`
	RGB    string `json:"rgb"`
	HSL    string `json:"hsl"`
	Locked bool   `json:"locked"`
}

// MarshalJSON encodes the colour with all three string encodings.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(colorJSON{
		Role:   c.Role,
		Hex:    c.Hex(),
		RGB:    c.RGBString(),
		HSL:    c.HSLString(),
		Locked: c.Locked,
	})
}

// Palette holds exactly one Color per role in Roles() order.
// It is a value type; every operation returns a new Palette.
type Palette [Size]Color

var defaultRGB = [Size]colour.RGB{
	colour.MustHex("#3b82f6"),
	colour.MustHex("#10b981"),
	colour.MustHex("#f97316"),
	colour.MustHex("#f9fafb"),
	colour.MustHex("#111827"),
}

// Default returns the built-in palette, all members unlocked.
func Default() Palette {
	return FromRGB(defaultRGB[:])
}

// FromRGB maps colours positionally onto the roles. Roles without a colour
// take the default palette's colour.
func FromRGB(colors []colour.RGB) Palette {
	var p Palette
	for i, role := range Roles() {
		rgb := defaultRGB[i]
		if i < len(colors) {
			rgb = colors[i]
		}
		p[i] = Color{Role: role, RGB: rgb}
	}
	return p
}

// Get returns the member for role.
func (p Palette) Get(role Role) (Color, bool) {
	i := role.Index()
	if i < 0 {
		return Color{}, false
	}
	return p[i], true
}

// With replaces the member whose role matches c.Role.
func (p Palette) With(c Color) (Palette, error) {
	i := c.Role.Index()
	if i < 0 {
		return p, fmt.Errorf("%w: %q", ErrUnknownRole, c.Role)
	}
	p[i] = c
	return p, nil
}

// Lock sets the lock flag on one member.
func (p Palette) Lock(role Role, locked bool) (Palette, error) {
	i := role.Index()
	if i < 0 {
		return p, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	p[i].Locked = locked
	return p, nil
}

// Recolor sets one member's colour from a hex string. Locked members can
// still be recoloured explicitly; the lock only protects against Randomize.
func (p Palette) Recolor(role Role, hex string) (Palette, error) {
	i := role.Index()
	if i < 0 {
		return p, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	rgb, ok := colour.HexToRGB(hex)
	if !ok {
		return p, fmt.Errorf("recolor %s: %w: %q", role, colour.ErrInvalidHex, hex)
	}
	p[i].RGB = rgb
	return p, nil
}

// Rand is the random source used by Randomize. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Randomize gives every unlocked member a uniformly random colour that
// differs from its current one. Locked members are returned unchanged.
func (p Palette) Randomize(rng Rand) Palette {
	for i := range p {
		if p[i].Locked {
			continue
		}
		prev := p[i].RGB
		for p[i].RGB == prev {
			p[i].RGB = colour.NewRGB(rng.IntN(256), rng.IntN(256), rng.IntN(256))
		}
	}
	return p
}

// LockedRoles returns the roles currently locked, in palette order.
func (p Palette) LockedRoles() []Role {
	var roles []Role
	for _, c := range p {
		if c.Locked {
			roles = append(roles, c.Role)
		}
	}
	return roles
}

// HSLStrings returns each member's "hsl(...)" encoding in palette order.
func (p Palette) HSLStrings() []string {
	out := make([]string, 0, Size)
	for _, c := range p {
		out = append(out, c.HSLString())
	}
	return out
}

// Mood classifies the palette by its members' hues.
func (p Palette) Mood(opts colour.MoodOptions) colour.MoodLabel {
	return colour.ClassifyMood(p.HSLStrings(), opts)
}
