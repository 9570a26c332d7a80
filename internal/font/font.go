// Package font holds the catalogue of typefaces offered for theme previews.
package font

import "strings"

// Category is a broad typeface classification.
type Category string

const (
	CategorySerif     Category = "serif"
	CategorySansSerif Category = "sans-serif"
	CategoryDisplay   Category = "display"
	CategoryMonospace Category = "monospace"
)

// Categories returns every category in picker order.
func Categories() []Category {
	return []Category{CategorySerif, CategorySansSerif, CategoryDisplay, CategoryMonospace}
}

// Font describes a typeface usable in the preview.
type Font struct {
	Name     string   `json:"name"`
	Family   string   `json:"family"`
	Category Category `json:"category"`

	// Stylesheet is the web font CSS URL, empty for system fonts.
	Stylesheet string `json:"stylesheet,omitempty"`
}

var catalogue = []Font{
	{
		Name:       "Inter",
		Family:     "Inter, sans-serif",
		Category:   CategorySansSerif,
		Stylesheet: "https://fonts.googleapis.com/css2?family=Inter:wght@400;700&display=swap",
	},
	{
		Name:       "Montserrat",
		Family:     "Montserrat, sans-serif",
		Category:   CategorySansSerif,
		Stylesheet: "https://fonts.googleapis.com/css2?family=Montserrat:wght@400;700&display=swap",
	},
	{
		Name:       "Playfair Display",
		Family:     "'Playfair Display', serif",
		Category:   CategorySerif,
		Stylesheet: "https://fonts.googleapis.com/css2?family=Playfair+Display:wght@400;700&display=swap",
	},
}

// All returns a copy of the catalogue in display order.
func All() []Font {
	return append([]Font(nil), catalogue...)
}

// Default returns the first catalogue entry.
func Default() Font {
	return catalogue[0]
}

// ByName looks a font up by name, ignoring case.
func ByName(name string) (Font, bool) {
	for _, f := range catalogue {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Font{}, false
}

// ByCategory returns the fonts in a category. Categories with no fonts
// yield an empty slice.
func ByCategory(cat Category) []Font {
	var out []Font
	for _, f := range catalogue {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

// Rand is the random source used by Random.
type Rand interface {
	IntN(n int) int
}

// Random picks a font uniformly from the catalogue.
func Random(rng Rand) Font {
	return catalogue[rng.IntN(len(catalogue))]
}
