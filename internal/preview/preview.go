// Package preview renders the marketing-site mock styled by a palette.
package preview

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/jmylchreest/colorvibe/internal/app"
	"github.com/jmylchreest/colorvibe/internal/colour"
	"github.com/jmylchreest/colorvibe/internal/font"
	"github.com/jmylchreest/colorvibe/internal/palette"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	white = colour.RGB{R: 255, G: 255, B: 255}
	black = colour.RGB{}
)

// OnColor returns black or white, whichever contrasts more with bg.
func OnColor(bg colour.RGB) colour.RGB {
	if colour.ContrastRatioRGB(bg, white) >= colour.ContrastRatioRGB(bg, black) {
		return white
	}
	return black
}

// ThemeCSS returns a :root block of --preview-* custom properties for the
// palette and font.
func ThemeCSS(p palette.Palette, f font.Font) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, c := range p {
		fmt.Fprintf(&b, "  --preview-%s: %s;\n", c.Role, c.Hex())
		fmt.Fprintf(&b, "  --preview-on-%s: %s;\n", c.Role, OnColor(c.RGB).Hex())
	}
	fmt.Fprintf(&b, "  --preview-font: %s;\n", f.Family)
	b.WriteString("}\n")
	return b.String()
}

// ContrastCheck is one foreground/background pairing from the preview.
type ContrastCheck struct {
	Name       string       `json:"name"`
	Foreground string       `json:"foreground"`
	Background string       `json:"background"`
	Ratio      float64      `json:"ratio"`
	Grade      colour.Grade `json:"grade"`
}

// ContrastReport checks the pairings the preview actually uses: body text
// on the background, and white button text on primary and accent.
func ContrastReport(p palette.Palette) []ContrastCheck {
	get := func(r palette.Role) colour.RGB {
		c, _ := p.Get(r)
		return c.RGB
	}
	pairs := []struct {
		name   string
		fg, bg colour.RGB
	}{
		{name: "Text on background", fg: get(palette.RoleText), bg: get(palette.RoleBackground)},
		{name: "White on primary", fg: white, bg: get(palette.RolePrimary)},
		{name: "White on accent", fg: white, bg: get(palette.RoleAccent)},
	}

	out := make([]ContrastCheck, 0, len(pairs))
	for _, pr := range pairs {
		ratio := colour.ContrastRatioRGB(pr.fg, pr.bg)
		out = append(out, ContrastCheck{
			Name:       pr.name,
			Foreground: pr.fg.Hex(),
			Background: pr.bg.Hex(),
			Ratio:      ratio,
			Grade:      colour.GradeFor(ratio),
		})
	}
	return out
}

// FontGroup is one optgroup of the font picker.
type FontGroup struct {
	Category font.Category
	Fonts    []font.Font
}

// FontGroups returns the catalogue grouped by category, omitting empty categories.
func FontGroups() []FontGroup {
	var groups []FontGroup
	for _, cat := range font.Categories() {
		if fonts := font.ByCategory(cat); len(fonts) > 0 {
			groups = append(groups, FontGroup{Category: cat, Fonts: fonts})
		}
	}
	return groups
}

// Page is the view model for every HTML page.
type Page struct {
	app.Snapshot
	CSS        template.CSS
	Contrast   []ContrastCheck
	Fonts      []FontGroup
	Animations []app.Animation
	Notices    []app.Notice
	MaxUpload  int64
}

// NewPage builds the view model for a snapshot.
func NewPage(snap app.Snapshot, notices []app.Notice) Page {
	return Page{
		Snapshot: snap,
		// #nosec G203 -- built only from validated hex values and catalogue font families
		CSS:        template.CSS(ThemeCSS(snap.Palette, snap.Font)),
		Contrast:   ContrastReport(snap.Palette),
		Fonts:      FontGroups(),
		Animations: app.Animations(),
		Notices:    notices,
	}
}

// Template names rendered by the server.
const (
	UploadPage = "upload.html"
	ThemePage  = "theme.html"
)

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"features": func() []string { return []string{"Feature One", "Feature Two", "Feature Three"} },
		"megabytes": func(n int64) string {
			if n <= 0 {
				return "any size"
			}
			return fmt.Sprintf("%d MB", n>>20)
		},
		"ratio": func(r float64) string { return fmt.Sprintf("%.2f:1", r) },
		"gradeClass": func(g colour.Grade) string {
			return "grade-" + strings.ToLower(strings.ReplaceAll(string(g), " ", "-"))
		},
		"title": func(s any) string {
			v := fmt.Sprint(s)
			if v == "" {
				return v
			}
			return strings.ToUpper(v[:1]) + v[1:]
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
