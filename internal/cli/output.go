package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jmylchreest/colorvibe/internal/colour"
	"github.com/jmylchreest/colorvibe/internal/font"
	"github.com/jmylchreest/colorvibe/internal/palette"
	"github.com/jmylchreest/colorvibe/internal/preview"
)

// Output formats shared by commands that print a palette.
const (
	formatText   = "text"
	formatJSON   = "json"
	formatExport = "export"
	formatCSS    = "css"
)

func paletteFormats() []string {
	return []string{formatText, formatJSON, formatExport, formatCSS}
}

// Swatch display modes for --preview.
const (
	previewAuto   = "auto"
	previewAlways = "always"
	previewNever  = "never"
)

// showSwatches reports whether colour blocks should be drawn on w.
func showSwatches(mode string, w io.Writer) (bool, error) {
	switch mode {
	case previewAlways:
		return true, nil
	case previewNever:
		return false, nil
	case previewAuto, "":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid preview mode: %s (valid: auto, always, never)", mode)
	}
}

// swatch renders a block of the colour with its hex on top in a readable ink.
func swatch(c colour.RGB) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(lipgloss.Color(preview.OnColor(c).Hex())).
		Padding(0, 1).
		Render(c.Hex())
}

// paletteReport is the JSON form printed by extract and shuffle.
type paletteReport struct {
	Palette  palette.Palette         `json:"palette"`
	Mood     colour.MoodLabel        `json:"mood"`
	Contrast []preview.ContrastCheck `json:"contrast"`
	FellBack bool                    `json:"fell_back,omitempty"`
	Padded   bool                    `json:"padded,omitempty"`
}

func newPaletteReport(p palette.Palette, mood colour.MoodOptions) paletteReport {
	return paletteReport{
		Palette:  p,
		Mood:     p.Mood(mood),
		Contrast: preview.ContrastReport(p),
	}
}

// formatReport renders a palette report in the requested format.
func formatReport(r paletteReport, format string, swatches bool) (string, error) {
	switch format {
	case formatText:
		return renderText(r, swatches), nil
	case formatJSON:
		var b strings.Builder
		if err := writeJSON(&b, r); err != nil {
			return "", err
		}
		return b.String(), nil
	case formatExport:
		return r.Palette.Export() + "\n", nil
	case formatCSS:
		return preview.ThemeCSS(r.Palette, font.Default()), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(paletteFormats(), ", "))
	}
}

// renderText prints one row per role followed by the mood and contrast checks.
func renderText(r paletteReport, swatches bool) string {
	headers := []string{"ROLE", "HEX", "RGB", "HSL", "LOCKED"}
	if swatches {
		headers[1] = "SWATCH"
	}
	t := NewTable(headers)
	for _, c := range r.Palette {
		hex := c.Hex()
		if swatches {
			hex = swatch(c.RGB)
		}
		locked := ""
		if c.Locked {
			locked = "yes"
		}
		t.AddRow([]string{string(c.Role), hex, c.RGBString(), c.HSLString(), locked})
	}

	var b strings.Builder
	b.WriteString(t.Render())
	fmt.Fprintf(&b, "\nMood: %s\n\n", r.Mood)

	ct := NewTable([]string{"CHECK", "RATIO", "GRADE"})
	for _, c := range r.Contrast {
		ct.AddRow([]string{c.Name, fmt.Sprintf("%.2f:1", c.Ratio), string(c.Grade)})
	}
	b.WriteString(ct.Render())
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeOutput writes to path, or to w when path is empty.
func writeOutput(w io.Writer, path, out string) error {
	if path == "" {
		_, err := io.WriteString(w, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
