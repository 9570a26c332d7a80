package palette

import (
	"fmt"
	"strings"
)

// ExportFilename is the download name offered for Export output.
const ExportFilename = "colorvibe-palette.txt"

// ExportLine formats one member as "{role}: {hex} / {rgb} / {hsl}".
func (c Color) ExportLine() string {
	return fmt.Sprintf("%s: %s / %s / %s", c.Role, c.Hex(), c.RGBString(), c.HSLString())
}

// Export renders the palette as newline-joined ExportLine rows with no
// trailing newline.
func (p Palette) Export() string {
	lines := make([]string, 0, Size)
	for _, c := range p {
		lines = append(lines, c.ExportLine())
	}
	return strings.Join(lines, "\n")
}
