package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorvibe/internal/colour"
)

var contrastJSON bool

// contrastCmd represents the contrast command
var contrastCmd = &cobra.Command{
	Use:   "contrast <hex> <hex>",
	Short: "Print the WCAG contrast ratio of two colours",
	Long: `Print the WCAG 2.0 contrast ratio of two hex colours and the best
conformance level it meets for body text (AAA, AA, AA Large or Fail).

Examples:
  colorvibe contrast "#111827" "#f9fafb"
  colorvibe contrast ffffff 3b82f6 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runContrast,
}

func init() {
	contrastCmd.Flags().BoolVar(&contrastJSON, "json", false, "print the result as JSON")
}

type contrastResult struct {
	Foreground string       `json:"foreground"`
	Background string       `json:"background"`
	Ratio      float64      `json:"ratio"`
	Grade      colour.Grade `json:"grade"`
}

func runContrast(cmd *cobra.Command, args []string) error {
	ratio, err := colour.ContrastRatio(args[0], args[1])
	if err != nil {
		return err
	}
	fg, _ := colour.HexToRGB(args[0])
	bg, _ := colour.HexToRGB(args[1])
	res := contrastResult{
		Foreground: fg.Hex(),
		Background: bg.Hex(),
		Ratio:      ratio,
		Grade:      colour.GradeFor(ratio),
	}

	if contrastJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s on %s: %.2f:1 (%s)\n", res.Foreground, res.Background, res.Ratio, res.Grade)
	return err
}
