package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorvibe/internal/colour"
	imgpkg "github.com/jmylchreest/colorvibe/internal/image"
	"github.com/jmylchreest/colorvibe/internal/palette"
	"github.com/jmylchreest/colorvibe/internal/util/imagecache"
)

var (
	// Extract command flags
	extractFormat  string
	extractOutput  string
	extractPreview string
	extractSeed    int64
	extractStrict  bool
	extractCache   bool
	extractRefresh bool
	extractDir     string
	extractRaw     bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image|url>",
	Short: "Extract a five colour palette from an image",
	Long: `Extract a palette from an image file or HTTPS URL.

The five most dominant colours become the primary, secondary, accent,
background and text roles in that order. When extraction fails the
default palette is printed and a warning is logged; use --strict to
fail instead.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Print the palette with swatches when stdout is a terminal
  colorvibe extract photo.jpg

  # Use k-means with a fixed seed and print JSON
  colorvibe extract --algorithm kmeans --seed 42 -f json photo.png

  # Save the download format used by the web UI
  colorvibe extract -f export -o colorvibe-palette.txt photo.webp

  # Inspect every quantised colour with its pixel share
  colorvibe extract --swatches photo.jpg

  # Emit CSS custom properties, caching the download
  colorvibe extract --cache -f css https://example.com/photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("algorithm", "a", "mediancut", "extraction algorithm (mediancut, kmeans)")
	extractCmd.Flags().Int("count", 8, "colours requested from the quantiser before merging (1-256)")
	extractCmd.Flags().String("mood", "circular", "hue averaging for the mood label (circular, arithmetic)")
	extractCmd.Flags().Int64("max-upload", 10<<20, "maximum image size in bytes")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatText, "output format (text, json, export, css)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().StringVar(&extractPreview, "preview", previewAuto, "show colour swatches (auto, always, never)")
	extractCmd.Flags().Int64Var(&extractSeed, "seed", 0, "seed for k-means (0 picks a random seed)")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "fail instead of printing the default palette")
	extractCmd.Flags().BoolVar(&extractCache, "cache", false, "keep downloaded images in the cache directory")
	extractCmd.Flags().BoolVar(&extractRefresh, "refresh", false, "re-download cached images")
	extractCmd.Flags().StringVar(&extractDir, "cache-dir", "", "image cache directory (default: user cache dir)")
	extractCmd.Flags().BoolVar(&extractRaw, "swatches", false, "print every quantised swatch with its weight as JSON instead of the palette")
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg).Named("extract")

	ec, err := cfg.ExtractorConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if extractSeed != 0 {
		ec.Seed = &extractSeed
	}
	extractor, err := colour.NewExtractor(ec)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	swatches := false
	if extractOutput == "" {
		if swatches, err = showSwatches(extractPreview, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Extract.Timeout)
	defer cancel()

	logger.Debug("loading image", "source", args[0])
	loader, err := sourceLoader(args[0], cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}
	src, err := loader.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	img, err := src.DecodeLimit(cfg.Upload.MaxPixels)
	if err != nil {
		return err
	}
	b := img.Bounds()
	logger.Debug("image loaded", "mime", src.MIME, "width", b.Dx(), "height", b.Dy())

	res := palette.ExtractN(ctx, extractor, imgpkg.Downscale(img, cfg.Extract.MaxDimension), cfg.Extract.Count)
	if res.FellBack {
		if extractStrict {
			return fmt.Errorf("failed to extract colours: %w", res.Err)
		}
		logger.Warn("extraction failed, using the default palette", "error", res.Err)
	} else {
		logger.Debug("extracted colours", "swatches", res.Swatches.Len(), "algorithm", ec.Algorithm)
	}
	if res.Padded {
		logger.Warn("image has fewer than five distinct colours, remaining roles use defaults")
	}

	if extractRaw {
		if res.Swatches == nil {
			return fmt.Errorf("no swatches extracted: %w", res.Err)
		}
		data, err := res.Swatches.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode swatches: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), extractOutput, string(data)+"\n")
	}

	report := newPaletteReport(res.Palette, cfg.MoodOptions())
	report.FellBack = res.FellBack
	report.Padded = res.Padded

	out, err := formatReport(report, extractFormat, swatches)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), extractOutput, out)
}

// sourceLoader picks the loader for a path or URL, going through the image
// cache for URLs when --cache is set.
func sourceLoader(source string, maxBytes int64) (imgpkg.Loader, error) {
	if !extractCache || !imgpkg.IsURL(source) {
		return imgpkg.NewSmartLoader(maxBytes), nil
	}
	dir := extractDir
	if dir == "" {
		var err error
		if dir, err = imagecache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	c := imagecache.New(dir, maxBytes)
	c.Refresh = extractRefresh
	return c, nil
}
