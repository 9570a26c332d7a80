package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorvibe/internal/palette"
)

var (
	shuffleColors  []string
	shuffleLock    []string
	shuffleSeed    uint64
	shuffleFormat  string
	shufflePreview string
)

// shuffleCmd represents the shuffle command
var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Randomise the unlocked colours of a palette",
	Long: `Start from the default palette, apply any --color overrides, then give
every role not named by --lock a random colour.

Examples:
  # A fully random palette
  colorvibe shuffle

  # Keep a brand blue as primary and randomise the rest
  colorvibe shuffle --color primary=#1d4ed8 --lock primary

  # Reproducible output
  colorvibe shuffle --seed 7 -f json`,
	Args: cobra.NoArgs,
	RunE: runShuffle,
}

func init() {
	shuffleCmd.Flags().StringArrayVar(&shuffleColors, "color", nil, "set a role before shuffling (role=#rrggbb, repeatable)")
	shuffleCmd.Flags().StringSliceVar(&shuffleLock, "lock", nil, "roles to keep (primary, secondary, accent, background, text)")
	shuffleCmd.Flags().Uint64Var(&shuffleSeed, "seed", 0, "random seed (0 picks a random seed)")
	shuffleCmd.Flags().StringVarP(&shuffleFormat, "format", "f", formatText, "output format (text, json, export, css)")
	shuffleCmd.Flags().StringVar(&shufflePreview, "preview", previewAuto, "show colour swatches (auto, always, never)")
	shuffleCmd.Flags().String("mood", "circular", "hue averaging for the mood label (circular, arithmetic)")
}

// basePalette applies role=hex overrides and locks to the default palette.
func basePalette(colors, locks []string) (palette.Palette, error) {
	p := palette.Default()
	for _, kv := range colors {
		name, hex, ok := strings.Cut(kv, "=")
		if !ok {
			return p, fmt.Errorf("invalid --color %q: want role=#rrggbb", kv)
		}
		role, err := palette.ParseRole(strings.TrimSpace(name))
		if err != nil {
			return p, err
		}
		if p, err = p.Recolor(role, strings.TrimSpace(hex)); err != nil {
			return p, err
		}
	}
	for _, name := range locks {
		role, err := palette.ParseRole(strings.TrimSpace(name))
		if err != nil {
			return p, err
		}
		if p, err = p.Lock(role, true); err != nil {
			return p, err
		}
	}
	return p, nil
}

func runShuffle(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := basePalette(shuffleColors, shuffleLock)
	if err != nil {
		return err
	}

	seed := shuffleSeed
	if seed == 0 {
		seed = rand.Uint64() // #nosec G404 -- palette randomness
	}
	newLogger(cmd, cfg).Debug("shuffling palette", "seed", seed, "locked", p.LockedRoles())
	p = p.Randomize(rand.New(rand.NewPCG(seed, seed))) // #nosec G404 -- palette randomness

	swatches, err := showSwatches(shufflePreview, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	out, err := formatReport(newPaletteReport(p, cfg.MoodOptions()), shuffleFormat, swatches)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), "", out)
}
