package colour

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MoodLabel is a qualitative description of a palette derived from its mean hue.
type MoodLabel string

const (
	MoodPassionate   MoodLabel = "Passionate"
	MoodEnergetic    MoodLabel = "Energetic"
	MoodNatural      MoodLabel = "Natural"
	MoodCalm         MoodLabel = "Calm"
	MoodProfessional MoodLabel = "Professional"
	MoodCreative     MoodLabel = "Creative"
	MoodBalanced     MoodLabel = "Balanced"
)

// HueAveraging selects how member hues are combined before classification.
type HueAveraging string

const (
	// HueCircular averages hues as unit vectors, so 359° and 1° average to 0°.
	HueCircular HueAveraging = "circular"

	// HueArithmetic takes the plain mean of hue degrees, so 359° and 1°
	// average to 180°. Band edges are shared with HueCircular, so a mean of
	// exactly 330° is Creative in both modes.
	HueArithmetic HueAveraging = "arithmetic"
)

// ParseHueAveraging converts a string to a HueAveraging mode.
func ParseHueAveraging(s string) (HueAveraging, error) {
	switch HueAveraging(s) {
	case HueCircular, HueArithmetic:
		return HueAveraging(s), nil
	default:
		return "", fmt.Errorf("invalid hue averaging: %s (valid: circular, arithmetic)", s)
	}
}

// MoodOptions configures mood classification.
type MoodOptions struct {
	// Averaging defaults to HueCircular when empty.
	Averaging HueAveraging
}

// DefaultMoodOptions returns circular averaging.
func DefaultMoodOptions() MoodOptions {
	return MoodOptions{Averaging: HueCircular}
}

// Hue band boundaries in degrees.
const (
	passionateMax   = 30.0
	energeticMax    = 70.0
	naturalMax      = 150.0
	calmMax         = 210.0
	professionalMax = 270.0
	creativeMax     = 330.0

	// Below this mean resultant length the hues cancel out and no direction dominates.
	minResultant = 1e-6

	// Circular means are rounded to 1/hueSnap of a degree so radian round
	// trips cannot move a hue across a band edge.
	hueSnap = 1e9
)

// ClassifyMood derives a mood label from "hsl(H, S%, L%)" strings.
// Strings that do not parse are ignored. An empty input is Balanced.
func ClassifyMood(hsl []string, opts MoodOptions) MoodLabel {
	hues := make([]float64, 0, len(hsl))
	for _, s := range hsl {
		if h, _, _, ok := ParseHSL(s); ok {
			hues = append(hues, float64(h))
		}
	}
	return ClassifyHues(hues, opts)
}

// ClassifyHues derives a mood label from hue angles in degrees.
func ClassifyHues(hues []float64, opts MoodOptions) MoodLabel {
	mean, ok := MeanHue(hues, opts.Averaging)
	if !ok {
		return MoodBalanced
	}
	return MoodForHue(mean)
}

// MeanHue averages hue angles in degrees using the given mode.
// The boolean is false when there is no meaningful mean.
func MeanHue(hues []float64, mode HueAveraging) (float64, bool) {
	if len(hues) == 0 {
		return 0, false
	}

	if mode == HueArithmetic {
		return stat.Mean(hues, nil), true
	}

	rad := make([]float64, len(hues))
	var sumSin, sumCos float64
	for i, h := range hues {
		rad[i] = h * math.Pi / 180
		sumSin += math.Sin(rad[i])
		sumCos += math.Cos(rad[i])
	}
	if math.Hypot(sumSin, sumCos)/float64(len(hues)) < minResultant {
		return 0, false
	}

	deg := stat.CircularMean(rad, nil) * 180 / math.Pi
	deg = math.Round(deg*hueSnap) / hueSnap
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg, true
}

// MoodForHue buckets a hue into exactly one mood.
// Values outside [0, 360) and NaN are Balanced.
func MoodForHue(h float64) MoodLabel {
	switch {
	case math.IsNaN(h) || h < 0 || h >= 360:
		return MoodBalanced
	case h < passionateMax:
		return MoodPassionate
	case h < energeticMax:
		return MoodEnergetic
	case h < naturalMax:
		return MoodNatural
	case h < calmMax:
		return MoodCalm
	case h < professionalMax:
		return MoodProfessional
	case h <= creativeMax:
		return MoodCreative
	default:
		return MoodPassionate
	}
}
