// Package app holds per-session UI state and the operations that change it.
package app

import (
	"fmt"

	"github.com/jmylchreest/colorvibe/internal/colour"
	"github.com/jmylchreest/colorvibe/internal/font"
	"github.com/jmylchreest/colorvibe/internal/palette"
)

// Animation is the entrance animation applied to preview sections.
type Animation string

const (
	AnimationNone    Animation = "none"
	AnimationFadeIn  Animation = "fade-in"
	AnimationSlideUp Animation = "slide-up"
	AnimationScaleIn Animation = "scale-in"
)

// Animations returns every animation in display order.
func Animations() []Animation {
	return []Animation{AnimationNone, AnimationFadeIn, AnimationSlideUp, AnimationScaleIn}
}

// ParseAnimation converts a name to an Animation.
func ParseAnimation(s string) (Animation, error) {
	for _, a := range Animations() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown animation: %q", s)
}

// State is everything the theme page renders from.
type State struct {
	Palette   palette.Palette `json:"palette"`
	Font      font.Font       `json:"font"`
	Animation Animation       `json:"animation"`
	HasImage  bool            `json:"has_image"`
	ImageName string          `json:"image_name,omitempty"`
}

// Snapshot is a read-only copy of State plus values derived from it.
type Snapshot struct {
	State
	Mood colour.MoodLabel `json:"mood"`
}

// NoticeLevel distinguishes informational notices from failures.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a one-shot message shown to the user after an action.
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}
