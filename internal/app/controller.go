package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/jmylchreest/colorvibe/internal/colour"
	"github.com/jmylchreest/colorvibe/internal/font"
	imgpkg "github.com/jmylchreest/colorvibe/internal/image"
	"github.com/jmylchreest/colorvibe/internal/palette"
)

// Rand is the random source a Controller draws from.
type Rand interface {
	IntN(n int) int
}

// Controller owns one session's State. All methods are safe for
// concurrent use.
type Controller struct {
	mu      sync.Mutex
	state   State
	image   *imgpkg.Source
	notices []Notice
	rng     Rand
	mood    colour.MoodOptions
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRand sets the random source used for shuffling and font selection.
func WithRand(rng Rand) ControllerOption {
	return func(c *Controller) { c.rng = rng }
}

// WithMoodOptions sets how the snapshot mood is computed.
func WithMoodOptions(opts colour.MoodOptions) ControllerOption {
	return func(c *Controller) { c.mood = opts }
}

// NewController returns a controller in the initial state: default palette,
// a random font, no animation and no image.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{mood: colour.DefaultMoodOptions()}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) // #nosec G404 -- UI randomness
	}
	c.state = c.initialState()
	return c
}

func (c *Controller) initialState() State {
	return State{
		Palette:   palette.Default(),
		Font:      font.Random(c.rng),
		Animation: AnimationNone,
	}
}

// Snapshot returns a copy of the current state with its mood.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Mood: c.state.Palette.Mood(c.mood)}
}

// SetPalette replaces the whole palette.
func (c *Controller) SetPalette(p palette.Palette) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Palette = p
}

// SetFont selects a font by name.
func (c *Controller) SetFont(name string) error {
	f, ok := font.ByName(name)
	if !ok {
		return fmt.Errorf("unknown font: %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Font = f
	return nil
}

// RandomFont selects a random font and returns it.
func (c *Controller) RandomFont() font.Font {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Font = font.Random(c.rng)
	return c.state.Font
}

// SetAnimation selects an animation by name.
func (c *Controller) SetAnimation(name string) error {
	a, err := ParseAnimation(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Animation = a
	return nil
}

// LockColor sets one member's lock flag.
func (c *Controller) LockColor(role palette.Role, locked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.state.Palette.Lock(role, locked)
	if err != nil {
		return err
	}
	c.state.Palette = p
	return nil
}

// ToggleLock flips one member's lock flag and returns the new value.
func (c *Controller) ToggleLock(role palette.Role) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.state.Palette.Get(role)
	if !ok {
		return false, fmt.Errorf("%w: %q", palette.ErrUnknownRole, role)
	}
	p, err := c.state.Palette.Lock(role, !cur.Locked)
	if err != nil {
		return false, err
	}
	c.state.Palette = p
	return !cur.Locked, nil
}

// Recolor sets one member's colour from a hex string. The palette is left
// unchanged on error.
func (c *Controller) Recolor(role palette.Role, hex string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.state.Palette.Recolor(role, hex)
	if err != nil {
		return err
	}
	c.state.Palette = p
	return nil
}

// Shuffle randomises every unlocked member.
func (c *Controller) Shuffle() palette.Palette {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Palette = c.state.Palette.Randomize(c.rng)
	return c.state.Palette
}

// ApplyImage installs an uploaded image and the palette extracted from it,
// queueing the notice the user should see.
func (c *Controller) ApplyImage(src *imgpkg.Source, res palette.ExtractResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.image = src
	c.state.HasImage = src != nil
	c.state.ImageName = ""
	if src != nil {
		c.state.ImageName = src.Name
	}
	c.state.Palette = res.Palette

	switch {
	case res.FellBack:
		c.notices = append(c.notices, Notice{
			Level:       NoticeError,
			Title:       "Error extracting colors",
			Description: "Please try with a different image",
		})
	default:
		c.notices = append(c.notices, Notice{
			Level:       NoticeInfo,
			Title:       "Colors extracted",
			Description: "We've generated a palette based on your image",
		})
	}
}

// RejectImage records a failed upload. State is left unchanged.
func (c *Controller) RejectImage(err error) {
	n := Notice{
		Level:       NoticeError,
		Title:       "Error processing image",
		Description: "Please try again or use a different image",
	}
	switch {
	case errors.Is(err, imgpkg.ErrDecodeImage):
		n.Title = "Error loading image"
		n.Description = "Please try with a different image"
	case errors.Is(err, imgpkg.ErrUnsupportedType):
		n.Title = "Invalid file type"
		n.Description = "Please upload a JPEG, PNG, WebP or GIF image"
	case errors.Is(err, imgpkg.ErrTooLarge):
		n.Title = "Image too large"
		n.Description = "Please upload a smaller image"
	}
	c.Notify(n)
}

// Image returns the uploaded source image, if any.
func (c *Controller) Image() (*imgpkg.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image, c.image != nil
}

// Reset returns to the initial state: default palette, a new random font,
// no animation and no image.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = nil
	c.state = c.initialState()
}

// Notify queues a notice for the next page render.
func (c *Controller) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// TakeNotices returns and clears the queued notices.
func (c *Controller) TakeNotices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notices
	c.notices = nil
	return n
}
