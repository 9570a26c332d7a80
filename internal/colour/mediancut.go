package colour

import (
	"context"
	"fmt"
	"image"
	"sort"
)

const (
	sigBits   = 5
	rShift    = 8 - sigBits
	histSize  = 1 << (3 * sigBits)
	cellWidth = 1 << rShift

	// Pixels more transparent than this are ignored.
	alphaThreshold = 125
	// Pixels brighter than this on every channel are treated as page background.
	nearWhite = 250

	// Share of the target count produced by population-ordered splitting;
	// the rest is split by population x volume.
	fractByPopulation = 0.75
	maxIterations     = 1000
)

// MedianCutExtractor implements modified median cut quantisation.
// The colour cube is reduced to a 5-bit histogram, then boxes are split
// along their widest channel at the population median.
type MedianCutExtractor struct {
	quality int
}

// NewMedianCutExtractor creates a MedianCutExtractor sampling every pixel.
func NewMedianCutExtractor() *MedianCutExtractor {
	return &MedianCutExtractor{quality: 1}
}

// Extract quantises the image into at most count swatches.
func (e *MedianCutExtractor) Extract(img image.Image, count int) (*Swatches, error) {
	return e.ExtractContext(context.Background(), img, count)
}

// ExtractContext is Extract, checking ctx between box splits.
func (e *MedianCutExtractor) ExtractContext(ctx context.Context, img image.Image, count int) (*Swatches, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}
	if count > 256 {
		return nil, fmt.Errorf("color count too large: %d (maximum: 256)", count)
	}

	hist, total := e.histogram(img)
	if total == 0 {
		return nil, fmt.Errorf("no opaque pixels found in image")
	}

	boxes := []*vbox{newVBox(hist)}
	popTarget := max(int(fractByPopulation*float64(count)), 1)
	boxes, err := splitBoxes(ctx, boxes, popTarget, func(b *vbox) float64 { return float64(b.count) })
	if err != nil {
		return nil, err
	}
	boxes, err = splitBoxes(ctx, boxes, count, func(b *vbox) float64 { return float64(b.count) * float64(b.volume()) })
	if err != nil {
		return nil, err
	}

	colors := make([]RGB, 0, len(boxes))
	weights := make([]float64, 0, len(boxes))
	for _, b := range boxes {
		if b.count == 0 {
			continue
		}
		colors = append(colors, b.average())
		weights = append(weights, float64(b.count)/float64(total))
	}
	return NewSwatches(colors, weights), nil
}

func histIndex(r, g, b int) int {
	return r<<(2*sigBits) | g<<sigBits | b
}

func (e *MedianCutExtractor) histogram(img image.Image) ([]int, int) {
	hist := make([]int, histSize)
	total := 0
	bounds := img.Bounds()
	step := max(e.quality, 1)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a>>8 < alphaThreshold {
				continue
			}
			r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
			if r8 > nearWhite && g8 > nearWhite && b8 > nearWhite {
				continue
			}
			hist[histIndex(r8>>rShift, g8>>rShift, b8>>rShift)]++
			total++
		}
	}
	return hist, total
}

// vbox is an axis-aligned box in the quantised colour cube.
type vbox struct {
	r1, r2, g1, g2, b1, b2 int
	hist                   []int
	count                  int
}

func newVBox(hist []int) *vbox {
	const top = 1<<sigBits - 1
	b := &vbox{r2: top, g2: top, b2: top, hist: hist}
	b.tighten()
	return b
}

func (b *vbox) clone() *vbox {
	cp := *b
	return &cp
}

func (b *vbox) volume() int {
	return (b.r2 - b.r1 + 1) * (b.g2 - b.g1 + 1) * (b.b2 - b.b1 + 1)
}

// tighten shrinks the box to the bounds of its populated cells and recounts.
func (b *vbox) tighten() {
	r1, g1, b1 := 1<<sigBits, 1<<sigBits, 1<<sigBits
	r2, g2, b2 := -1, -1, -1
	n := 0
	for r := b.r1; r <= b.r2; r++ {
		for g := b.g1; g <= b.g2; g++ {
			for bl := b.b1; bl <= b.b2; bl++ {
				h := b.hist[histIndex(r, g, bl)]
				if h == 0 {
					continue
				}
				n += h
				r1, r2 = min(r1, r), max(r2, r)
				g1, g2 = min(g1, g), max(g2, g)
				b1, b2 = min(b1, bl), max(b2, bl)
			}
		}
	}
	b.count = n
	if n > 0 {
		b.r1, b.r2, b.g1, b.g2, b.b1, b.b2 = r1, r2, g1, g2, b1, b2
	}
}

// average returns the population-weighted mean colour of the box.
func (b *vbox) average() RGB {
	var total, rs, gs, bs float64
	for r := b.r1; r <= b.r2; r++ {
		for g := b.g1; g <= b.g2; g++ {
			for bl := b.b1; bl <= b.b2; bl++ {
				h := float64(b.hist[histIndex(r, g, bl)])
				total += h
				rs += h * (float64(r) + 0.5) * cellWidth
				gs += h * (float64(g) + 0.5) * cellWidth
				bs += h * (float64(bl) + 0.5) * cellWidth
			}
		}
	}
	if total == 0 {
		return NewRGB(
			cellWidth*(b.r1+b.r2+1)/2,
			cellWidth*(b.g1+b.g2+1)/2,
			cellWidth*(b.b1+b.b2+1)/2,
		)
	}
	return NewRGB(int(rs/total), int(gs/total), int(bs/total))
}

// channel selects one axis of a vbox.
type channel int

const (
	chanR channel = iota
	chanG
	chanB
)

func (b *vbox) bounds(c channel) (lo, hi int) {
	switch c {
	case chanR:
		return b.r1, b.r2
	case chanG:
		return b.g1, b.g2
	default:
		return b.b1, b.b2
	}
}

func (b *vbox) setBounds(c channel, lo, hi int) {
	switch c {
	case chanR:
		b.r1, b.r2 = lo, hi
	case chanG:
		b.g1, b.g2 = lo, hi
	default:
		b.b1, b.b2 = lo, hi
	}
}

// sliceCount counts pixels in the plane where channel c equals v.
func (b *vbox) sliceCount(c channel, v int) int {
	n := 0
	switch c {
	case chanR:
		for g := b.g1; g <= b.g2; g++ {
			for bl := b.b1; bl <= b.b2; bl++ {
				n += b.hist[histIndex(v, g, bl)]
			}
		}
	case chanG:
		for r := b.r1; r <= b.r2; r++ {
			for bl := b.b1; bl <= b.b2; bl++ {
				n += b.hist[histIndex(r, v, bl)]
			}
		}
	default:
		for r := b.r1; r <= b.r2; r++ {
			for g := b.g1; g <= b.g2; g++ {
				n += b.hist[histIndex(r, g, v)]
			}
		}
	}
	return n
}

// split cuts the box at the population median of its widest channel.
// The second box is nil when the box cannot be split.
func (b *vbox) split() (*vbox, *vbox) {
	if b.count <= 1 {
		return b.clone(), nil
	}

	rw, gw, bw := b.r2-b.r1, b.g2-b.g1, b.b2-b.b1
	c := chanB
	switch {
	case rw >= gw && rw >= bw:
		c = chanR
	case gw >= rw && gw >= bw:
		c = chanG
	}

	lo, hi := b.bounds(c)
	if lo == hi {
		return b.clone(), nil
	}

	partial := make([]int, hi-lo+1)
	sum := 0
	for v := lo; v <= hi; v++ {
		sum += b.sliceCount(c, v)
		partial[v-lo] = sum
	}

	// First plane where the cumulative population passes half.
	median := lo
	for v := lo; v <= hi; v++ {
		if partial[v-lo] > sum/2 {
			median = v
			break
		}
	}

	// Cut towards the longer side so both halves stay populated.
	left, right := median-lo, hi-median
	var cut int
	if left <= right {
		cut = min(hi-1, median+right/2)
	} else {
		cut = max(lo, median-1-left/2)
	}
	for cut < hi-1 && partial[cut-lo] == 0 {
		cut++
	}
	for cut > lo && partial[cut-lo] == sum {
		cut--
	}

	b1, b2 := b.clone(), b.clone()
	b1.setBounds(c, lo, cut)
	b2.setBounds(c, cut+1, hi)
	b1.tighten()
	b2.tighten()
	if b2.count == 0 {
		return b1, nil
	}
	if b1.count == 0 {
		return b2, nil
	}
	return b1, b2
}

// splitBoxes repeatedly splits the highest priority box until target boxes
// exist or no further progress is possible.
func splitBoxes(ctx context.Context, boxes []*vbox, target int, priority func(*vbox) float64) ([]*vbox, error) {
	for iter := 0; len(boxes) < target && iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sort.SliceStable(boxes, func(i, j int) bool { return priority(boxes[i]) > priority(boxes[j]) })

		split := false
		for i, b := range boxes {
			b1, b2 := b.split()
			if b2 == nil {
				continue
			}
			boxes = append(boxes[:i:i], append([]*vbox{b1, b2}, boxes[i+1:]...)...)
			split = true
			break
		}
		if !split {
			break
		}
	}
	return boxes, nil
}
