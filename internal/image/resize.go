package image

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longest side of an image before quantisation.
const DefaultMaxDimension = 400

// Downscale shrinks img so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds, or a non-positive maxDim, are
// returned unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(h*maxDim/w, 1)
	} else {
		nw = max(w*maxDim/h, 1)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
