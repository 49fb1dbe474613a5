package operations

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Resizer scales images down so they fit inside a bounding box.
type Resizer struct {
	maxWidth  int
	maxHeight int
	scaler    xdraw.Scaler
}

func NewResizer(maxWidth, maxHeight int) *Resizer {
	return &Resizer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		scaler:    xdraw.CatmullRom,
	}
}

// Fit returns img itself when it already fits; images are never enlarged.
func (r *Resizer) Fit(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := FitDimensions(bounds.Dx(), bounds.Dy(), r.maxWidth, r.maxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		return img
	}

	rect := image.Rect(0, 0, width, height)

	// Paletted sources stay on their own palette so a transparent index survives.
	if src, ok := img.(*image.Paletted); ok {
		dst := image.NewPaletted(rect, src.Palette)
		xdraw.NearestNeighbor.Scale(dst, rect, src, bounds, xdraw.Src, nil)
		return dst
	}

	dst := image.NewRGBA(rect)
	r.scaler.Scale(dst, rect, img, bounds, xdraw.Src, nil)
	return dst
}

// FitDimensions computes the contain-within-bounds size for width x height,
// preserving aspect ratio and never upscaling.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))

	newWidth := clamp(int(math.Round(float64(width)*ratio)), 1, maxWidth)
	newHeight := clamp(int(math.Round(float64(height)*ratio)), 1, maxHeight)

	return newWidth, newHeight
}

func clamp(value, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(value))))
}
