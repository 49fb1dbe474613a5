package operations

import "image"

type opaquer interface {
	Opaque() bool
}

// HasAlpha reports whether any pixel of img is not fully opaque. An alpha
// channel whose every sample is 0xffff does not count as transparency.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(opaquer); ok {
		return !o.Opaque()
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
