package operations

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"storefront-media/internal/domain"

	"github.com/gen2brain/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type Encoder struct {
	png *png.Encoder
}

func NewEncoder() *Encoder {
	return &Encoder{
		png: &png.Encoder{CompressionLevel: png.BestCompression},
	}
}

// Encode writes img in format. quality applies to the lossy codecs only
// (JPEG and WebP); the others ignore it.
func (e *Encoder) Encode(img image.Image, format domain.ImageFormat, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error

	switch format {
	case domain.FormatJPEG:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
	case domain.FormatPNG:
		err = e.png.Encode(buf, img)
	case domain.FormatGIF:
		err = gif.Encode(buf, toGIFPalette(img), nil)
	case domain.FormatWebP:
		err = webp.Encode(buf, img, webp.Options{Quality: quality})
	case domain.FormatBMP:
		err = bmp.Encode(buf, img)
	case domain.FormatTIFF:
		err = tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// toGIFPalette quantizes translucent truecolor images onto Plan9 with one
// entry swapped for full transparency; gif.Encode would otherwise drop alpha.
func toGIFPalette(img image.Image) image.Image {
	if _, ok := img.(*image.Paletted); ok || !HasAlpha(img) {
		return img
	}

	pal := make(color.Palette, len(palette.Plan9))
	copy(pal, palette.Plan9)
	pal[len(pal)-1] = color.Transparent

	dst := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
