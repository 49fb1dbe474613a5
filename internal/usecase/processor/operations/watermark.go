package operations

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	watermarkMargin      = 12
	watermarkMinFontSize = 10.0
	watermarkWidthRatio  = 0.035
)

// Watermarker stamps a shop label into the bottom-right corner.
type Watermarker struct {
	text    string
	opacity float64
	font    *truetype.Font
}

func NewWatermarker(text string, opacity float64) (*Watermarker, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 0.5
	}
	return &Watermarker{
		text:    text,
		opacity: opacity,
		font:    f,
	}, nil
}

// Apply draws onto a copy; img is left untouched. Alpha of the source is kept.
func (w *Watermarker) Apply(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	fontSize := math.Max(watermarkMinFontSize, float64(bounds.Dx())*watermarkWidthRatio)

	face := truetype.NewFace(w.font, &truetype.Options{Size: fontSize, DPI: 72})
	textWidth := font.MeasureString(face, w.text).Ceil()
	face.Close()

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(w.font)
	c.SetFontSize(fontSize)
	c.SetClip(result.Bounds())
	c.SetDst(result)
	c.SetSrc(image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * w.opacity)}))
	c.SetHinting(font.HintingFull)

	x := result.Bounds().Dx() - textWidth - watermarkMargin
	if x < watermarkMargin {
		x = watermarkMargin
	}
	pt := freetype.Pt(x, result.Bounds().Dy()-watermarkMargin)

	if _, err := c.DrawString(w.text, pt); err != nil {
		return nil, fmt.Errorf("failed to draw watermark text: %w", err)
	}

	return result, nil
}
