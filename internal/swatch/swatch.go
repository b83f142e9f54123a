// Package swatch renders PNG previews of a brand colour's derived secondary
// background and text colour.
package swatch

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

// Unscaled swatch geometry.
const (
	Width        = 120
	Height       = 40
	BrandStrip   = 8
	textX        = 4
	textY        = 29
	MaxScale     = 16
	DefaultScale = 4
)

// Render draws the swatch for brand at the given integer scale (1..MaxScale).
// The top strip shows the brand colour; the rest shows the secondary colour
// with a sample label in the derived text colour.
func Render(brand colour.RGB, scale int) (*image.NRGBA, scan.Finding, error) {
	if scale < 1 || scale > MaxScale {
		return nil, scan.Finding{}, fmt.Errorf("scale %d outside 1..%d", scale, MaxScale)
	}

	f := scan.Evaluate(brand)

	base := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(base, image.Rect(0, 0, Width, BrandStrip), image.NewUniform(f.Brand.NRGBA()), image.Point{}, draw.Src)
	draw.Draw(base, image.Rect(0, BrandStrip, Width, Height), image.NewUniform(f.Secondary.NRGBA()), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  base,
		Src:  image.NewUniform(f.Text.NRGBA()),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(textX, textY),
	}
	d.DrawString(Label(f))

	if scale == 1 {
		return base, f, nil
	}

	g := gift.New(gift.Resize(Width*scale, Height*scale, gift.NearestNeighborResampling))
	dst := image.NewNRGBA(g.Bounds(base.Bounds()))
	g.Draw(dst, base)

	return dst, f, nil
}

// Label is the sample text drawn on a swatch, e.g. "Aa 3.44 AA large".
func Label(f scan.Finding) string {
	var verdict string
	switch f.Level {
	case wcag.LevelPass:
		verdict = "AA"
	case wcag.LevelFailSmall:
		verdict = "AA large"
	default:
		verdict = "fail"
	}
	return fmt.Sprintf("Aa %.2f %s", f.Ratio, verdict)
}

// Encode renders the swatch and writes it to w as PNG.
func Encode(w io.Writer, brand colour.RGB, scale int) (scan.Finding, error) {
	img, f, err := Render(brand, scale)
	if err != nil {
		return scan.Finding{}, err
	}
	if err := png.Encode(w, img); err != nil {
		return scan.Finding{}, fmt.Errorf("failed to encode swatch: %w", err)
	}
	return f, nil
}
