package swatch

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
)

func TestRender_Layout(t *testing.T) {
	brand := colour.MustParseHex("#156294")

	img, f, err := Render(brand, 1)
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())

	assert.Equal(t, brand.NRGBA(), img.NRGBAAt(0, 0))
	assert.Equal(t, brand.NRGBA(), img.NRGBAAt(Width-1, BrandStrip-1))
	assert.Equal(t, f.Secondary.NRGBA(), img.NRGBAAt(0, BrandStrip))
	assert.Equal(t, f.Secondary.NRGBA(), img.NRGBAAt(Width-1, Height-1))

	// Some glyph pixels must be painted in the text colour.
	var textPixels int
	want := f.Text.NRGBA()
	for y := BrandStrip; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if img.NRGBAAt(x, y) == want {
				textPixels++
			}
		}
	}
	assert.Positive(t, textPixels)
}

func TestRender_Scaled(t *testing.T) {
	brand := colour.MustParseHex("#2EAFDF")

	img, f, err := Render(brand, 3)
	require.NoError(t, err)
	assert.Equal(t, Width*3, img.Bounds().Dx())
	assert.Equal(t, Height*3, img.Bounds().Dy())

	// Nearest-neighbour scaling keeps flat regions exact.
	assert.Equal(t, brand.NRGBA(), img.NRGBAAt(1, 1))
	assert.Equal(t, f.Secondary.NRGBA(), img.NRGBAAt(Width*3-2, Height*3-2))
}

func TestRender_InvalidScale(t *testing.T) {
	_, _, err := Render(colour.Black, 0)
	assert.Error(t, err)
	_, _, err = Render(colour.Black, MaxScale+1)
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	_, f, err := Render(colour.MustParseHex("#156294"), 1)
	require.NoError(t, err)
	assert.Equal(t, "Aa 3.44 AA large", Label(f))

	_, f, err = Render(colour.Black, 1)
	require.NoError(t, err)
	assert.Contains(t, Label(f), " AA")
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	f, err := Encode(&buf, colour.MustParseHex("#FA7014"), 2)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Width*2, img.Bounds().Dx())

	got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	assert.Equal(t, f.Brand.NRGBA(), got)
}
