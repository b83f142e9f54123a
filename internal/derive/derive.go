// Package derive computes the secondary navigation colour and its text colour
// from a brand colour.
package derive

import (
	"github.com/MeKo-Tech/contrastscan/internal/blend"
	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

// SecondaryLightness is added to black (in HSL) to get the gray the brand
// colour is screened against.
const SecondaryLightness = 0.3

// Fixed colours, computed once. They go through the HSL round trip so the
// channel truncation matches the conversion exactly.
var (
	// ReferenceGray is black lightened by SecondaryLightness (#4C4C4C).
	ReferenceGray = colour.HSLToRGB(colour.AdjustLightness(colour.BlackHSL, SecondaryLightness))
	// DarkText is the dark text candidate.
	DarkText = colour.RGB{R: 0x38, G: 0x38, B: 0x38}
	// LightText is the light text candidate (white).
	LightText = colour.HSLToRGB(colour.WhiteHSL)
)

// Pair is a derived secondary background and the text colour drawn on it.
type Pair struct {
	Secondary colour.RGB
	Text      colour.RGB
}

// Ratio returns the contrast ratio between the pair's colours.
func (p Pair) Ratio() float64 {
	return wcag.ContrastRatio(p.Secondary, p.Text)
}

// Derive returns the secondary colour for brand and the text colour with the
// higher contrast against it.
func Derive(brand colour.RGB) Pair {
	secondary := blend.Screen(brand, ReferenceGray)
	return Pair{
		Secondary: secondary,
		Text:      TextColour(secondary, DarkText, LightText),
	}
}

// TextColour picks whichever of dark and light contrasts more with bg.
// Ties go to dark.
func TextColour(bg, dark, light colour.RGB) colour.RGB {
	if wcag.ContrastRatio(bg, dark) >= wcag.ContrastRatio(bg, light) {
		return dark
	}
	return light
}
