// Package colour provides the RGB and HSL value types and the conversions
// between them used by the contrast derivation.
package colour

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrOutOfRange is returned when a colour component lies outside its valid range.
	ErrOutOfRange = errors.New("colour component out of range")
	// ErrInvalidHex is returned when a string cannot be parsed as a hex colour.
	ErrInvalidHex = errors.New("invalid hex colour")
)

// RGB is an 8-bit per channel colour. It is a plain value; every operation
// returns a new RGB.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// HSL is a colour in hue/saturation/lightness form.
// H is an integer degree in [0, 360); S and L are fractions in [0, 1].
type HSL struct {
	H int
	S float64
	L float64
}

// Common colours.
var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}

	BlackHSL = HSL{H: 0, S: 0, L: 0}
	WhiteHSL = HSL{H: 0, S: 0, L: 1}
)

// NewRGB builds an RGB from int channels, rejecting values outside [0, 255].
func NewRGB(r, g, b int) (RGB, error) {
	for _, ch := range []struct {
		name string
		v    int
	}{{"red", r}, {"green", g}, {"blue", b}} {
		if ch.v < 0 || ch.v > 255 {
			return RGB{}, fmt.Errorf("%s channel %d: %w", ch.name, ch.v, ErrOutOfRange)
		}
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// NewHSL builds an HSL. The hue is normalized into [0, 360); saturation and
// lightness outside [0, 1] (or NaN) are rejected.
func NewHSL(h int, s, l float64) (HSL, error) {
	if !(s >= 0 && s <= 1) {
		return HSL{}, fmt.Errorf("saturation %g: %w", s, ErrOutOfRange)
	}
	if !(l >= 0 && l <= 1) {
		return HSL{}, fmt.Errorf("lightness %g: %w", l, ErrOutOfRange)
	}
	return HSL{H: normalizeHue(h), S: s, L: l}, nil
}

// ParseHex parses "#RRGGBB" or "#RGB" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidHex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidHex)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MustParseHex is like ParseHex but panics on error. Intended for literals.
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the colour as "#RRGGBB" with uppercase digits.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// NRGBA returns the opaque image/color equivalent.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// IsGray reports whether all three channels are equal.
func (c RGB) IsGray() bool {
	return c.R == c.G && c.G == c.B
}

func (h HSL) String() string {
	return fmt.Sprintf("hsl(%d, %.3f, %.3f)", h.H, h.S, h.L)
}

func normalizeHue(h int) int {
	h %= 360
	if h < 0 {
		h += 360
	}
	return h
}
