// Package blend implements the multiply and screen compositing operators on
// opaque RGB colours.
package blend

import "github.com/MeKo-Tech/contrastscan/internal/colour"

// Invert returns 255 minus each channel.
func Invert(c colour.RGB) colour.RGB {
	return colour.RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// Multiply returns the per-channel product c1*c2/255, using integer division.
func Multiply(c1, c2 colour.RGB) colour.RGB {
	return colour.RGB{
		R: mul8(c1.R, c2.R),
		G: mul8(c1.G, c2.G),
		B: mul8(c1.B, c2.B),
	}
}

// Screen is the inverse of multiplying the inverted colours.
func Screen(c1, c2 colour.RGB) colour.RGB {
	return Invert(Multiply(Invert(c1), Invert(c2)))
}

func mul8(a, b uint8) uint8 {
	return uint8(int(a) * int(b) / 255)
}
