package colour

import "math"

// achromaticEpsilon is the max-min spread below which a colour is treated as gray.
const achromaticEpsilon = 0.00001

// RGBToHSL converts an RGB colour to HSL.
// Grays get hue 0 and saturation 0; hue is truncated to a whole degree.
func RGBToHSL(c RGB) HSL {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	maxv := math.Max(r, math.Max(g, b))
	minv := math.Min(r, math.Min(g, b))

	diff := maxv - minv
	l := (maxv + minv) / 2
	if math.Abs(diff) < achromaticEpsilon {
		return HSL{H: 0, S: 0, L: l}
	}

	var s float64
	if l <= 0.5 {
		s = diff / (maxv + minv)
	} else {
		s = diff / (2 - maxv - minv)
	}

	rDist := (maxv - r) / diff
	gDist := (maxv - g) / diff
	bDist := (maxv - b) / diff

	var h float64
	switch maxv {
	case r:
		h = bDist - gDist
	case g:
		h = 2 + rDist - bDist
	default:
		h = 4 + gDist - rDist
	}

	h *= 60
	if h < 0 {
		h += 360
	}

	return HSL{H: normalizeHue(int(h)), S: s, L: l}
}

// HSLToRGB converts an HSL colour back to RGB. Channels are truncated, not
// rounded, so a round trip may lose one unit per channel.
func HSLToRGB(c HSL) RGB {
	l := c.L
	s := c.S
	h := float64(c.H)

	var p2 float64
	if l <= 0.5 {
		p2 = l * (1 + s)
	} else {
		p2 = l + s - l*s
	}
	p1 := 2*l - p2

	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		r = hueToChannel(p1, p2, h+120)
		g = hueToChannel(p1, p2, h)
		b = hueToChannel(p1, p2, h-120)
	}

	return RGB{R: toChannel(r), G: toChannel(g), B: toChannel(b)}
}

// AdjustLightness returns c with delta added to its lightness, clamped to [0, 1].
func AdjustLightness(c HSL, delta float64) HSL {
	return HSL{H: c.H, S: c.S, L: math.Min(math.Max(0, c.L+delta), 1)}
}

// hueToChannel evaluates one channel of the HSL sector function.
// hue may lie outside [0, 360) and is wrapped first.
func hueToChannel(p1, p2, hue float64) float64 {
	for hue >= 360 {
		hue -= 360
	}
	for hue < 0 {
		hue += 360
	}

	switch {
	case hue < 60:
		return p1 + (p2-p1)*hue/60
	case hue < 180:
		return p2
	case hue < 240:
		return p1 + (p2-p1)*(240-hue)/60
	default:
		return p1
	}
}

// toChannel scales a [0, 1] value to 0..255, truncating.
func toChannel(v float64) uint8 {
	v *= 255.0
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
