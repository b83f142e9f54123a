// Package wcag implements the WCAG 2.0 relative luminance and contrast ratio
// formulas and the Level AA thresholds.
package wcag

import (
	"math"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
)

// WCAG 2.0 Level AA minimum contrast ratios.
const (
	MinRatioNormal = 4.5
	MinRatioLarge  = 3.0
)

// Level classifies a contrast ratio against the AA thresholds.
type Level int

const (
	// LevelPass meets AA for all text sizes.
	LevelPass Level = iota
	// LevelFailSmall meets AA only for large or bold text.
	LevelFailSmall
	// LevelFailLarge fails AA even for large or bold text.
	LevelFailLarge
)

func (l Level) String() string {
	switch l {
	case LevelPass:
		return "pass"
	case LevelFailSmall:
		return "fail-small"
	case LevelFailLarge:
		return "fail-large"
	default:
		return "unknown"
	}
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{LevelPass, LevelFailSmall, LevelFailLarge} {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// RelativeLuminance returns the sRGB relative luminance of c in [0, 1].
func RelativeLuminance(c colour.RGB) float64 {
	r := linearize(float64(c.R) / 255.0)
	g := linearize(float64(c.G) / 255.0)
	b := linearize(float64(c.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// linearize applies the sRGB inverse gamma to a [0, 1] channel value.
func linearize(d float64) float64 {
	if d <= 0.03928 {
		return d / 12.92
	}
	return math.Pow((d+0.055)/1.055, 2.4)
}

// ContrastRatio returns the contrast ratio between a and b, in [1, 21].
// The order of the arguments does not matter.
func ContrastRatio(a, b colour.RGB) float64 {
	l1 := RelativeLuminance(a)
	l2 := RelativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// PassesAA reports whether ratio meets Level AA. Large or bold text
// (>= 18pt, or >= 14pt bold) only needs 3:1.
func PassesAA(ratio float64, isLargeOrBold bool) bool {
	if isLargeOrBold {
		return ratio >= MinRatioLarge
	}
	return ratio >= MinRatioNormal
}

// Classify maps a ratio to its Level. The large/bold check wins when both fail.
func Classify(ratio float64) Level {
	if !PassesAA(ratio, true) {
		return LevelFailLarge
	}
	if !PassesAA(ratio, false) {
		return LevelFailSmall
	}
	return LevelPass
}
