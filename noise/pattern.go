package noise

import "math"

const (
	hueScale   = 10.0
	hueBalance = 6.0
	stepCeil   = 3.2
)

// hueToRGB is the fully saturated, full value HSV to RGB conversion.
func hueToRGB(h float64) (r, g, b float64) {
	channel := func(k float64) float64 {
		p := math.Abs(Fract(h+k)*hueBalance - 3)
		return Clamp01(p - 1)
	}
	return channel(1), channel(2.0 / 3.0), channel(1.0 / 3.0)
}

// Stepped turns a smooth noise value into banded terraces: the value is used
// as a hue, and the wrapped RGB channels are recombined and smoothed into
// [0, 1].
func Stepped(n float64) float64 {
	r, g, b := hueToRGB(n * hueScale)
	s := math.Sin(r) + math.Sin(g) + math.Cos(b)
	return Smoothstep(0, stepCeil, s)
}
