package noise

import "math"

// Fade is the quintic smootherstep curve t^3(6t^2-15t+10) used to blend
// gradient contributions across a cell.
func Fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Lerp blends a toward b by t.
func Lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// Smoothstep is the Hermite step between edge0 and edge1. When the edges
// coincide it degrades to a hard step at edge0.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		if x > edge0 {
			return 1
		}
		return 0
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Fract returns the fractional part of x, always in [0, 1).
func Fract(x float64) float64 {
	f := x - math.Floor(x)
	// Tiny negative inputs round up to exactly 1.
	if f >= 1 {
		return 0
	}
	return f
}

func cellSmooth(t float64) float64 {
	return t * t * (3 - 2*t)
}
