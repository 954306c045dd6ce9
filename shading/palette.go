// Package shading colors surface samples by their blended pattern value.
package shading

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/noise"
)

// Palette mixes from Depth at pattern 0 to Surface at pattern 1.
type Palette struct {
	Depth   colorful.Color
	Surface colorful.Color
}

// FromConfig returns the palette of a validated config.
func FromConfig(cfg *config.Config) Palette {
	return Palette{Depth: cfg.Derived.DepthColor, Surface: cfg.Derived.SurfaceColor}
}

// Color returns the color for pattern, clamped to [0,1].
func (p Palette) Color(pattern float64) colorful.Color {
	return p.Depth.BlendRgb(p.Surface, noise.Clamp01(pattern)).Clamped()
}

// Fill writes 8-bit RGB triples for every pattern value into dst, growing
// it if needed, and returns it.
func (p Palette) Fill(dst []uint8, patterns []float64) []uint8 {
	n := 3 * len(patterns)
	if cap(dst) < n {
		dst = make([]uint8, n)
	}
	dst = dst[:n]
	for i, v := range patterns {
		dst[3*i], dst[3*i+1], dst[3*i+2] = p.Color(v).RGB255()
	}
	return dst
}
