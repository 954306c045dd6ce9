// Package zone gates the ambient surface pattern by position. A band along
// one axis, bounded by two control points, carries the full pattern; outside
// it the pattern fades toward zero, and near the pointer it is suppressed.
package zone

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/geom"
	"github.com/pthm-cable/ripple/noise"
)

// minSpan keeps the fade span away from zero when a control point sits on
// the sphere's extreme.
const minSpan = 1e-6

// Axis selects the coordinate the band is measured along.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Controls describes the active band.
type Controls struct {
	A, B   mgl64.Vec3
	Axis   Axis
	Center mgl64.Vec3
	// MidRadius is the sphere's rest radius; the fade runs from the nearer
	// control point out to ±MidRadius.
	MidRadius float64
	// Smoothing is the fade width in normalized units, in [0,1]. Zero is a
	// hard step at the band edge.
	Smoothing float64
}

// Interaction describes pointer suppression for one frame.
type Interaction struct {
	Enabled bool
	Radius  float64
	Locus   mgl64.Vec3
}

// Bounds returns the band edges along the axis, relative to the center.
func (c Controls) Bounds() (lo, hi float64) {
	a := c.A[c.Axis] - c.Center[c.Axis]
	b := c.B[c.Axis] - c.Center[c.Axis]
	return math.Min(a, b), math.Max(a, b)
}

// Inside reports whether p lies within the band, edges included.
func (c Controls) Inside(p mgl64.Vec3) bool {
	lo, hi := c.Bounds()
	x := p[c.Axis] - c.Center[c.Axis]
	return x >= lo && x <= hi
}

// Progress returns how far p lies outside the band, normalized by the span
// from the nearer edge to the sphere's extreme on that side. It is 0 inside
// the band and 1 at (or beyond) the extreme.
func (c Controls) Progress(p mgl64.Vec3) float64 {
	lo, hi := c.Bounds()
	x := p[c.Axis] - c.Center[c.Axis]
	switch {
	case x > hi:
		span := math.Max(c.MidRadius-hi, minSpan)
		return noise.Clamp01((x - hi) / span)
	case x < lo:
		span := math.Max(lo+c.MidRadius, minSpan)
		return noise.Clamp01((lo - x) / span)
	}
	return 0
}

// Fade is the zone fade factor: 0 keeps the pattern, 1 removes it.
func (c Controls) Fade(p mgl64.Vec3) float64 {
	return noise.Smoothstep(0, c.Smoothing, c.Progress(p))
}

// Factor is the pointer's strength multiplier at p: 0 at the locus, rising
// smoothly to 1 at the interaction radius. It is 1 when interaction is off.
func (in Interaction) Factor(p mgl64.Vec3) float64 {
	if !in.Enabled || in.Radius <= 0 {
		return 1
	}
	elevation := 1 - geom.Chord(p, in.Locus)/in.Radius
	return 1 - noise.Smoothstep(0, 1, elevation)
}

// Strength is the fraction of the raw pattern that survives at p. The zone
// and the pointer each propose a strength and the smaller one wins.
func Strength(p mgl64.Vec3, c Controls, in Interaction) float64 {
	return math.Min(1-c.Fade(p), in.Factor(p))
}

// Blend applies Strength to raw.
func Blend(p mgl64.Vec3, raw float64, c Controls, in Interaction) float64 {
	return raw - raw*(1-Strength(p, c, in))
}
