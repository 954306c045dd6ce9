// Package wave models travelling waves emitted from points on a sphere's
// surface. Phase is driven by great-circle distance so fronts stay circular
// across the curvature.
package wave

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/geom"
)

// Source is a point-like emitter on the sphere.
//
// The field names follow the effect's tuning vocabulary rather than textbook
// wave terms: Amplitude multiplies the phase, so it sets the temporal and
// spatial frequency of the wave, while CycleLength scales the resulting
// displacement. Both must be non-negative; a zero Amplitude makes the source
// contribute exactly zero.
type Source struct {
	Origin      mgl64.Vec3
	Amplitude   float64
	CycleLength float64
	TimeOffset  float64
	// Decay attenuates the wave by exp(-Decay*arcLength). Zero disables it.
	Decay float64
}

// ElevationAt returns the source's displacement at p at time t on a sphere
// of the given radius:
//
//	sin((t + offset + arcLength) * Amplitude) * CycleLength
//
// It has no side effects.
func (s Source) ElevationAt(p mgl64.Vec3, t, radius float64) float64 {
	if s.Amplitude == 0 || s.CycleLength == 0 {
		return 0
	}
	arc := geom.Geodesic(s.Origin, p, radius)
	e := math.Sin((t+s.TimeOffset+arc)*s.Amplitude) * s.CycleLength
	if s.Decay > 0 {
		e *= math.Exp(-s.Decay * arc)
	}
	return e
}

// Combined sums the elevation of every source at p. An empty list gives 0.
func Combined(p mgl64.Vec3, t, radius float64, sources []Source) float64 {
	var sum float64
	for i := range sources {
		sum += sources[i].ElevationAt(p, t, radius)
	}
	return sum
}
