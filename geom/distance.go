package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Chord returns the straight-line distance between a and b.
func Chord(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// CentralAngle converts a chord on a sphere of the given radius to the angle
// it subtends at the center, in [0, Pi].
func CentralAngle(chord, radius float64) float64 {
	if radius < Epsilon {
		return 0
	}
	c := 1 - (chord*chord)/(2*radius*radius)
	// Points slightly off the surface can push the cosine outside [-1, 1].
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// ArcLength converts a chord to the great-circle distance along the surface.
func ArcLength(chord, radius float64) float64 {
	return CentralAngle(chord, radius) * radius
}

// Geodesic is the great-circle distance between a and b on the sphere of
// the given radius.
func Geodesic(a, b mgl64.Vec3, radius float64) float64 {
	return ArcLength(Chord(a, b), radius)
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
