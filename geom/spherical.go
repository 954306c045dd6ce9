// Package geom provides the coordinate conversions and surface distances
// shared by the wave, zone and field packages.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the radius below which a point is treated as sitting at the
// sphere's center, where the spherical angles are undefined.
const Epsilon = 1e-9

// Spherical is a point expressed about a center.
// Phi is the polar angle from the +Z pole in [0, Pi]; Theta is the
// azimuth in the XY plane in (-Pi, Pi].
type Spherical struct {
	Radius float64
	Phi    float64
	Theta  float64
}

// Degenerate reports whether the angles carry no information (point at center).
func (s Spherical) Degenerate() bool {
	return s.Radius < Epsilon
}

// ToSpherical converts p to spherical coordinates about center.
// Phi uses atan2 rather than acos so it stays well conditioned near the poles.
func ToSpherical(p, center mgl64.Vec3) Spherical {
	d := p.Sub(center)
	x, y, z := d[0], d[1], d[2]

	r := math.Sqrt(x*x + y*y + z*z)
	if r < Epsilon {
		return Spherical{}
	}

	theta := math.Atan2(y, x)
	if theta <= -math.Pi {
		theta = math.Pi
	}

	return Spherical{
		Radius: r,
		Phi:    math.Atan2(math.Sqrt(x*x+y*y), z),
		Theta:  theta,
	}
}

// ToCartesian converts s back to a point about center.
func ToCartesian(s Spherical, center mgl64.Vec3) mgl64.Vec3 {
	sinPhi, cosPhi := math.Sincos(s.Phi)
	sinTheta, cosTheta := math.Sincos(s.Theta)
	return mgl64.Vec3{
		center[0] + s.Radius*sinPhi*cosTheta,
		center[1] + s.Radius*sinPhi*sinTheta,
		center[2] + s.Radius*cosPhi,
	}
}

// FromAngles places a point on the sphere of the given radius about center.
func FromAngles(radius, phi, theta float64, center mgl64.Vec3) mgl64.Vec3 {
	return ToCartesian(Spherical{Radius: radius, Phi: phi, Theta: theta}, center)
}

// UV maps the angles onto the unit square the way a UV sphere lays out its
// texture coordinates: u follows the azimuth, v runs pole to pole.
func (s Spherical) UV() (u, v float64) {
	u = (s.Theta + math.Pi) / (2 * math.Pi)
	v = s.Phi / math.Pi
	return u, v
}
