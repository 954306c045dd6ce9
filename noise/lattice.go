package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Base is a smooth scalar field over 2D and 3D input with output in [0, 1].
type Base interface {
	Eval2(x, y float64) float64
	Eval3(x, y, z float64) float64
}

// unitOffset decorrelates the second hash draw of a 3D gradient from the first.
var unitOffset = mgl64.Vec3{531.2346, 652.56, 567.3}

// RandomUnitVector2 returns a hash-driven unit vector for a lattice point.
func RandomUnitVector2(h Hasher, x, y float64) (float64, float64) {
	sin, cos := math.Sincos(h.Hash2(x, y) * 2 * math.Pi)
	return cos, sin
}

// RandomUnitVector3 returns a hash-driven unit vector uniformly distributed
// over the sphere for a lattice point.
func RandomUnitVector3(h Hasher, x, y, z float64) mgl64.Vec3 {
	theta := h.Hash3(x, y, z) * 2 * math.Pi
	phi := math.Acos(1 - 2*h.Hash3(x+unitOffset[0], y+unitOffset[1], z+unitOffset[2]))
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return mgl64.Vec3{sinPhi * cosTheta, sinPhi * sinTheta, cosPhi}
}

// Gradient is Perlin-style gradient noise with corner gradients drawn from a
// Hasher rather than a permutation table.
type Gradient struct {
	Hash Hasher
}

// Eval2 returns gradient noise at (x, y), rescaled to [0, 1].
func (g Gradient) Eval2(x, y float64) float64 {
	ix, iy := math.Floor(x), math.Floor(y)
	fx, fy := x-ix, y-iy

	dot := func(cx, cy float64) float64 {
		gx, gy := RandomUnitVector2(g.Hash, ix+cx, iy+cy)
		return gx*(fx-cx) + gy*(fy-cy)
	}

	lb := dot(0, 0)
	rb := dot(1, 0)
	lt := dot(0, 1)
	rt := dot(1, 1)

	u, v := Fade(fx), Fade(fy)
	n := Lerp(v, Lerp(u, lb, rb), Lerp(u, lt, rt))
	return n*math.Sqrt2*0.5 + 0.5
}

// Eval3 returns gradient noise at (x, y, z), rescaled to [0, 1].
func (g Gradient) Eval3(x, y, z float64) float64 {
	ix, iy, iz := math.Floor(x), math.Floor(y), math.Floor(z)
	f := mgl64.Vec3{x - ix, y - iy, z - iz}

	dot := func(cx, cy, cz float64) float64 {
		grad := RandomUnitVector3(g.Hash, ix+cx, iy+cy, iz+cz)
		return grad.Dot(f.Sub(mgl64.Vec3{cx, cy, cz}))
	}

	u, v, w := Fade(f[0]), Fade(f[1]), Fade(f[2])

	front := Lerp(v, Lerp(u, dot(0, 0, 0), dot(1, 0, 0)), Lerp(u, dot(0, 1, 0), dot(1, 1, 0)))
	back := Lerp(v, Lerp(u, dot(0, 0, 1), dot(1, 0, 1)), Lerp(u, dot(0, 1, 1), dot(1, 1, 1)))

	// 2/sqrt(3) maps the +-sqrt(3)/2 extreme onto +-1.
	return Lerp(w, front, back)*1.154700538*0.5 + 0.5
}

// Value is value noise: hashed lattice values blended with smoothstep.
type Value struct {
	Hash Hasher
}

func (n Value) Eval2(x, y float64) float64 {
	ix, iy := math.Floor(x), math.Floor(y)
	u, v := cellSmooth(x-ix), cellSmooth(y-iy)

	lb := n.Hash.Hash2(ix, iy)
	rb := n.Hash.Hash2(ix+1, iy)
	lt := n.Hash.Hash2(ix, iy+1)
	rt := n.Hash.Hash2(ix+1, iy+1)

	return Lerp(v, Lerp(u, lb, rb), Lerp(u, lt, rt))
}

func (n Value) Eval3(x, y, z float64) float64 {
	ix, iy, iz := math.Floor(x), math.Floor(y), math.Floor(z)
	u, v, w := cellSmooth(x-ix), cellSmooth(y-iy), cellSmooth(z-iz)

	h := n.Hash
	front := Lerp(v,
		Lerp(u, h.Hash3(ix, iy, iz), h.Hash3(ix+1, iy, iz)),
		Lerp(u, h.Hash3(ix, iy+1, iz), h.Hash3(ix+1, iy+1, iz)))
	back := Lerp(v,
		Lerp(u, h.Hash3(ix, iy, iz+1), h.Hash3(ix+1, iy, iz+1)),
		Lerp(u, h.Hash3(ix, iy+1, iz+1), h.Hash3(ix+1, iy+1, iz+1)))
	return Lerp(w, front, back)
}
