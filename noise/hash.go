// Package noise provides deterministic hashing, lattice noise and
// multi-octave fractal noise for procedural surface patterns.
package noise

import "math"

// Hasher maps coordinates to a pseudo-random value in [0, 1).
// Implementations are stateless: equal inputs always give equal outputs.
type Hasher interface {
	Hash1(x float64) float64
	Hash2(x, y float64) float64
	Hash3(x, y, z float64) float64
}

// BitHash mixes the IEEE-754 bit pattern of its inputs with Bob Jenkins'
// one-at-a-time mixer and builds the result from the mantissa of a float in
// [1, 2).
type BitHash struct{}

// jenkins is a single iteration of the one-at-a-time mixer. Every step is a
// bijection on uint32.
func jenkins(x uint32) uint32 {
	x += x << 10
	x ^= x >> 6
	x += x << 3
	x ^= x >> 11
	x += x << 15
	return x
}

// word folds a float64 bit pattern into one mixed 32-bit word.
func word(f float64) uint32 {
	b := math.Float64bits(f)
	return uint32(b) ^ jenkins(uint32(b>>32))
}

// floatConstruct keeps the low 23 bits of m as the mantissa of a float in
// [1, 2) and subtracts one. All zeroes give 0, all ones give the largest
// float32 below 1.
func floatConstruct(m uint32) float64 {
	const (
		ieeeMantissa = 0x007FFFFF
		ieeeOne      = 0x3F800000
	)
	m &= ieeeMantissa
	m |= ieeeOne
	return float64(math.Float32frombits(m)) - 1
}

func (BitHash) Hash1(x float64) float64 {
	return floatConstruct(jenkins(word(x)))
}

func (BitHash) Hash2(x, y float64) float64 {
	return floatConstruct(jenkins(word(x) ^ jenkins(word(y))))
}

func (BitHash) Hash3(x, y, z float64) float64 {
	return floatConstruct(jenkins(word(x) ^ jenkins(word(y)) ^ jenkins(word(z))))
}

// DefaultFractionalSeed is the irrational-looking seed used when none is configured.
const DefaultFractionalSeed = 1.123456789

// hashMatrix holds the columns of the mixing matrix.
var hashMatrix = [3][3]float64{
	{40.15384, 31.973157, 31.179219},
	{10.72341, 13.123009, 41.441023},
	{-311.61923, 10.41234, 178.127121},
}

// FractionalHash needs no integer bit operations: it multiplies the input by
// a fixed matrix, keeps fractional parts and folds them together. Its output
// is statistically similar to BitHash but not bit-identical.
type FractionalHash struct {
	Seed float64
}

func (h FractionalHash) mix(p [3]float64) float64 {
	var q [3]float64
	for j := range q {
		c := hashMatrix[j]
		q[j] = Fract(p[0]*c[0] + p[1]*c[1] + p[2]*c[2])
	}
	d := q[0]*(q[1]+41.19) + q[1]*(q[2]+41.19) + q[2]*(q[0]+41.19)
	q[0] += d
	q[1] += d
	q[2] += d
	return Fract((q[0] + q[1]) * q[2])
}

func (h FractionalHash) Hash1(x float64) float64 {
	return h.Hash2(x, 0)
}

// Every arity shifts all three inputs by the seed at unit scale, so seeds one
// apart land in unrelated parts of the mixing lattice.
func (h FractionalHash) Hash2(x, y float64) float64 {
	s := h.Seed
	return h.mix([3]float64{x + s, y + s, x + y + s})
}

func (h FractionalHash) Hash3(x, y, z float64) float64 {
	s := h.Seed
	return h.mix([3]float64{x + s, y + s, z + s})
}
