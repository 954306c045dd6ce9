package noise

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Kind selects the base noise for a fractal field.
type Kind string

const (
	KindGradient Kind = "gradient"
	KindValue    Kind = "value"
	KindSimplex  Kind = "simplex"
)

// HashKind selects the hashing path used by lattice noise.
type HashKind string

const (
	HashBits       HashKind = "bits"
	HashFractional HashKind = "fractional"
)

// NewHasher returns the hasher for kind.
func NewHasher(kind HashKind, seed float64) (Hasher, error) {
	switch kind {
	case HashBits, "":
		return BitHash{}, nil
	case HashFractional:
		if seed == 0 {
			seed = DefaultFractionalSeed
		}
		return FractionalHash{Seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown hash kind %q", kind)
	}
}

// CheckKind reports whether kind names a base noise without building one.
func CheckKind(kind Kind) error {
	switch kind {
	case KindGradient, KindValue, KindSimplex, "":
		return nil
	}
	return fmt.Errorf("unknown noise kind %q", kind)
}

// NewBase returns base noise of the given kind. The simplex kind is seeded
// with seed; lattice kinds draw from h.
func NewBase(kind Kind, h Hasher, seed int64) (Base, error) {
	switch kind {
	case KindGradient, "":
		return Gradient{Hash: h}, nil
	case KindValue:
		return Value{Hash: h}, nil
	case KindSimplex:
		return opensimplex.NewNormalized(seed), nil
	default:
		return nil, CheckKind(kind)
	}
}

// Fractal sums octaves of Base, each at double the frequency and half the
// weight of the previous one, and divides by the total weight so the result
// stays in the base range whatever the octave count.
type Fractal struct {
	Base    Base
	Octaves int
}

func (f Fractal) octaves() int {
	if f.Octaves < 1 {
		return 1
	}
	return f.Octaves
}

// Eval2 returns fractal noise at (x, y).
func (f Fractal) Eval2(x, y float64) float64 {
	var sum, weight float64
	freq := 1.0
	for i := 0; i < f.octaves(); i++ {
		amp := 1 / freq
		sum += f.Base.Eval2(x*freq, y*freq) * amp
		weight += amp
		freq *= 2
	}
	return sum / weight
}

// Eval3 returns fractal noise at (x, y, z).
func (f Fractal) Eval3(x, y, z float64) float64 {
	var sum, weight float64
	freq := 1.0
	for i := 0; i < f.octaves(); i++ {
		amp := 1 / freq
		sum += f.Base.Eval3(x*freq, y*freq, z*freq) * amp
		weight += amp
		freq *= 2
	}
	return sum / weight
}
