package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSphericalRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	centers := []mgl64.Vec3{{0, 0, 0}, {1.5, -2, 3.25}}

	for _, center := range centers {
		for i := 0; i < 10000; i++ {
			p := mgl64.Vec3{
				center[0] + (rng.Float64()*2-1)*20,
				center[1] + (rng.Float64()*2-1)*20,
				center[2] + (rng.Float64()*2-1)*20,
			}
			if p.Sub(center).Len() < 1e-6 {
				continue
			}

			got := ToCartesian(ToSpherical(p, center), center)
			if d := got.Sub(p).Len(); d > 1e-6 {
				t.Fatalf("roundtrip failed: %v -> %v (center %v)", p, got, center)
			}
		}
	}
}

func TestSphericalRanges(t *testing.T) {
	tests := []struct {
		name      string
		p         mgl64.Vec3
		wantPhi   float64
		wantTheta float64
	}{
		{"north pole", mgl64.Vec3{0, 0, 7}, 0, 0},
		{"south pole", mgl64.Vec3{0, 0, -7}, math.Pi, 0},
		{"+x equator", mgl64.Vec3{7, 0, 0}, math.Pi / 2, 0},
		{"+y equator", mgl64.Vec3{0, 7, 0}, math.Pi / 2, math.Pi / 2},
		{"-x equator", mgl64.Vec3{-7, 0, 0}, math.Pi / 2, math.Pi},
		{"-x equator negative zero", mgl64.Vec3{-7, math.Copysign(0, -1), 0}, math.Pi / 2, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ToSpherical(tt.p, mgl64.Vec3{})
			if math.Abs(s.Radius-7) > 1e-12 {
				t.Errorf("radius = %v, want 7", s.Radius)
			}
			if math.Abs(s.Phi-tt.wantPhi) > 1e-12 {
				t.Errorf("phi = %v, want %v", s.Phi, tt.wantPhi)
			}
			if math.Abs(s.Theta-tt.wantTheta) > 1e-12 {
				t.Errorf("theta = %v, want %v", s.Theta, tt.wantTheta)
			}
			if s.Theta <= -math.Pi || s.Theta > math.Pi {
				t.Errorf("theta %v outside (-Pi, Pi]", s.Theta)
			}
		})
	}
}

func TestSphericalNearPole(t *testing.T) {
	// acos would lose almost all precision this close to the pole.
	p := mgl64.Vec3{1e-9, 0, 1}
	s := ToSpherical(p, mgl64.Vec3{})
	if math.Abs(s.Phi-1e-9) > 1e-15 {
		t.Errorf("phi near pole = %v, want 1e-9", s.Phi)
	}
}

func TestSphericalDegenerate(t *testing.T) {
	center := mgl64.Vec3{1, 2, 3}
	s := ToSpherical(center, center)
	if !s.Degenerate() {
		t.Fatalf("expected degenerate spherical at center, got %+v", s)
	}
	if math.IsNaN(s.Phi) || math.IsNaN(s.Theta) {
		t.Errorf("degenerate angles must not be NaN: %+v", s)
	}
}

func TestUV(t *testing.T) {
	u, v := Spherical{Radius: 1, Phi: math.Pi / 2, Theta: 0}.UV()
	if math.Abs(u-0.5) > 1e-12 || math.Abs(v-0.5) > 1e-12 {
		t.Errorf("UV at equator/+x = (%v, %v), want (0.5, 0.5)", u, v)
	}
}
