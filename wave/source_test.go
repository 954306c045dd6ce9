package wave

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/geom"
)

const radius = 7.0

func randomSurfacePoint(rng *rand.Rand) mgl64.Vec3 {
	phi := math.Acos(1 - 2*rng.Float64())
	theta := rng.Float64()*2*math.Pi - math.Pi
	return geom.FromAngles(radius, phi, theta, mgl64.Vec3{})
}

func TestElevationAtOrigin(t *testing.T) {
	origin := geom.FromAngles(radius, math.Pi/2, 0, mgl64.Vec3{})
	s := Source{Origin: origin, Amplitude: 10, CycleLength: 2}

	if got := s.ElevationAt(origin, 0, radius); got != 0 {
		t.Errorf("elevation at the source origin at t=0 = %v, want 0", got)
	}
}

func TestElevationFormula(t *testing.T) {
	origin := mgl64.Vec3{radius, 0, 0}
	p := mgl64.Vec3{0, radius, 0}
	s := Source{Origin: origin, Amplitude: 3, CycleLength: 0.5, TimeOffset: 0.25}

	arc := math.Pi / 2 * radius
	want := math.Sin((1.5+0.25+arc)*3) * 0.5
	if got := s.ElevationAt(p, 1.5, radius); math.Abs(got-want) > 1e-12 {
		t.Errorf("ElevationAt = %v, want %v", got, want)
	}
}

func TestElevationIdempotent(t *testing.T) {
	s := Source{Origin: mgl64.Vec3{0, 0, radius}, Amplitude: 5, CycleLength: 0.175}
	p := mgl64.Vec3{1, 2, 6.5}
	first := s.ElevationAt(p, 3.3, radius)
	for i := 0; i < 10; i++ {
		if got := s.ElevationAt(p, 3.3, radius); got != first {
			t.Fatalf("call %d returned %v, first returned %v", i, got, first)
		}
	}
}

func TestZeroAmplitudeIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	zero := Source{Origin: mgl64.Vec3{radius, 0, 0}, Amplitude: 0, CycleLength: 2}
	other := Source{Origin: mgl64.Vec3{0, radius, 0}, Amplitude: 4, CycleLength: 0.3}

	for i := 0; i < 100; i++ {
		p := randomSurfacePoint(rng)
		tm := rng.Float64() * 100
		if got := zero.ElevationAt(p, tm, radius); got != 0 {
			t.Fatalf("zero-amplitude source contributed %v", got)
		}
		with := Combined(p, tm, radius, []Source{zero, other})
		without := Combined(p, tm, radius, []Source{other})
		if with != without {
			t.Fatalf("zero-amplitude source changed the sum: %v vs %v", with, without)
		}
	}
}

func TestDecayAttenuates(t *testing.T) {
	s := Source{Origin: mgl64.Vec3{radius, 0, 0}, Amplitude: 1, CycleLength: 1}
	d := s
	d.Decay = 0.5

	p := mgl64.Vec3{0, 0, radius}
	plain := s.ElevationAt(p, 0.7, radius)
	damped := d.ElevationAt(p, 0.7, radius)
	want := plain * math.Exp(-0.5*math.Pi/2*radius)
	if math.Abs(damped-want) > 1e-12 {
		t.Errorf("decayed elevation = %v, want %v", damped, want)
	}
}

func TestCombinedEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		if got := Combined(randomSurfacePoint(rng), rng.Float64()*50, radius, nil); got != 0 {
			t.Fatalf("Combined with no sources = %v, want 0", got)
		}
	}
}

func TestCombinedAdditive(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := Source{Origin: randomSurfacePoint(rng), Amplitude: 5, CycleLength: 0.175}
	b := Source{Origin: randomSurfacePoint(rng), Amplitude: 2, CycleLength: 0.4, TimeOffset: 1}

	for i := 0; i < 200; i++ {
		p := randomSurfacePoint(rng)
		tm := rng.Float64() * 20
		want := a.ElevationAt(p, tm, radius) + b.ElevationAt(p, tm, radius)
		if got := Combined(p, tm, radius, []Source{a, b}); math.Abs(got-want) > 1e-12 {
			t.Fatalf("Combined = %v, want %v", got, want)
		}
		if rev := Combined(p, tm, radius, []Source{b, a}); math.Abs(rev-want) > 1e-12 {
			t.Fatalf("Combined depends on order: %v vs %v", rev, want)
		}
	}
}

func TestAntipodalSymmetry(t *testing.T) {
	a := Source{Origin: mgl64.Vec3{radius, 0, 0}, Amplitude: 5, CycleLength: 0.175}
	b := Source{Origin: mgl64.Vec3{-radius, 0, 0}, Amplitude: 5, CycleLength: 0.175}
	mid := mgl64.Vec3{0, radius, 0}

	for _, tm := range []float64{0, 0.3, 1.7, 12.5} {
		single := a.ElevationAt(mid, tm, radius)
		got := Combined(mid, tm, radius, []Source{a, b})
		if math.Abs(got-2*single) > 1e-9 {
			t.Errorf("t=%v: combined = %v, want %v", tm, got, 2*single)
		}
	}
}
