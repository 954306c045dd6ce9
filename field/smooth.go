package field

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/pthm-cable/ripple/config"
)

// Smoother moves the visible buffer toward the displaced target.
type Smoother interface {
	// Smooth writes the next visible coordinates into next, given the
	// currently visible coordinates and the target. dt is the frame step
	// in seconds.
	Smooth(next, current, target []float64, dt float64)
	// Reset drops any per-point state for point i.
	Reset(i int)
}

// LerpSmoother closes a fixed fraction of the gap each frame:
//
//	next = current + k*(target - current)
type LerpSmoother struct {
	Factor       float64
	TimeScaled   bool
	ReferenceFPS float64
}

// StepFactor returns the fraction of the gap closed over dt. When time
// scaling is on, Factor is the per-frame fraction at ReferenceFPS and a
// longer step closes proportionally more.
func (s LerpSmoother) StepFactor(dt float64) float64 {
	if !s.TimeScaled || dt <= 0 || s.ReferenceFPS <= 0 {
		return s.Factor
	}
	return 1 - math.Pow(1-s.Factor, dt*s.ReferenceFPS)
}

func (s LerpSmoother) Smooth(next, current, target []float64, dt float64) {
	k := s.StepFactor(dt)
	copy(next, current)
	vNext := blas64.Vector{N: len(next), Inc: 1, Data: next}
	vTarget := blas64.Vector{N: len(target), Inc: 1, Data: target}
	blas64.Scal(1-k, vNext)        // next = (1-k)*current
	blas64.Axpy(k, vTarget, vNext) // next = (1-k)*current + k*target
}

func (LerpSmoother) Reset(int) {}

// SpringSmoother drives every coordinate with a damped spring, so points
// carry velocity and overshoot when under-damped.
type SpringSmoother struct {
	frequency float64
	damping   float64
	spring    harmonica.Spring
	dt        float64
	vel       []float64
}

// NewSpringSmoother creates a spring smoother for n points.
func NewSpringSmoother(n int, frequency, damping float64) *SpringSmoother {
	return &SpringSmoother{
		frequency: frequency,
		damping:   damping,
		vel:       make([]float64, 3*n),
	}
}

func (s *SpringSmoother) Smooth(next, current, target []float64, dt float64) {
	if dt != s.dt {
		s.spring = harmonica.NewSpring(dt, s.frequency, s.damping)
		s.dt = dt
	}
	for j := range next {
		next[j], s.vel[j] = s.spring.Update(current[j], s.vel[j], target[j])
	}
}

func (s *SpringSmoother) Reset(i int) {
	s.vel[3*i], s.vel[3*i+1], s.vel[3*i+2] = 0, 0, 0
}

// newSmoother builds the smoother selected by cfg for n points.
func newSmoother(cfg config.DampingConfig, n int) Smoother {
	if cfg.Mode == "spring" {
		return NewSpringSmoother(n, cfg.SpringFrequency, cfg.SpringDamping)
	}
	return LerpSmoother{
		Factor:       cfg.Factor,
		TimeScaled:   cfg.TimeScaled,
		ReferenceFPS: cfg.ReferenceFPS,
	}
}
