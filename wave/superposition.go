package wave

import "github.com/go-gl/mathgl/mgl64"

// Superposition combines a fixed set of ambient sources with one reusable
// slot for the pointer-driven source. Tracking the pointer rewrites the slot
// in place, so a moving pointer allocates nothing per frame.
type Superposition struct {
	ambient []Source
	pointer Source
	active  bool
}

// NewSuperposition copies ambient so later changes by the caller have no effect.
func NewSuperposition(ambient []Source, pointer Source) *Superposition {
	s := &Superposition{
		ambient: make([]Source, len(ambient)),
		pointer: pointer,
	}
	copy(s.ambient, ambient)
	return s
}

// Ambient returns the ambient sources. The slice must not be modified.
func (s *Superposition) Ambient() []Source {
	return s.ambient
}

// TrackPointer moves the pointer source to locus and enables it.
func (s *Superposition) TrackPointer(locus mgl64.Vec3) {
	s.pointer.Origin = locus
	s.active = true
}

// ReleasePointer disables the pointer source.
func (s *Superposition) ReleasePointer() {
	s.active = false
}

// PointerActive reports whether the pointer source contributes.
func (s *Superposition) PointerActive() bool {
	return s.active
}

// Pointer returns the current pointer slot.
func (s *Superposition) Pointer() Source {
	return s.pointer
}

// ElevationAt sums the ambient sources and, when active, the pointer source.
func (s *Superposition) ElevationAt(p mgl64.Vec3, t, radius float64) float64 {
	e := Combined(p, t, radius, s.ambient)
	if s.active {
		e += s.pointer.ElevationAt(p, t, radius)
	}
	return e
}
