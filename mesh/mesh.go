// Package mesh generates rest sample buffers for a sphere.
package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/geom"
)

// Mesh is a flat xyz position buffer with optional triangle indices.
type Mesh struct {
	Positions []float64
	Indices   []uint32
}

// Len returns the number of vertices.
func (m *Mesh) Len() int { return len(m.Positions) / 3 }

// UVSphere builds a latitude/longitude sphere. Rows run pole to pole and
// each row repeats its first vertex at the seam, giving
// (widthSegments+1)*(heightSegments+1) vertices.
func UVSphere(radius float64, center mgl64.Vec3, widthSegments, heightSegments int) *Mesh {
	cols := widthSegments + 1
	rows := heightSegments + 1
	m := &Mesh{Positions: make([]float64, 0, 3*cols*rows)}

	for iy := 0; iy < rows; iy++ {
		phi := float64(iy) / float64(heightSegments) * math.Pi
		for ix := 0; ix < cols; ix++ {
			theta := float64(ix)/float64(widthSegments)*2*math.Pi - math.Pi
			p := geom.FromAngles(radius, phi, theta, center)
			m.Positions = append(m.Positions, p[0], p[1], p[2])
		}
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy*cols + ix + 1)
			b := uint32(iy*cols + ix)
			c := uint32((iy+1)*cols + ix)
			d := uint32((iy+1)*cols + ix + 1)
			// Pole rows collapse to a point; skip their degenerate triangle.
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m
}

// FibonacciSphere spreads n points evenly over the sphere along a golden
// spiral. It has no triangles.
func FibonacciSphere(radius float64, center mgl64.Vec3, n int) *Mesh {
	m := &Mesh{Positions: make([]float64, 0, 3*n)}
	k := math.Sqrt(float64(n) * math.Pi)
	for i := 0; i < n; i++ {
		phi := math.Acos(-1 + 2*float64(i)/float64(n))
		p := geom.FromAngles(radius, phi, k*phi, center)
		m.Positions = append(m.Positions, p[0], p[1], p[2])
	}
	return m
}

// FromConfig builds the mesh described by cfg.
func FromConfig(cfg config.SphereConfig) (*Mesh, error) {
	center := cfg.Center.Vec()
	switch cfg.Generator {
	case "uv":
		if cfg.WidthSegments < 3 || cfg.HeightSegments < 2 {
			return nil, fmt.Errorf("uv sphere needs at least 3x2 segments, got %dx%d", cfg.WidthSegments, cfg.HeightSegments)
		}
		return UVSphere(cfg.Radius, center, cfg.WidthSegments, cfg.HeightSegments), nil
	case "fibonacci":
		if cfg.Points < 1 {
			return nil, fmt.Errorf("fibonacci sphere needs at least 1 point, got %d", cfg.Points)
		}
		return FibonacciSphere(cfg.Radius, center, cfg.Points), nil
	}
	return nil, fmt.Errorf("unknown sphere generator %q", cfg.Generator)
}
