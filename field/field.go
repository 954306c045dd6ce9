// Package field owns the animated sample buffer of a displaced sphere and
// advances it one frame at a time.
//
// Each Update runs five passes over the buffer, strictly in order:
//
//	sample    read each point's current position as spherical coordinates
//	analyze   evaluate the wave superposition and the zone-blended pattern
//	displace  move the point radially to rest radius plus elevation
//	smooth    ease the visible position toward that target
//	commit    write back finite results; hold the last good position otherwise
//
// A Field is not safe for concurrent use. The caller's render loop is the
// only writer.
package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/geom"
	"github.com/pthm-cable/ripple/noise"
	"github.com/pthm-cable/ripple/telemetry"
	"github.com/pthm-cable/ripple/wave"
	"github.com/pthm-cable/ripple/zone"
)

// Context carries everything that changes between frames.
type Context struct {
	// Elapsed is the monotonic scene time in seconds.
	Elapsed float64
	// Pointer is the latest known pointer locus. It is ignored unless
	// PointerValid is set.
	Pointer      mgl64.Vec3
	PointerValid bool
}

// FieldSample is one point's evaluation for one frame.
type FieldSample struct {
	Elevation float64
	Pattern   float64 // Zone-blended pattern in [0,1], for shading
}

// Field is the displacement engine for one sample buffer.
type Field struct {
	cfg    *config.Config
	n      int
	center mgl64.Vec3
	radius float64

	positions []float64 // caller's buffer, the visible state
	rest      []float64
	lastGood  []float64
	target    []float64
	next      []float64

	sph        []geom.Spherical
	elevations []float64
	patterns   []float64
	degenerate []bool
	nDegen     int

	waves       *wave.Superposition
	pattern     noise.Fractal
	controls    zone.Controls
	interaction zone.Interaction
	pointerSeen bool

	smoother Smoother
	perf     *telemetry.PerfCollector

	frame       int
	lastElapsed float64
}

// New creates a field over positions, a flat xyz buffer of surface samples
// at rest. The buffer is copied as the rest shape and then mutated in place
// by every Update. cfg is validated and copied.
func New(positions []float64, cfg *config.Config) (*Field, error) {
	if cfg == nil {
		return nil, errors.New("field: nil config")
	}
	if len(positions) == 0 || len(positions)%3 != 0 {
		return nil, fmt.Errorf("field: position buffer length %d is not a positive multiple of 3", len(positions))
	}
	for i, v := range positions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("field: rest position %d has non-finite coordinate %v", i/3, v)
		}
	}

	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("field: %w", err)
	}

	n := len(positions) / 3
	f := &Field{
		cfg:        cfg,
		n:          n,
		center:     cfg.Derived.Center,
		radius:     cfg.Sphere.Radius,
		positions:  positions,
		rest:       append([]float64(nil), positions...),
		lastGood:   append([]float64(nil), positions...),
		target:     make([]float64, len(positions)),
		next:       make([]float64, len(positions)),
		sph:        make([]geom.Spherical, n),
		elevations: make([]float64, n),
		patterns:   make([]float64, n),
		degenerate: make([]bool, n),
		smoother:   newSmoother(cfg.Damping, n),
	}

	for i := 0; i < n; i++ {
		if geom.ToSpherical(f.restAt(i), f.center).Degenerate() {
			f.degenerate[i] = true
			f.nDegen++
		}
	}

	if err := f.buildPattern(); err != nil {
		return nil, err
	}
	f.buildWaves()
	f.applyZone()
	f.interaction.Enabled = cfg.Interaction.Enabled
	f.interaction.Radius = cfg.Interaction.Radius

	return f, nil
}

func (f *Field) buildPattern() error {
	p := f.cfg.Pattern
	h, err := noise.NewHasher(noise.HashKind(p.Hash), p.FractalSeed)
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}
	base, err := noise.NewBase(noise.Kind(p.Noise), h, p.Seed)
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}
	f.pattern = noise.Fractal{Base: base, Octaves: p.Octaves}
	return nil
}

func (f *Field) buildWaves() {
	ambient := make([]wave.Source, len(f.cfg.Waves.Ambient))
	for i, s := range f.cfg.Waves.Ambient {
		ambient[i] = wave.Source{
			Origin:      f.cfg.Derived.Origins[i],
			Amplitude:   s.Amplitude,
			CycleLength: s.CycleLength,
			TimeOffset:  s.TimeOffset,
			Decay:       s.Decay,
		}
	}
	p := f.cfg.Waves.Pointer
	f.waves = wave.NewSuperposition(ambient, wave.Source{
		Amplitude:   p.Amplitude,
		CycleLength: p.CycleLength,
		Decay:       p.Decay,
	})
}

func (f *Field) applyZone() {
	f.controls = zone.Controls{
		A:         f.cfg.Derived.ControlA,
		B:         f.cfg.Derived.ControlB,
		Axis:      f.cfg.Derived.Axis,
		Center:    f.center,
		MidRadius: f.radius,
		Smoothing: f.cfg.Zone.Smoothing,
	}
}

// SetPerfCollector attaches a collector that times each pass. nil detaches.
func (f *Field) SetPerfCollector(p *telemetry.PerfCollector) {
	f.perf = p
}

// reconfigure validates a modified copy of the config and swaps it in.
func (f *Field) reconfigure(mutate func(c *config.Config)) error {
	next := f.cfg.Clone()
	mutate(next)
	if err := next.Validate(); err != nil {
		return err
	}
	f.cfg = next
	return nil
}

// SetControlPoints moves the zone band. Points beyond the sphere on the band
// axis are rejected and the band is left unchanged.
func (f *Field) SetControlPoints(a, b mgl64.Vec3) error {
	err := f.reconfigure(func(c *config.Config) {
		c.Zone.ControlA = config.PointOf(a)
		c.Zone.ControlB = config.PointOf(b)
	})
	if err != nil {
		return err
	}
	f.applyZone()
	return nil
}

// SetSmoothing sets the zone fade width, which must lie in [0,1].
func (f *Field) SetSmoothing(w float64) error {
	if err := f.reconfigure(func(c *config.Config) { c.Zone.Smoothing = w }); err != nil {
		return err
	}
	f.controls.Smoothing = w
	return nil
}

// SetInteraction toggles pointer suppression and sets its radius.
func (f *Field) SetInteraction(enabled bool, radius float64) error {
	err := f.reconfigure(func(c *config.Config) {
		c.Interaction.Enabled = enabled
		c.Interaction.Radius = radius
	})
	if err != nil {
		return err
	}
	f.interaction.Enabled = enabled
	f.interaction.Radius = radius
	return nil
}

// Config returns a copy of the field's current configuration.
func (f *Field) Config() *config.Config {
	return f.cfg.Clone()
}

// Len returns the number of sample points.
func (f *Field) Len() int { return f.n }

// Positions returns the visible buffer, the one passed to New.
func (f *Field) Positions() []float64 { return f.positions }

// Rest returns the rest buffer. It must not be modified.
func (f *Field) Rest() []float64 { return f.rest }

// Elevations returns the last frame's per-point elevation.
func (f *Field) Elevations() []float64 { return f.elevations }

// Patterns returns the last frame's per-point blended pattern.
func (f *Field) Patterns() []float64 { return f.patterns }

// PositionsFloat32 converts the visible buffer into dst, growing it if
// needed, for upload to a float32 consumer.
func (f *Field) PositionsFloat32(dst []float32) []float32 {
	if cap(dst) < len(f.positions) {
		dst = make([]float32, len(f.positions))
	}
	dst = dst[:len(f.positions)]
	for i, v := range f.positions {
		dst[i] = float32(v)
	}
	return dst
}

// Locus returns the eased pointer locus and whether a pointer is known.
func (f *Field) Locus() (mgl64.Vec3, bool) {
	return f.interaction.Locus, f.pointerSeen
}

func vecAt(buf []float64, i int) mgl64.Vec3 {
	return mgl64.Vec3{buf[3*i], buf[3*i+1], buf[3*i+2]}
}

func setVec(buf []float64, i int, v mgl64.Vec3) {
	buf[3*i], buf[3*i+1], buf[3*i+2] = v[0], v[1], v[2]
}

func (f *Field) restAt(i int) mgl64.Vec3 { return vecAt(f.rest, i) }

// trackPointer eases the locus toward the reported pointer and updates the
// pointer wave slot. The first report snaps.
func (f *Field) trackPointer(ctx Context) {
	if !ctx.PointerValid || !geom.Finite(ctx.Pointer) {
		f.pointerSeen = false
		f.waves.ReleasePointer()
		return
	}
	if !f.pointerSeen {
		f.interaction.Locus = ctx.Pointer
		f.pointerSeen = true
	} else {
		e := f.cfg.Interaction.Easing
		f.interaction.Locus = f.interaction.Locus.Add(ctx.Pointer.Sub(f.interaction.Locus).Mul(e))
	}
	if f.cfg.Interaction.Enabled && f.cfg.Waves.Pointer.Enabled {
		f.waves.TrackPointer(f.interaction.Locus)
	} else {
		f.waves.ReleasePointer()
	}
}

// frameInteraction is the suppression in effect this frame.
func (f *Field) frameInteraction() zone.Interaction {
	in := f.interaction
	in.Enabled = in.Enabled && f.pointerSeen
	return in
}

// stepDuration is the time since the previous frame, or one reference frame
// when time did not advance.
func (f *Field) stepDuration(elapsed float64) float64 {
	if f.frame > 0 {
		if dt := elapsed - f.lastElapsed; dt > 0 {
			return dt
		}
	}
	if fps := f.cfg.Damping.ReferenceFPS; fps > 0 {
		return 1 / fps
	}
	return 1.0 / 60
}

// sampleAt returns point i's spherical coordinates from its visible
// position, falling back to its rest direction when the visible position
// is unusable.
func (f *Field) sampleAt(i int) geom.Spherical {
	p := vecAt(f.positions, i)
	if geom.Finite(p) {
		if s := geom.ToSpherical(p, f.center); !s.Degenerate() {
			return s
		}
	}
	return geom.ToSpherical(f.restAt(i), f.center)
}

// analyze evaluates one point. It reads only immutable state and its
// arguments.
func (f *Field) analyze(s geom.Spherical, t float64, in zone.Interaction) FieldSample {
	surface := geom.FromAngles(f.radius, s.Phi, s.Theta, f.center)
	out := FieldSample{Elevation: f.waves.ElevationAt(surface, t, f.radius)}

	pc := f.cfg.Pattern
	if pc.Enabled {
		u, v := s.UV()
		raw := f.pattern.Eval3(u*pc.UVZoom, v*pc.UVZoom, t*pc.Speed)
		if pc.Stepped {
			raw = noise.Stepped(raw)
		}
		out.Pattern = zone.Blend(surface, raw, f.controls, in)
		out.Elevation += out.Pattern * pc.MaxElevation
	}
	return out
}

// Sample evaluates point i for ctx without changing any state. Pointer
// easing is not advanced; the current eased locus is used when ctx carries
// a valid pointer.
func (f *Field) Sample(i int, ctx Context) FieldSample {
	if i < 0 || i >= f.n || f.degenerate[i] {
		return FieldSample{}
	}
	in := f.interaction
	in.Enabled = in.Enabled && ctx.PointerValid
	if ctx.PointerValid && !f.pointerSeen {
		in.Locus = ctx.Pointer
	}
	return f.analyze(f.sampleAt(i), ctx.Elapsed, in)
}

// Update advances the field by one frame and returns its stats. Phase
// timings go to the collector set with SetPerfCollector; the caller brackets
// the frame with StartFrame and EndFrame so it can time its own phases too.
func (f *Field) Update(ctx Context) telemetry.FrameStats {
	dt := f.stepDuration(ctx.Elapsed)
	f.trackPointer(ctx)
	in := f.frameInteraction()
	t := ctx.Elapsed

	f.perf.StartPhase(telemetry.PhaseSample)
	for i := 0; i < f.n; i++ {
		if !f.degenerate[i] {
			f.sph[i] = f.sampleAt(i)
		}
	}

	f.perf.StartPhase(telemetry.PhaseAnalyze)
	for i := 0; i < f.n; i++ {
		if f.degenerate[i] {
			f.elevations[i], f.patterns[i] = 0, 0
			continue
		}
		s := f.analyze(f.sph[i], t, in)
		f.elevations[i], f.patterns[i] = s.Elevation, s.Pattern
	}

	f.perf.StartPhase(telemetry.PhaseDisplace)
	for i := 0; i < f.n; i++ {
		if f.degenerate[i] {
			setVec(f.target, i, f.restAt(i))
			continue
		}
		s := f.sph[i]
		s.Radius = math.Max(0, f.radius+f.elevations[i])
		setVec(f.target, i, geom.ToCartesian(s, f.center))
	}

	f.perf.StartPhase(telemetry.PhaseSmooth)
	f.smoother.Smooth(f.next, f.positions, f.target, dt)

	f.perf.StartPhase(telemetry.PhaseCommit)
	stats := telemetry.FrameStats{
		Frame:         f.frame,
		Elapsed:       t,
		Points:        f.n,
		Degenerate:    f.nDegen,
		PointerActive: in.Enabled || f.waves.PointerActive(),
	}
	for i := 0; i < f.n; i++ {
		if f.degenerate[i] {
			r := f.restAt(i)
			setVec(f.positions, i, r)
			setVec(f.lastGood, i, r)
			continue
		}
		v := vecAt(f.next, i)
		if geom.Finite(v) {
			setVec(f.positions, i, v)
			setVec(f.lastGood, i, v)
			continue
		}
		setVec(f.positions, i, vecAt(f.lastGood, i))
		f.smoother.Reset(i)
		if math.IsNaN(f.elevations[i]) || math.IsInf(f.elevations[i], 0) {
			f.elevations[i] = 0
		}
		if math.IsNaN(f.patterns[i]) || math.IsInf(f.patterns[i], 0) {
			f.patterns[i] = 0
		}
		stats.Skipped++
	}
	stats.ComputeFrameStats(f.elevations, f.patterns)

	f.frame++
	f.lastElapsed = ctx.Elapsed
	return stats
}
