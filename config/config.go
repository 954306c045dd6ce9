// Package config provides configuration loading and validation for the
// displacement engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ripple/geom"
	"github.com/pthm-cable/ripple/noise"
	"github.com/pthm-cable/ripple/zone"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all engine configuration parameters.
type Config struct {
	Sphere      SphereConfig      `yaml:"sphere"`
	Waves       WavesConfig       `yaml:"waves"`
	Pattern     PatternConfig     `yaml:"pattern"`
	Zone        ZoneConfig        `yaml:"zone"`
	Interaction InteractionConfig `yaml:"interaction"`
	Damping     DampingConfig     `yaml:"damping"`
	Shading     ShadingConfig     `yaml:"shading"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Stream      StreamConfig      `yaml:"stream"`

	// Derived values computed after validation
	Derived DerivedConfig `yaml:"-"`
}

// Point is a cartesian position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec returns p as a vector.
func (p Point) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// PointOf converts a vector to a Point.
func PointOf(v mgl64.Vec3) Point {
	return Point{X: v[0], Y: v[1], Z: v[2]}
}

// SphereConfig describes the rest surface and how its samples are generated.
type SphereConfig struct {
	Radius         float64 `yaml:"radius"`
	Center         Point   `yaml:"center"`
	Generator      string  `yaml:"generator"`       // uv | fibonacci
	WidthSegments  int     `yaml:"width_segments"`  // uv only
	HeightSegments int     `yaml:"height_segments"` // uv only
	Points         int     `yaml:"points"`          // fibonacci only
}

// OriginConfig places a wave source. When Phi and Theta are both set the
// origin is the surface point at those angles; otherwise X, Y, Z are used.
type OriginConfig struct {
	X     float64  `yaml:"x,omitempty"`
	Y     float64  `yaml:"y,omitempty"`
	Z     float64  `yaml:"z,omitempty"`
	Phi   *float64 `yaml:"phi,omitempty"`
	Theta *float64 `yaml:"theta,omitempty"`
}

// Resolve returns the cartesian origin on a sphere of the given radius.
func (o OriginConfig) Resolve(radius float64, center mgl64.Vec3) mgl64.Vec3 {
	if o.Phi != nil && o.Theta != nil {
		return geom.FromAngles(radius, *o.Phi, *o.Theta, center)
	}
	return mgl64.Vec3{o.X, o.Y, o.Z}
}

// SourceConfig holds one ambient wave source.
type SourceConfig struct {
	Origin      OriginConfig `yaml:"origin"`
	Amplitude   float64      `yaml:"amplitude"`    // Phase multiplier (wave frequency)
	CycleLength float64      `yaml:"cycle_length"` // Displacement scale
	TimeOffset  float64      `yaml:"time_offset"`
	Decay       float64      `yaml:"decay"` // exp(-decay*arc) envelope, 0 = none
}

// PointerWaveConfig holds the wave emitted at the pointer locus.
type PointerWaveConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Amplitude   float64 `yaml:"amplitude"`
	CycleLength float64 `yaml:"cycle_length"`
	Decay       float64 `yaml:"decay"`
}

// WavesConfig holds the ambient sources and the pointer source.
type WavesConfig struct {
	Ambient []SourceConfig    `yaml:"ambient"`
	Pointer PointerWaveConfig `yaml:"pointer"`
}

// PatternConfig holds the fractal surface pattern parameters.
type PatternConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Noise        string  `yaml:"noise"` // gradient | value | simplex
	Hash         string  `yaml:"hash"`  // bits | fractional
	Seed         int64   `yaml:"seed"`
	FractalSeed  float64 `yaml:"fractional_seed"` // 0 = default irrational seed
	Octaves      int     `yaml:"octaves"`
	UVZoom       float64 `yaml:"uv_zoom"`
	Speed        float64 `yaml:"speed"`         // Pattern drift per second of elapsed time
	MaxElevation float64 `yaml:"max_elevation"` // Displacement at pattern = 1
	Stepped      bool    `yaml:"stepped"`       // Pass noise through the hue-stepping shaper
}

// ZoneConfig holds the active-band control points.
type ZoneConfig struct {
	Axis      string  `yaml:"axis"`
	ControlA  Point   `yaml:"control_a"`
	ControlB  Point   `yaml:"control_b"`
	Smoothing float64 `yaml:"smoothing"` // [0,1], 0 = hard step
}

// InteractionConfig holds pointer suppression parameters.
type InteractionConfig struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float64 `yaml:"radius"`
	Easing  float64 `yaml:"easing"` // Fraction of the gap to the reported pointer closed per frame
}

// DampingConfig holds visible-position smoothing parameters.
type DampingConfig struct {
	Mode            string  `yaml:"mode"`   // lerp | spring
	Factor          float64 `yaml:"factor"` // lerp: fraction of the gap closed per frame, (0,1]
	TimeScaled      bool    `yaml:"time_scaled"`
	ReferenceFPS    float64 `yaml:"reference_fps"`
	SpringFrequency float64 `yaml:"spring_frequency"` // spring: angular frequency
	SpringDamping   float64 `yaml:"spring_damping"`   // spring: damping ratio, 1 = critical
}

// ShadingConfig holds color-by-elevation parameters.
type ShadingConfig struct {
	DepthColor   string `yaml:"depth_color"`
	SurfaceColor string `yaml:"surface_color"`
}

// TelemetryConfig holds stats and output parameters.
type TelemetryConfig struct {
	StatsInterval int `yaml:"stats_interval"` // Frames between stats windows
	PerfWindow    int `yaml:"perf_window"`    // Frames kept by the perf collector
}

// StreamConfig holds preview stream parameters.
type StreamConfig struct {
	Path           string `yaml:"path"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
	SendBuffer     int    `yaml:"send_buffer"` // Frames queued per client before it is dropped
}

// DerivedConfig holds values computed from the validated config.
type DerivedConfig struct {
	Center       mgl64.Vec3
	ControlA     mgl64.Vec3
	ControlB     mgl64.Vec3
	Axis         zone.Axis
	Origins      []mgl64.Vec3 // Resolved ambient source origins
	DepthColor   colorful.Color
	SurfaceColor colorful.Color
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults. Panics if they do not load.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Waves.Ambient = append([]SourceConfig(nil), c.Waves.Ambient...)
	out.Derived.Origins = append([]mgl64.Vec3(nil), c.Derived.Origins...)
	return &out
}

// computeDerived calculates values derived from a valid config.
func (c *Config) computeDerived() {
	c.Derived.Center = c.Sphere.Center.Vec()
	c.Derived.ControlA = c.Zone.ControlA.Vec()
	c.Derived.ControlB = c.Zone.ControlB.Vec()
	c.Derived.Axis, _ = zone.ParseAxis(c.Zone.Axis)

	c.Derived.Origins = make([]mgl64.Vec3, len(c.Waves.Ambient))
	for i, s := range c.Waves.Ambient {
		c.Derived.Origins[i] = s.Origin.Resolve(c.Sphere.Radius, c.Derived.Center)
	}

	c.Derived.DepthColor, _ = colorful.Hex(c.Shading.DepthColor)
	c.Derived.SurfaceColor, _ = colorful.Hex(c.Shading.SurfaceColor)
}

// Validate reports every invalid setting, each wrapping ErrInvalid. On
// success it refreshes the derived values.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	s := c.Sphere
	if !(s.Radius > 0) {
		fail("sphere.radius must be positive, got %v", s.Radius)
	}
	switch s.Generator {
	case "uv":
		if s.WidthSegments < 3 || s.HeightSegments < 2 {
			fail("sphere uv segments must be at least 3x2, got %dx%d", s.WidthSegments, s.HeightSegments)
		}
	case "fibonacci":
		if s.Points < 1 {
			fail("sphere.points must be at least 1, got %d", s.Points)
		}
	default:
		fail("sphere.generator must be uv or fibonacci, got %q", s.Generator)
	}

	for i, src := range c.Waves.Ambient {
		if src.Amplitude < 0 || src.CycleLength < 0 || src.Decay < 0 {
			fail("waves.ambient[%d]: amplitude, cycle_length and decay must be non-negative", i)
		}
		if (src.Origin.Phi == nil) != (src.Origin.Theta == nil) {
			fail("waves.ambient[%d]: origin needs both phi and theta", i)
		}
	}
	if p := c.Waves.Pointer; p.Amplitude < 0 || p.CycleLength < 0 || p.Decay < 0 {
		fail("waves.pointer: amplitude, cycle_length and decay must be non-negative")
	}

	pt := c.Pattern
	if pt.Octaves < 1 {
		fail("pattern.octaves must be at least 1, got %d", pt.Octaves)
	}
	if _, err := noise.NewHasher(noise.HashKind(pt.Hash), pt.FractalSeed); err != nil {
		fail("pattern.hash: %v", err)
	}
	if err := noise.CheckKind(noise.Kind(pt.Noise)); err != nil {
		fail("pattern.noise: %v", err)
	}
	if pt.UVZoom < 0 || pt.MaxElevation < 0 {
		fail("pattern.uv_zoom and pattern.max_elevation must be non-negative")
	}

	z := c.Zone
	axis, err := zone.ParseAxis(z.Axis)
	if err != nil {
		fail("zone.axis: %v", err)
	} else {
		center := c.Sphere.Center.Vec()[axis]
		for _, cp := range []struct {
			name string
			p    Point
		}{{"control_a", z.ControlA}, {"control_b", z.ControlB}} {
			if d := cp.p.Vec()[axis] - center; d < -s.Radius || d > s.Radius {
				fail("zone.%s is %v from the center on %s, beyond the sphere radius %v", cp.name, d, axis, s.Radius)
			}
		}
	}
	if z.Smoothing < 0 || z.Smoothing > 1 {
		fail("zone.smoothing must be in [0,1], got %v", z.Smoothing)
	}

	in := c.Interaction
	if !(in.Radius > 0) {
		fail("interaction.radius must be positive, got %v", in.Radius)
	}
	if !(in.Easing > 0 && in.Easing <= 1) {
		fail("interaction.easing must be in (0,1], got %v", in.Easing)
	}

	d := c.Damping
	if !(d.ReferenceFPS > 0) || math.IsInf(d.ReferenceFPS, 0) {
		fail("damping.reference_fps must be positive and finite, got %v", d.ReferenceFPS)
	}
	switch d.Mode {
	case "lerp":
		if !(d.Factor > 0 && d.Factor <= 1) {
			fail("damping.factor must be in (0,1], got %v", d.Factor)
		}
	case "spring":
		if !(d.SpringFrequency > 0) || d.SpringDamping < 0 {
			fail("damping spring needs positive frequency and non-negative damping ratio")
		}
	default:
		fail("damping.mode must be lerp or spring, got %q", d.Mode)
	}

	if _, err := colorful.Hex(c.Shading.DepthColor); err != nil {
		fail("shading.depth_color: %v", err)
	}
	if _, err := colorful.Hex(c.Shading.SurfaceColor); err != nil {
		fail("shading.surface_color: %v", err)
	}

	if c.Telemetry.StatsInterval < 1 || c.Telemetry.PerfWindow < 1 {
		fail("telemetry.stats_interval and telemetry.perf_window must be at least 1")
	}
	if c.Stream.SendBuffer < 1 || c.Stream.WriteTimeoutMS < 1 {
		fail("stream.send_buffer and stream.write_timeout_ms must be at least 1")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
