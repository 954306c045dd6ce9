// Package sim drives a field frame by frame: it feeds the pointer, times
// each frame, rolls telemetry windows and hands frames to the stream.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/field"
	"github.com/pthm-cable/ripple/geom"
	"github.com/pthm-cable/ripple/mesh"
	"github.com/pthm-cable/ripple/shading"
	"github.com/pthm-cable/ripple/stream"
	"github.com/pthm-cable/ripple/telemetry"
)

// DefaultOrbitPeriod is how long the synthetic pointer takes to circle the
// equator, in seconds.
const DefaultOrbitPeriod = 8.0

// Options holds runtime options that are not part of the field config.
type Options struct {
	FPS          float64 // simulated frames per second; 0 = damping.reference_fps
	LogStats     bool
	OutputDir    string
	OrbitPointer bool
	OrbitPeriod  float64

	// Hub receives every frame when set. Inbox supplies the pointer and
	// takes precedence over the orbit while a client reports one.
	Hub   *stream.Hub
	Inbox *stream.PointerInbox

	StatsCallback func(telemetry.WindowStats)
}

// Runner owns a field and everything that observes it.
type Runner struct {
	cfg  *config.Config
	opts Options

	mesh    *mesh.Mesh
	field   *field.Field
	palette shading.Palette

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	frame  int
	pos32  []float32
	colors []uint8
}

// New builds the sphere described by cfg and a field over it. cfg is
// validated and copied; later edits by the caller have no effect.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("sim: nil config")
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	if opts.FPS <= 0 {
		opts.FPS = cfg.Damping.ReferenceFPS
	}
	if !(opts.FPS > 0) || math.IsInf(opts.FPS, 0) {
		return nil, fmt.Errorf("sim: frame rate must be positive and finite, got %v", opts.FPS)
	}
	if !(opts.OrbitPeriod > 0) || math.IsInf(opts.OrbitPeriod, 0) {
		opts.OrbitPeriod = DefaultOrbitPeriod
	}

	m, err := mesh.FromConfig(cfg.Sphere)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	f, err := field.New(m.Positions, cfg)
	if err != nil {
		return nil, err
	}
	cfg = f.Config()

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := out.WriteConfig(cfg); err != nil {
		out.Close()
		return nil, err
	}

	r := &Runner{
		cfg:       cfg,
		opts:      opts,
		mesh:      m,
		field:     f,
		palette:   shading.FromConfig(cfg),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsInterval),
		output:    out,
	}
	f.SetPerfCollector(r.perf)
	return r, nil
}

// Field returns the driven field.
func (r *Runner) Field() *field.Field { return r.field }

// Mesh returns the sphere the field was built on. Its positions are the
// field's live buffer.
func (r *Runner) Mesh() *mesh.Mesh { return r.mesh }

// Frame returns the number of frames stepped so far.
func (r *Runner) Frame() int { return r.frame }

// Elapsed returns the simulated time of the next frame.
func (r *Runner) Elapsed() float64 { return float64(r.frame) / r.opts.FPS }

// Perf returns the frame timing stats over the current window.
func (r *Runner) Perf() telemetry.PerfStats { return r.perf.Stats() }

func (r *Runner) pointer(elapsed float64) (mgl64.Vec3, bool) {
	if r.opts.Inbox != nil {
		if p, ok := r.opts.Inbox.Snapshot(); ok {
			return p, true
		}
	}
	if r.opts.OrbitPointer {
		theta := 2*math.Pi*elapsed/r.opts.OrbitPeriod - math.Pi
		return geom.FromAngles(r.cfg.Sphere.Radius, math.Pi/2, theta, r.cfg.Derived.Center), true
	}
	return mgl64.Vec3{}, false
}

// Step advances one frame, streams it and flushes telemetry when a window
// closes.
func (r *Runner) Step() telemetry.FrameStats {
	elapsed := r.Elapsed()
	p, ok := r.pointer(elapsed)

	r.perf.StartFrame()
	stats := r.field.Update(field.Context{Elapsed: elapsed, Pointer: p, PointerValid: ok})

	if r.opts.Hub != nil {
		r.perf.StartPhase(telemetry.PhaseStream)
		r.broadcast()
	}

	r.perf.StartPhase(telemetry.PhaseOutput)
	r.frame++
	r.collector.Record(stats)
	r.flushTelemetry()
	r.perf.EndFrame()
	return stats
}

func (r *Runner) broadcast() {
	r.pos32 = r.field.PositionsFloat32(r.pos32)
	r.colors = r.palette.Fill(r.colors, r.field.Patterns())

	// The hub keeps msg until every client has written it.
	msg := make([]byte, 0, 8+15*r.field.Len())
	msg, err := stream.EncodeFrame(msg, uint32(r.frame), r.pos32, r.colors)
	if err != nil {
		slog.Error("failed to encode frame", "frame", r.frame, "error", err)
		return
	}
	if dropped := r.opts.Hub.Broadcast(msg); dropped > 0 {
		slog.Warn("dropped slow stream clients", "frame", r.frame, "dropped", dropped)
	}
	r.perf.RecordPresent()
}

// flushTelemetry emits the window stats once a full window is recorded.
func (r *Runner) flushTelemetry() {
	if !r.collector.ShouldFlush() {
		return
	}
	stats := r.collector.Flush(r.frame)
	perfStats := r.perf.Stats()

	if r.opts.StatsCallback != nil {
		r.opts.StatsCallback(stats)
	}

	if r.opts.LogStats {
		slog.Info("window", "stats", stats)
		slog.Info("perf", "stats", perfStats)
	}

	if err := r.output.WriteWindow(stats); err != nil {
		slog.Error("failed to write window stats", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Run steps until maxFrames frames have run (0 = unlimited) or ctx is
// done. With a hub attached it paces frames to real time; otherwise it runs
// as fast as it can.
func (r *Runner) Run(ctx context.Context, maxFrames int) error {
	var tick <-chan time.Time
	if r.opts.Hub != nil {
		period := time.Duration(float64(time.Second) / r.opts.FPS)
		if period < time.Nanosecond {
			period = time.Nanosecond
		}
		t := time.NewTicker(period)
		defer t.Stop()
		tick = t.C
	}

	for maxFrames <= 0 || r.frame < maxFrames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		r.Step()
	}
	slog.Info("max frames reached", "frame", r.frame)
	return nil
}

// Close flushes and closes the output files.
func (r *Runner) Close() error {
	return r.output.Close()
}
