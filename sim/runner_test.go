package sim

import (
	"context"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/stream"
	"github.com/pthm-cable/ripple/telemetry"
)

func smallConfig() *config.Config {
	cfg := config.Default().Clone()
	cfg.Sphere.Generator = "fibonacci"
	cfg.Sphere.Points = 200
	cfg.Telemetry.StatsInterval = 5
	cfg.Telemetry.PerfWindow = 10
	return cfg
}

func newRunner(t *testing.T, cfg *config.Config, opts Options) *Runner {
	t.Helper()
	r, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewRejectsBadSphere(t *testing.T) {
	cfg := smallConfig()
	cfg.Sphere.Generator = "icosa"
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("expected error for unknown generator")
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNewRejectsBadFrameRate(t *testing.T) {
	tests := []struct {
		name   string
		refFPS float64
		fps    float64
	}{
		{"no reference fps", 0, 0},
		{"infinite fps", 60, math.Inf(1)},
		{"nan fps", 60, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Damping.ReferenceFPS = tt.refFPS
			if r, err := New(cfg, Options{FPS: tt.fps}); err == nil {
				r.Close()
				t.Errorf("New accepted frame rate %v with reference %v", tt.fps, tt.refFPS)
			}
		})
	}
}

func TestElapsedFinite(t *testing.T) {
	cfg := smallConfig()
	cfg.Damping.ReferenceFPS = 50
	r := newRunner(t, cfg, Options{})
	for i := 0; i < 3; i++ {
		if stats := r.Step(); stats.Skipped != 0 {
			t.Fatalf("frame %d skipped %d points", i, stats.Skipped)
		}
	}
	if got, want := r.Elapsed(), 3.0/50; math.Abs(got-want) > 1e-12 {
		t.Errorf("elapsed = %v, want %v", got, want)
	}
}

func TestNewCopiesCallerConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig()
	cfg.Shading.DepthColor = "#ff0000"
	cfg.Sphere.Center = config.Point{X: 1}
	r := newRunner(t, cfg, Options{OutputDir: dir, OrbitPointer: true})

	if got := r.palette.Depth.Hex(); got != "#ff0000" {
		t.Errorf("palette depth = %s, want #ff0000", got)
	}

	cfg.Shading.SurfaceColor = "#00ff00"
	if got := r.palette.Surface.Hex(); got == "#00ff00" {
		t.Error("palette followed an edit made after New")
	}

	r.Step()
	locus, _ := r.Field().Locus()
	if d := locus.Sub(mgl64.Vec3{-6, 0, 0}).Len(); d > 1e-9 {
		t.Errorf("orbit locus = %v, want it around center (1,0,0)", locus)
	}

	snap, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Shading.DepthColor != "#ff0000" || snap.Sphere.Center.X != 1 {
		t.Errorf("config snapshot = %+v, %+v", snap.Shading, snap.Sphere.Center)
	}
}

func TestRunWindows(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	r := newRunner(t, smallConfig(), Options{
		FPS:           30,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	if err := r.Run(context.Background(), 12); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Frame() != 12 {
		t.Errorf("frame = %d, want 12", r.Frame())
	}
	if len(windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(windows))
	}
	if windows[1].WindowStart != 5 || windows[1].WindowEnd != 10 {
		t.Errorf("second window = [%d, %d), want [5, 10)", windows[1].WindowStart, windows[1].WindowEnd)
	}
	if windows[0].Points != 200 {
		t.Errorf("points = %d, want 200", windows[0].Points)
	}
	if got, want := windows[1].SimTimeSec, 9.0/30; math.Abs(got-want) > 1e-12 {
		t.Errorf("sim time = %v, want %v", got, want)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"frames.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if lines := strings.Count(string(data), "\n"); lines != 3 {
			t.Errorf("%s has %d lines, want header plus 2", name, lines)
		}
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRunner(t, smallConfig(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, 0); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if r.Frame() != 0 {
		t.Errorf("stepped %d frames after cancel", r.Frame())
	}
}

func TestOrbitPointer(t *testing.T) {
	r := newRunner(t, smallConfig(), Options{FPS: 60, OrbitPointer: true, OrbitPeriod: 4})
	r.Step()

	locus, ok := r.Field().Locus()
	if !ok {
		t.Fatal("orbit did not report a pointer")
	}
	// Frame 0 starts at theta = -pi on the equator.
	want := mgl64.Vec3{-7, 0, 0}
	if d := locus.Sub(want).Len(); d > 1e-9 {
		t.Errorf("locus = %v, want %v", locus, want)
	}

	stats := r.Step()
	if !stats.PointerActive {
		t.Error("frame with orbiting pointer not marked active")
	}
}

func TestNoPointer(t *testing.T) {
	r := newRunner(t, smallConfig(), Options{Inbox: &stream.PointerInbox{}})
	r.Step()
	if _, ok := r.Field().Locus(); ok {
		t.Error("empty inbox produced a pointer")
	}
}

func TestStreamedFrames(t *testing.T) {
	cfg := smallConfig()
	inbox := &stream.PointerInbox{}
	hub := stream.NewHub(cfg.Stream, inbox)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	inbox.Set(mgl64.Vec3{0, 7, 0})
	r := newRunner(t, cfg, Options{Hub: hub, Inbox: inbox, OrbitPointer: true})
	r.Step()

	if locus, _ := r.Field().Locus(); locus != (mgl64.Vec3{0, 7, 0}) {
		t.Errorf("locus = %v, inbox should win over the orbit", locus)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := stream.DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.Number != 0 || len(f.Positions) != 600 || len(f.Colors) != 600 {
		t.Errorf("frame %d with %d positions and %d colors", f.Number, len(f.Positions), len(f.Colors))
	}
	pos := r.Field().Positions()
	for i, v := range f.Positions {
		if v != float32(pos[i]) {
			t.Fatalf("position[%d] = %v, want %v", i, v, float32(pos[i]))
		}
	}
}

func BenchmarkStep(b *testing.B) {
	cfg := config.Default()
	r, err := New(cfg, Options{OrbitPointer: true})
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Step()
	}
}
