package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/ripple/config"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFrameStats(t *testing.T) {
	var s FrameStats
	s.ComputeFrameStats([]float64{-1, 0, 1, 2}, []float64{0.2, 0.4})

	if math.Abs(s.ElevationMean-0.5) > 1e-12 {
		t.Errorf("mean = %v, want 0.5", s.ElevationMean)
	}
	if want := math.Sqrt(1.25); math.Abs(s.ElevationStd-want) > 1e-12 {
		t.Errorf("std = %v, want %v", s.ElevationStd, want)
	}
	if s.ElevationMin != -1 || s.ElevationMax != 2 {
		t.Errorf("min/max = %v/%v, want -1/2", s.ElevationMin, s.ElevationMax)
	}
	if math.Abs(s.PatternMean-0.3) > 1e-12 {
		t.Errorf("pattern mean = %v, want 0.3", s.PatternMean)
	}
}

func TestComputeFrameStatsEmpty(t *testing.T) {
	var s FrameStats
	s.ComputeFrameStats(nil, nil)
	if s.ElevationMean != 0 || s.ElevationMin != 0 || s.PatternMean != 0 {
		t.Errorf("empty buffers should leave zeros, got %+v", s)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(3)
	for i := 1; i <= 3; i++ {
		c.Record(FrameStats{
			Frame:         i,
			Elapsed:       float64(i) / 60,
			Points:        100,
			Skipped:       1,
			ElevationMean: float64(i),
			ElevationMin:  -float64(i),
			ElevationMax:  float64(i),
			PointerActive: i == 2,
		})
	}
	if !c.ShouldFlush() {
		t.Fatal("expected flush after a full interval")
	}

	ws := c.Flush(3)
	if ws.Frames != 3 || ws.Skipped != 3 || ws.Points != 100 {
		t.Errorf("counts = %+v", ws)
	}
	if ws.ElevationMean != 2 || ws.ElevationP50 != 2 {
		t.Errorf("elevation mean/p50 = %v/%v, want 2/2", ws.ElevationMean, ws.ElevationP50)
	}
	if ws.ElevationMin != -3 || ws.ElevationMax != 3 {
		t.Errorf("extremes = %v/%v, want -3/3", ws.ElevationMin, ws.ElevationMax)
	}
	if ws.PointerFrames != 1 {
		t.Errorf("pointer frames = %d, want 1", ws.PointerFrames)
	}
	if c.ShouldFlush() {
		t.Error("collector should reset after flush")
	}

	empty := c.Flush(4)
	if empty.Frames != 0 || empty.ElevationMin != 0 || empty.ElevationMax != 0 {
		t.Errorf("empty window = %+v", empty)
	}
	if empty.WindowStart != 3 {
		t.Errorf("window start = %d, want 3", empty.WindowStart)
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := om.WriteWindow(WindowStats{WindowEnd: i * 60, Frames: 60}); err != nil {
			t.Fatalf("WriteWindow: %v", err)
		}
		if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, i*60); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("frames.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("header = %q", lines[0])
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteWindow(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
