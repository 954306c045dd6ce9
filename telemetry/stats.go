package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameStats summarizes one field update.
type FrameStats struct {
	Frame   int
	Elapsed float64

	Points     int
	Skipped    int // Non-finite results held at their last good position
	Degenerate int // Points at the sphere center, held at rest

	ElevationMean float64
	ElevationStd  float64
	ElevationMin  float64
	ElevationMax  float64
	PatternMean   float64

	PointerActive bool
}

// ComputeFrameStats fills the distribution fields of s from the per-point
// elevation and pattern buffers. Empty buffers leave the fields at zero.
func (s *FrameStats) ComputeFrameStats(elevations, patterns []float64) {
	if len(elevations) > 0 {
		s.ElevationMean, s.ElevationStd = stat.PopMeanStdDev(elevations, nil)
		s.ElevationMin = floats.Min(elevations)
		s.ElevationMax = floats.Max(elevations)
	}
	if len(patterns) > 0 {
		s.PatternMean = stat.Mean(patterns, nil)
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("elapsed", s.Elapsed),
		slog.Int("points", s.Points),
		slog.Int("skipped", s.Skipped),
		slog.Int("degenerate", s.Degenerate),
		slog.Float64("elevation_mean", s.ElevationMean),
		slog.Float64("elevation_std", s.ElevationStd),
		slog.Float64("elevation_min", s.ElevationMin),
		slog.Float64("elevation_max", s.ElevationMax),
		slog.Float64("pattern_mean", s.PatternMean),
		slog.Bool("pointer", s.PointerActive),
	)
}

// WindowStats aggregates the frames of one stats interval.
type WindowStats struct {
	WindowStart int     `csv:"-"`
	WindowEnd   int     `csv:"window_end"`
	SimTimeSec  float64 `csv:"sim_time"`
	Frames      int     `csv:"frames"`
	Points      int     `csv:"points"`

	Skipped    int `csv:"skipped"`
	Degenerate int `csv:"degenerate"`

	// Distribution of per-frame mean elevation across the window
	ElevationMean float64 `csv:"elevation_mean"`
	ElevationP10  float64 `csv:"elevation_p10"`
	ElevationP50  float64 `csv:"elevation_p50"`
	ElevationP90  float64 `csv:"elevation_p90"`
	ElevationStd  float64 `csv:"elevation_std"` // Mean per-frame spread

	// Extremes over every point of every frame
	ElevationMin float64 `csv:"elevation_min"`
	ElevationMax float64 `csv:"elevation_max"`

	PatternMean   float64 `csv:"pattern_mean"`
	PointerFrames int     `csv:"pointer_frames"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean and p10/p50/p90 of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("points", s.Points),
		slog.Int("skipped", s.Skipped),
		slog.Int("degenerate", s.Degenerate),
		slog.Float64("elevation_mean", s.ElevationMean),
		slog.Float64("elevation_p10", s.ElevationP10),
		slog.Float64("elevation_p50", s.ElevationP50),
		slog.Float64("elevation_p90", s.ElevationP90),
		slog.Float64("elevation_std", s.ElevationStd),
		slog.Float64("elevation_min", finiteOrZero(s.ElevationMin)),
		slog.Float64("elevation_max", finiteOrZero(s.ElevationMax)),
		slog.Float64("pattern_mean", s.PatternMean),
		slog.Int("pointer_frames", s.PointerFrames),
	)
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
