package telemetry

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Collector accumulates FrameStats and produces one WindowStats per interval.
type Collector struct {
	interval    int
	windowStart int

	frames        int
	points        int
	skipped       int
	degenerate    int
	means         []float64
	stds          []float64
	patterns      []float64
	minElevation  float64
	maxElevation  float64
	pointerFrames int
	lastElapsed   float64
}

// NewCollector creates a collector that flushes every interval frames.
func NewCollector(interval int) *Collector {
	if interval < 1 {
		interval = 1
	}
	c := &Collector{
		interval: interval,
		means:    make([]float64, 0, interval),
		stds:     make([]float64, 0, interval),
		patterns: make([]float64, 0, interval),
	}
	c.reset(0)
	return c
}

func (c *Collector) reset(start int) {
	c.windowStart = start
	c.frames = 0
	c.skipped = 0
	c.degenerate = 0
	c.means = c.means[:0]
	c.stds = c.stds[:0]
	c.patterns = c.patterns[:0]
	c.minElevation = math.Inf(1)
	c.maxElevation = math.Inf(-1)
	c.pointerFrames = 0
}

// Record adds one frame to the current window.
func (c *Collector) Record(s FrameStats) {
	c.frames++
	c.points = s.Points
	c.skipped += s.Skipped
	c.degenerate = s.Degenerate
	c.means = append(c.means, s.ElevationMean)
	c.stds = append(c.stds, s.ElevationStd)
	c.patterns = append(c.patterns, s.PatternMean)
	c.minElevation = math.Min(c.minElevation, s.ElevationMin)
	c.maxElevation = math.Max(c.maxElevation, s.ElevationMax)
	if s.PointerActive {
		c.pointerFrames++
	}
	c.lastElapsed = s.Elapsed
}

// ShouldFlush reports whether the window holds a full interval.
func (c *Collector) ShouldFlush() bool {
	return c.frames >= c.interval
}

// Flush produces the window's stats and starts the next window at frame.
func (c *Collector) Flush(frame int) WindowStats {
	mean, p10, p50, p90 := ComputeDistribution(c.means)
	ws := WindowStats{
		WindowStart:   c.windowStart,
		WindowEnd:     frame,
		SimTimeSec:    c.lastElapsed,
		Frames:        c.frames,
		Points:        c.points,
		Skipped:       c.skipped,
		Degenerate:    c.degenerate,
		ElevationMean: mean,
		ElevationP10:  p10,
		ElevationP50:  p50,
		ElevationP90:  p90,
		ElevationMin:  c.minElevation,
		ElevationMax:  c.maxElevation,
		PointerFrames: c.pointerFrames,
	}
	if c.frames > 0 {
		ws.ElevationStd = stat.Mean(c.stds, nil)
		ws.PatternMean = stat.Mean(c.patterns, nil)
	} else {
		ws.ElevationMin, ws.ElevationMax = 0, 0
	}
	c.reset(frame)
	return ws
}

// Interval returns the number of frames per window.
func (c *Collector) Interval() int {
	return c.interval
}
