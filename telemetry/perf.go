package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one field frame.
const (
	PhaseSample   = "sample"
	PhaseAnalyze  = "analyze"
	PhaseDisplace = "displace"
	PhaseSmooth   = "smooth"
	PhaseCommit   = "commit"
	PhaseStream   = "stream"
	PhaseOutput   = "output"
)

// phaseOrder fixes the order phases are logged in.
var phaseOrder = []string{
	PhaseSample, PhaseAnalyze, PhaseDisplace, PhaseSmooth, PhaseCommit,
	PhaseStream, PhaseOutput,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks per-phase timings over a rolling window of frames.
// A nil collector ignores every call, so callers need not check for one.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall-clock spacing between presented frames
	lastPresent time.Time
	presentGap  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	if p == nil {
		return
	}
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame closes the running phase and records the frame.
func (p *PerfCollector) EndFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordPresent marks a frame as handed to the consumer (stream or renderer).
func (p *PerfCollector) RecordPresent() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.presentGap = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration

	// Average duration and share of frame time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	FramesPerSecond float64 // Compute throughput

	PresentGap time.Duration
	PresentFPS float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var presentFPS float64
	if p.presentGap > 0 {
		presentFPS = float64(time.Second) / float64(p.presentGap)
	}

	stats := PerfStats{
		PhaseAvg:   make(map[string]time.Duration),
		PhasePct:   make(map[string]float64),
		PresentGap: p.presentGap,
		PresentFPS: presentFPS,
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration
		if i == 0 || s.FrameDuration < stats.MinFrame {
			stats.MinFrame = s.FrameDuration
		}
		if s.FrameDuration > stats.MaxFrame {
			stats.MaxFrame = s.FrameDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	stats.AvgFrame = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if stats.AvgFrame > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(stats.AvgFrame) * 100
		}
	}
	if stats.AvgFrame > 0 {
		stats.FramesPerSecond = float64(time.Second) / float64(stats.AvgFrame)
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.PresentFPS > 0 {
		attrs = append(attrs, slog.Float64("present_fps", s.PresentFPS))
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	PresentFPS   float64 `csv:"present_fps"`
	SamplePct    float64 `csv:"sample_pct"`
	AnalyzePct   float64 `csv:"analyze_pct"`
	DisplacePct  float64 `csv:"displace_pct"`
	SmoothPct    float64 `csv:"smooth_pct"`
	CommitPct    float64 `csv:"commit_pct"`
	StreamPct    float64 `csv:"stream_pct"`
	OutputPct    float64 `csv:"output_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		MinFrameUS:   s.MinFrame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		PresentFPS:   s.PresentFPS,
		SamplePct:    s.PhasePct[PhaseSample],
		AnalyzePct:   s.PhasePct[PhaseAnalyze],
		DisplacePct:  s.PhasePct[PhaseDisplace],
		SmoothPct:    s.PhasePct[PhaseSmooth],
		CommitPct:    s.PhasePct[PhaseCommit],
		StreamPct:    s.PhasePct[PhaseStream],
		OutputPct:    s.PhasePct[PhaseOutput],
	}
}
