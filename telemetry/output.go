package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ripple/config"
)

// csvLog appends records to one CSV file, writing the header once.
type csvLog struct {
	f             *os.File
	headerWritten bool
}

func openCSV(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{f: f}, nil
}

func (l *csvLog) write(records any) error {
	if !l.headerWritten {
		l.headerWritten = true
		return gocsv.Marshal(records, l.f)
	}
	return gocsv.MarshalWithoutHeaders(records, l.f)
}

// OutputManager writes run output: the effective config, per-window frame
// stats and per-window perf stats. A nil manager discards everything.
type OutputManager struct {
	dir    string
	frames *csvLog
	perf   *csvLog
}

// NewOutputManager creates dir and opens the CSV files in it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	frames, err := openCSV(dir, "frames.csv")
	if err != nil {
		return nil, err
	}
	perf, err := openCSV(dir, "perf.csv")
	if err != nil {
		frames.f.Close()
		return nil, err
	}
	return &OutputManager{dir: dir, frames: frames, perf: perf}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends a window record to frames.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.frames.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

// WritePerf appends a perf record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, c := range []io.Closer{om.frames.f, om.perf.f} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
