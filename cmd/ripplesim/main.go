// Command ripplesim runs the sphere displacement engine headless, optionally
// streaming frames to preview clients over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"github.com/pthm-cable/ripple/config"
	"github.com/pthm-cable/ripple/sim"
	"github.com/pthm-cable/ripple/stream"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	frames := flag.Int("frames", 0, "Stop after N frames (0 = unlimited)")
	fps := flag.Float64("fps", 60, "Simulated frames per second")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	serve := flag.String("serve", "", "Serve frames over WebSocket on this address (e.g. :8080)")
	orbitPointer := flag.Bool("orbit-pointer", false, "Drive a synthetic pointer around the equator")
	profileDir := flag.String("profile-dir", "", "Write a CPU profile to this directory")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *frames, *fps, *outputDir, *logStats, *serve, *orbitPointer, *profileDir); err != nil {
		slog.Error("ripplesim failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, frames int, fps float64, outputDir string, logStats bool, serve string, orbitPointer bool, profileDir string) error {
	if profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	opts := sim.Options{
		FPS:          fps,
		LogStats:     logStats,
		OutputDir:    outputDir,
		OrbitPointer: orbitPointer,
	}

	var srv *http.Server
	if serve != "" {
		opts.Inbox = &stream.PointerInbox{}
		opts.Hub = stream.NewHub(cfg.Stream, opts.Inbox)
		defer opts.Hub.Close()

		mux := http.NewServeMux()
		mux.Handle(cfg.Stream.Path, opts.Hub)
		srv = &http.Server{Addr: serve, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("stream server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	r, err := sim.New(cfg, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	slog.Info("starting simulation",
		"points", r.Field().Len(),
		"fps", fps,
		"max_frames", frames,
		"serve", serve,
		"orbit_pointer", orbitPointer,
		"output_dir", outputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = r.Run(ctx, frames)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "frame", r.Frame())
		return nil
	}
	return err
}
