package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drape/config"
	"github.com/pthm-cable/drape/scene"
	"github.com/pthm-cable/drape/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in frames (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for rendered frames")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	stateDir := flag.String("state-dir", "", "Directory for state dumps (F5, or on exit or Ctrl-C when headless)")
	loadState := flag.String("load-state", "", "Resume from a state file")
	seed := flag.Int64("seed", 0, "Wind seed (0 = use config)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Frames per update call (higher = faster headless runs)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := scene.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindow:    *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		s := mustScene(cfg, opts, *loadState)
		defer closeScene(s)

		slog.Info("starting headless simulation",
			"seed", s.Seed(),
			"max_frames", *maxFrames,
			"steps_per_update", *stepsPerUpdate,
		)

		// Ctrl-C stops the run but still dumps state below
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := s.Run(ctx, int32(*maxFrames))
		stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("simulation failed", "error", err)
		}

		if *stateDir != "" {
			if _, err := s.DumpState(*stateDir); err != nil {
				slog.Error("failed to dump state", "error", err)
			}
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Drape")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s := mustScene(cfg, opts, *loadState)
	defer closeScene(s)

	v := viewer.New(s, *stateDir)
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxFrames > 0 && int(s.Frame()) >= *maxFrames {
			break
		}
	}
}

func mustScene(cfg *config.Config, opts scene.Options, statePath string) *scene.Scene {
	s, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}
	if statePath != "" {
		if err := s.LoadState(statePath); err != nil {
			slog.Error("failed to load state", "error", err)
			os.Exit(1)
		}
	}
	return s
}

func closeScene(s *scene.Scene) {
	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
