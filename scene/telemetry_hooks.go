package scene

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/pthm-cable/drape/cloth"
	"github.com/pthm-cable/drape/snapshot"
	"github.com/pthm-cable/drape/telemetry"
)

// flushTelemetry emits the stats window once it is full.
func (s *Scene) flushTelemetry() {
	if !s.collector.ShouldFlush(s.frame) {
		return
	}

	stats := s.collector.Flush(s.frame)
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		for _, st := range stats {
			st.LogStats()
		}
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, s.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// SaveSnapshot renders the scene through the snapshot camera and writes it
// to the snapshot directory.
func (s *Scene) SaveSnapshot() (string, error) {
	if s.snapshotDir == "" {
		return "", fmt.Errorf("no snapshot directory")
	}
	img := s.RenderImage()
	path, err := snapshot.Save(img, s.snapshotDir, s.frame, s.cfg.Snapshot.Format)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "frame", s.frame)
	return path, nil
}

// RenderImage draws every cloth with the software renderer.
func (s *Scene) RenderImage() *image.RGBA {
	if s.renderer == nil {
		sc := s.cfg.Snapshot
		s.renderer = snapshot.NewRenderer(sc.Width, sc.Height, sc.Supersample)
	}
	entries := s.Entries()
	meshes := make([]snapshot.Mesh, 0, len(entries))
	for _, e := range entries {
		c := e.Body.Cloth
		meshes = append(meshes, snapshot.Mesh{
			Positions: c.Positions(),
			Normals:   c.Normals(),
			Indices:   c.Indices(),
			Color:     e.Appearance.Color,
		})
	}
	return s.renderer.Render(s.camera, meshes)
}

// DumpState writes the particle state of every cloth to dir.
func (s *Scene) DumpState(dir string) (string, error) {
	state := &telemetry.State{
		Version: telemetry.StateVersion,
		Seed:    s.seed,
		Frame:   s.frame,
	}
	for _, e := range s.Entries() {
		state.Cloths = append(state.Cloths, telemetry.CaptureCloth(e.Name, e.Body.Cloth))
	}
	path, err := telemetry.SaveState(state, dir)
	if err != nil {
		return "", err
	}
	slog.Info("state saved", "path", path, "frame", s.frame)
	return path, nil
}

// LoadState restores a state written by DumpState. Every cloth in the file
// must exist in the scene with the same particle count; nothing is changed
// otherwise. The wind is reseeded from the file.
func (s *Scene) LoadState(path string) error {
	state, err := telemetry.LoadState(path)
	if err != nil {
		return err
	}

	targets := make([]*cloth.Cloth, len(state.Cloths))
	for i, cs := range state.Cloths {
		c, ok := s.Cloth(cs.Name)
		if !ok {
			return fmt.Errorf("state cloth %q not in scene", cs.Name)
		}
		if err := cs.Check(c); err != nil {
			return err
		}
		targets[i] = c
	}
	for i, cs := range state.Cloths {
		if err := cs.Restore(targets[i]); err != nil {
			return err
		}
	}

	if state.Seed != s.seed {
		w := NewWind(s.cfg.Wind, state.Seed)
		w.Enabled = s.wind.Enabled
		w.Strength = s.wind.Strength
		s.wind = w
		s.seed = state.Seed
	}

	s.frame = state.Frame
	s.simTime = float64(state.Frame) * float64(s.cfg.Simulation.DT)
	s.collector = telemetry.NewCollector(int(s.collector.WindowFrames()), s.cfg.Derived.DT32)
	s.collector.Flush(s.frame)
	slog.Info("state loaded", "path", path, "frame", s.frame, "seed", s.seed)
	return nil
}
