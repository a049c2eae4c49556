package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/drape/config"
	"github.com/pthm-cable/drape/constraints"
	"github.com/pthm-cable/drape/telemetry"
)

const twoClothYAML = `
simulation:
  substeps: 5
wind:
  enabled: false
telemetry:
  stats_window: 5
snapshot:
  width: 32
  height: 24
  supersample: 1
  format: png
cloths:
  - name: flag
    cols: 6
    rows: 6
    width: 0.5
    height: 0.5
    origin: [0, 1, 0]
    pin: top_row
    bending: performant
    self_collision: true
  - name: sheet
    cols: 5
    rows: 4
    origin: [2, 1, 0]
    pin: corners
    bending: both
`

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func newScene(t *testing.T, body string, opts Options) *Scene {
	t.Helper()
	s, err := New(loadConfig(t, body), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func pinnedCount(s *Scene, name string) int {
	c, _ := s.Cloth(name)
	p := c.Particles()
	n := 0
	for i := 0; i < p.Len(); i++ {
		if p.Pinned(i) {
			n++
		}
	}
	return n
}

func TestNewBuildsOneEntityPerCloth(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Name != "flag" || entries[1].Name != "sheet" {
		t.Errorf("names = %q, %q", entries[0].Name, entries[1].Name)
	}
	if entries[0].Body.Cols != 6 || entries[1].Body.Rows != 4 {
		t.Errorf("grid sizes not carried over")
	}

	if got := pinnedCount(s, "flag"); got != 6 {
		t.Errorf("flag pinned = %d, want 6", got)
	}
	if got := pinnedCount(s, "sheet"); got != 2 {
		t.Errorf("sheet pinned = %d, want 2", got)
	}

	tests := []struct {
		name  string
		kinds []constraints.Kind
	}{
		{"flag", []constraints.Kind{constraints.KindDistance, constraints.KindPerformantBending}},
		{"sheet", []constraints.Kind{constraints.KindDistance, constraints.KindPerformantBending, constraints.KindIsometricBending}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := s.Cloth(tt.name)
			if !ok {
				t.Fatal("cloth missing")
			}
			cons := c.Constraints()
			if len(cons) != len(tt.kinds) {
				t.Fatalf("constraints = %d, want %d", len(cons), len(tt.kinds))
			}
			for i, k := range tt.kinds {
				if cons[i].Kind() != k {
					t.Errorf("constraint %d = %s, want %s", i, cons[i].Kind(), k)
				}
			}
		})
	}
}

func TestStepHangsPinnedCloth(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	c, _ := s.Cloth("flag")
	initial := append([]float32(nil), c.Positions()...)

	for range 30 {
		s.Step()
	}

	if s.Frame() != 30 {
		t.Errorf("frame = %d, want 30", s.Frame())
	}
	p := c.Particles()
	for i := 0; i < p.Len(); i++ {
		if !p.Pinned(i) {
			continue
		}
		for k := 0; k < 3; k++ {
			if p.Pos[3*i+k] != initial[3*i+k] {
				t.Fatalf("pinned particle %d moved", i)
			}
		}
	}

	st, ok := s.LastStats("flag")
	if !ok {
		t.Fatal("no stats recorded")
	}
	if st.MinY >= 0.95 {
		t.Errorf("MinY = %v, cloth did not fall", st.MinY)
	}
	if st.KineticEnergy <= 0 {
		t.Errorf("KineticEnergy = %v, want > 0", st.KineticEnergy)
	}
}

func TestPausedClothDoesNotMove(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	if err := s.SetPaused("sheet", true); err != nil {
		t.Fatal(err)
	}
	c, _ := s.Cloth("sheet")
	before := append([]float32(nil), c.Positions()...)

	for range 5 {
		s.Step()
	}
	for i, v := range c.Positions() {
		if v != before[i] {
			t.Fatalf("paused cloth moved at %d", i)
		}
	}
	if _, ok := s.LastStats("sheet"); ok {
		t.Error("paused cloth recorded stats")
	}

	if err := s.SetPaused("sheet", false); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if _, ok := s.LastStats("sheet"); !ok {
		t.Error("resumed cloth recorded no stats")
	}

	if err := s.SetPaused("missing", true); err == nil {
		t.Error("expected error for unknown cloth")
	}
}

func TestStepDeterministic(t *testing.T) {
	windy := strings.Replace(twoClothYAML, "enabled: false", "enabled: true\n  strength: 3", 1)
	a := newScene(t, windy, Options{Seed: 7})
	b := newScene(t, windy, Options{Seed: 7})
	for range 10 {
		a.Step()
		b.Step()
	}
	ca, _ := a.Cloth("flag")
	cb, _ := b.Cloth("flag")
	for i, v := range ca.Positions() {
		if v != cb.Positions()[i] {
			t.Fatalf("runs diverged at %d: %v vs %v", i, v, cb.Positions()[i])
		}
	}
}

func TestWindScaleZeroIgnoresWind(t *testing.T) {
	windy := strings.Replace(twoClothYAML, "enabled: false", "enabled: true\n  strength: 3", 1)
	calm := newScene(t, twoClothYAML, Options{})
	blown := newScene(t, windy, Options{Seed: 3})
	shielded := newScene(t, windy, Options{Seed: 3})
	if err := shielded.SetWindScale("flag", 0); err != nil {
		t.Fatal(err)
	}

	for range 10 {
		calm.Step()
		blown.Step()
		shielded.Step()
	}

	cc, _ := calm.Cloth("flag")
	cb, _ := blown.Cloth("flag")
	cs, _ := shielded.Cloth("flag")

	same := true
	for i, v := range cc.Positions() {
		if cs.Positions()[i] != v {
			t.Fatalf("shielded cloth differs from calm at %d", i)
		}
		if cb.Positions()[i] != v {
			same = false
		}
	}
	if same {
		t.Error("wind had no effect")
	}
}

func TestStatsWindowFlush(t *testing.T) {
	dir := t.TempDir()
	s := newScene(t, twoClothYAML, Options{OutputDir: dir})

	var windows [][]telemetry.WindowStats
	s.SetStatsCallback(func(ws []telemetry.WindowStats) {
		windows = append(windows, ws)
	})
	for range 10 {
		s.Step()
	}

	if len(windows) != 2 {
		t.Fatalf("flushed %d windows, want 2", len(windows))
	}
	for _, w := range windows {
		if len(w) != 2 {
			t.Errorf("window has %d cloths, want 2", len(w))
		}
	}
	if windows[1][0].WindowEndFrame != 10 {
		t.Errorf("WindowEndFrame = %d, want 10", windows[1][0].WindowEndFrame)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"stats.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("stats.csv has %d lines, want header + 4 rows", len(lines))
	}
	if !strings.Contains(lines[0], "kinetic_mean") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestDumpAndLoadState(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	for range 5 {
		s.Step()
	}
	c, _ := s.Cloth("flag")
	saved := append([]float32(nil), c.Positions()...)

	path, err := s.DumpState(t.TempDir())
	if err != nil {
		t.Fatalf("DumpState: %v", err)
	}
	for range 5 {
		s.Step()
	}
	if err := s.LoadState(path); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if s.Frame() != 5 {
		t.Errorf("frame = %d, want 5", s.Frame())
	}
	for i, v := range c.Positions() {
		if v != saved[i] {
			t.Fatalf("position %d = %v, want %v", i, v, saved[i])
		}
	}
}

func TestLoadStateUnknownCloth(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	path, err := s.DumpState(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	other := newScene(t, strings.ReplaceAll(twoClothYAML, "name: flag", "name: banner"), Options{})
	if err := other.LoadState(path); err == nil {
		t.Error("expected error loading state with unknown cloth")
	}
}

func TestLoadStateReseedsWind(t *testing.T) {
	body := strings.Replace(twoClothYAML, "enabled: false", "enabled: true", 1)
	s := newScene(t, body, Options{Seed: 7})
	for range 3 {
		s.Step()
	}
	path, err := s.DumpState(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	resumed := newScene(t, body, Options{Seed: 9})
	if err := resumed.LoadState(path); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if resumed.Seed() != 7 {
		t.Errorf("seed = %d, want 7", resumed.Seed())
	}
	for i := range 20 {
		ts := float64(i) * 0.13
		if got, want := resumed.Wind().At(ts), s.Wind().At(ts); got != want {
			t.Fatalf("wind at t=%v = %v, want %v", ts, got, want)
		}
	}
}

func TestLoadStateMismatchLeavesSceneUntouched(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	path, err := s.DumpState(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// flag matches, sheet has a different size.
	other := newScene(t, strings.Replace(twoClothYAML, "rows: 4", "rows: 3", 1), Options{})
	for range 4 {
		other.Step()
	}
	flag, _ := other.Cloth("flag")
	before := append([]float32(nil), flag.Positions()...)

	if err := other.LoadState(path); err == nil {
		t.Fatal("expected error loading state with mismatched cloth size")
	}
	if other.Frame() != 4 {
		t.Errorf("frame = %d, want 4", other.Frame())
	}
	for i, v := range flag.Positions() {
		if v != before[i] {
			t.Fatalf("flag position %d changed to %v, want %v", i, v, before[i])
		}
	}
}

func TestSnapshotEveryN(t *testing.T) {
	body := strings.Replace(twoClothYAML, "format: png", "format: png\n  every_n_frames: 2", 1)
	dir := t.TempDir()
	s := newScene(t, body, Options{SnapshotDir: dir, StepsPerUpdate: 5})

	s.UpdateHeadless()
	if s.Frame() != 5 {
		t.Fatalf("frame = %d, want 5", s.Frame())
	}

	files, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("snapshots = %v, want frames 2 and 4", files)
	}
}

func TestResetRestoresRestPose(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	c, _ := s.Cloth("flag")
	rest := append([]float32(nil), c.Positions()...)

	for range 5 {
		s.Step()
	}
	s.Reset()

	for i, v := range c.Positions() {
		if v != rest[i] {
			t.Fatalf("position %d = %v after reset, want %v", i, v, rest[i])
		}
	}
	if _, ok := s.LastStats("flag"); ok {
		t.Error("stats survived reset")
	}
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{StepsPerUpdate: 2})
	if err := s.Run(context.Background(), 5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Frames advance in whole updates of 2.
	if s.Frame() != 6 {
		t.Errorf("frame = %d, want 6", s.Frame())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newScene(t, twoClothYAML, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	s.SetStatsCallback(func([]telemetry.WindowStats) {
		if s.Frame() >= 10 {
			cancel()
		}
	})

	err := s.Run(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if s.Frame() != 10 {
		t.Errorf("frame = %d, want 10", s.Frame())
	}

	// State can still be dumped after an interrupted run.
	if _, err := s.DumpState(t.TempDir()); err != nil {
		t.Errorf("DumpState: %v", err)
	}
}
