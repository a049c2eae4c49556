// Package scene holds the cloths of a run in an ECS world and advances them
// frame by frame under gravity and wind, with telemetry, snapshots and state
// dumps. It has no window dependency; see package viewer for the
// interactive front end.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drape/camera"
	"github.com/pthm-cable/drape/cloth"
	"github.com/pthm-cable/drape/components"
	"github.com/pthm-cable/drape/config"
	"github.com/pthm-cable/drape/mesh"
	"github.com/pthm-cable/drape/snapshot"
	"github.com/pthm-cable/drape/telemetry"
)

// Options configures a scene beyond what the config file holds.
type Options struct {
	Seed           int64  // Wind seed, 0 = config wind.seed
	LogStats       bool   // Log window stats via slog
	StatsWindow    int    // Frames per stats window, 0 = config
	SnapshotDir    string // Directory for rendered frames, empty disables
	OutputDir      string // Directory for CSV logs, empty disables
	StepsPerUpdate int    // Frames per UpdateHeadless call
}

// Entry is a view of one cloth entity. Pointers are valid until the next
// structural change of the world.
type Entry struct {
	Entity     ecs.Entity
	Name       string
	Body       *components.ClothBody
	Appearance *components.Appearance
	Wind       *components.WindResponse
	Paused     bool
}

// Scene owns the world and the per-run services.
type Scene struct {
	cfg   *config.Config
	world *ecs.World

	clothMapper *ecs.Map4[
		components.ClothBody,
		components.Appearance,
		components.Label,
		components.WindResponse,
	]
	clothFilter *ecs.Filter4[
		components.ClothBody,
		components.Appearance,
		components.Label,
		components.WindResponse,
	]
	pausedMap *ecs.Map[components.Paused]

	wind    *Wind
	gravity [3]float32
	seed    int64

	frame   int32
	simTime float64

	stepsPerUpdate int
	active         []activeCloth
	last           map[string]cloth.Stats

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func([]telemetry.WindowStats)

	// Snapshots
	snapshotDir string
	camera      *camera.Camera
	renderer    *snapshot.Renderer
}

type activeCloth struct {
	name  string
	cloth *cloth.Cloth
	accel [3]float32
}

// New builds one cloth entity per configured cloth.
func New(cfg *config.Config, opts Options) (*Scene, error) {
	world := ecs.NewWorld()

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Wind.Seed
	}
	statsWindow := opts.StatsWindow
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	s := &Scene{
		cfg:   cfg,
		world: world,
		clothMapper: ecs.NewMap4[
			components.ClothBody,
			components.Appearance,
			components.Label,
			components.WindResponse,
		](world),
		clothFilter: ecs.NewFilter4[
			components.ClothBody,
			components.Appearance,
			components.Label,
			components.WindResponse,
		](world),
		pausedMap:      ecs.NewMap[components.Paused](world),
		wind:           NewWind(cfg.Wind, seed),
		gravity:        cfg.Derived.Gravity32,
		seed:           seed,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		last:           make(map[string]cloth.Stats, len(cfg.Cloths)),
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		camera:         CameraFromConfig(cfg.Camera, float32(cfg.Snapshot.Width), float32(cfg.Snapshot.Height)),
	}

	for i := range cfg.Cloths {
		cc := &cfg.Cloths[i]
		body := components.ClothBody{Cloth: BuildCloth(cc, cfg), Cols: cc.Cols, Rows: cc.Rows}
		app := components.AppearanceFromConfig(cc)
		label := components.Label{Name: cc.Name}
		wind := components.WindResponse{Scale: 1}
		s.clothMapper.NewEntity(&body, &app, &label, &wind)

		slog.Debug("cloth added",
			"name", cc.Name,
			"grid", fmt.Sprintf("%dx%d", cc.Cols, cc.Rows),
			"pin", cc.Pin,
			"bending", cc.Bending,
			"self_collision", cc.SelfCollision,
		)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	slog.Info("scene created",
		"cloths", len(cfg.Cloths),
		"seed", seed,
		"dt", cfg.Simulation.DT,
		"substeps", cfg.Simulation.Substeps,
	)
	return s, nil
}

// BuildCloth creates the cloth described by cc with the constraints,
// pins and collision it asks for.
func BuildCloth(cc *config.ClothConfig, cfg *config.Config) *cloth.Cloth {
	origin := [3]float32{float32(cc.Origin[0]), float32(cc.Origin[1]), float32(cc.Origin[2])}
	m := mesh.NewGrid(cc.Cols, cc.Rows, float32(cc.Width), float32(cc.Height), origin)

	c := cloth.New(m, cloth.Options{
		Thickness:     float32(cc.Thickness),
		Friction:      float32(cc.Friction),
		Substeps:      cfg.Simulation.Substeps,
		MaxSpeedScale: float32(cfg.Solver.MaxSpeedScale),
	})

	switch cc.Pin {
	case config.PinTopRow:
		c.PinTopRow(cc.Cols)
	case config.PinCorners:
		c.PinCorners(cc.Cols)
	}

	c.RegisterDistanceConstraint(float32(cc.StretchCompliance))
	bend := float32(cc.BendCompliance)
	switch cc.Bending {
	case config.BendingPerformant:
		c.RegisterPerformantBendingConstraint(bend)
	case config.BendingIsometric:
		c.RegisterIsometricBendingConstraint(bend)
	case config.BendingBoth:
		c.RegisterPerformantBendingConstraint(bend)
		c.RegisterIsometricBendingConstraint(bend)
	}

	if cc.SelfCollision {
		c.RegisterSelfCollision(c.Options().Thickness)
	}
	return c
}

// CameraFromConfig creates the orbit camera described by cc for a w x h
// viewport.
func CameraFromConfig(cc config.CameraConfig, w, h float32) *camera.Camera {
	target := mgl32.Vec3{float32(cc.Target[0]), float32(cc.Target[1]), float32(cc.Target[2])}
	return camera.New(w, h, target, float32(cc.Distance), float32(cc.Yaw), float32(cc.Pitch), float32(cc.FOV))
}

// Entries returns the cloth entities in creation order.
func (s *Scene) Entries() []Entry {
	var out []Entry
	query := s.clothFilter.Query()
	for query.Next() {
		body, app, label, wind := query.Get()
		e := query.Entity()
		out = append(out, Entry{
			Entity:     e,
			Name:       label.Name,
			Body:       body,
			Appearance: app,
			Wind:       wind,
			Paused:     s.pausedMap.Has(e),
		})
	}
	return out
}

// Cloth returns the cloth with the given name.
func (s *Scene) Cloth(name string) (*cloth.Cloth, bool) {
	for _, e := range s.Entries() {
		if e.Name == name {
			return e.Body.Cloth, true
		}
	}
	return nil, false
}

// SetPaused stops or resumes the named cloth.
func (s *Scene) SetPaused(name string, paused bool) error {
	for _, e := range s.Entries() {
		if e.Name != name {
			continue
		}
		switch {
		case paused && !e.Paused:
			s.pausedMap.Add(e.Entity, &components.Paused{})
		case !paused && e.Paused:
			s.pausedMap.Remove(e.Entity)
		}
		return nil
	}
	return fmt.Errorf("no cloth named %q", name)
}

// SetWindScale sets how strongly the named cloth responds to wind.
func (s *Scene) SetWindScale(name string, scale float32) error {
	for _, e := range s.Entries() {
		if e.Name == name {
			e.Wind.Scale = scale
			return nil
		}
	}
	return fmt.Errorf("no cloth named %q", name)
}

// Reset returns every cloth to its rest pose.
func (s *Scene) Reset() {
	for _, e := range s.Entries() {
		e.Body.Cloth.Reset()
	}
	clear(s.last)
	slog.Info("scene reset", "frame", s.frame)
}

// Config returns the scene configuration.
func (s *Scene) Config() *config.Config { return s.cfg }

// Wind returns the wind field.
func (s *Scene) Wind() *Wind { return s.wind }

// Gravity returns the gravity acceleration.
func (s *Scene) Gravity() [3]float32 { return s.gravity }

// SetGravity replaces the gravity acceleration.
func (s *Scene) SetGravity(g [3]float32) { s.gravity = g }

// Frame returns the number of frames stepped.
func (s *Scene) Frame() int32 { return s.frame }

// SimTime returns the simulated time in seconds.
func (s *Scene) SimTime() float64 { return s.simTime }

// Seed returns the wind seed.
func (s *Scene) Seed() int64 { return s.seed }

// Camera returns the camera used for snapshots.
func (s *Scene) Camera() *camera.Camera { return s.camera }

// LastStats returns the stats of the named cloth from its last stepped frame.
func (s *Scene) LastStats(name string) (cloth.Stats, bool) {
	st, ok := s.last[name]
	return st, ok
}

// PerfCollector returns the frame timing collector.
func (s *Scene) PerfCollector() *telemetry.PerfCollector { return s.perfCollector }

// SetStatsCallback registers fn to receive every flushed stats window.
func (s *Scene) SetStatsCallback(fn func([]telemetry.WindowStats)) {
	s.statsCallback = fn
}

// StepsPerUpdate returns the number of frames per UpdateHeadless call.
func (s *Scene) StepsPerUpdate() int { return s.stepsPerUpdate }

// SetStepsPerUpdate changes the number of frames per update, at least 1.
func (s *Scene) SetStepsPerUpdate(n int) { s.stepsPerUpdate = max(n, 1) }

// Close flushes and closes telemetry output.
func (s *Scene) Close() error {
	return s.outputManager.Close()
}
