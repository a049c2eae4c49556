// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Wind       WindConfig       `yaml:"wind"`
	Solver     SolverConfig     `yaml:"solver"`
	Cloths     []ClothConfig    `yaml:"cloths"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Camera     CameraConfig     `yaml:"camera"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds frame timing and gravity.
type SimulationConfig struct {
	DT       float64    `yaml:"dt"`       // Frame length in seconds
	Substeps int        `yaml:"substeps"` // Solver substeps per frame
	Gravity  [3]float64 `yaml:"gravity"`
}

// WindConfig holds the noise wind field parameters.
type WindConfig struct {
	Enabled   bool       `yaml:"enabled"`
	Strength  float64    `yaml:"strength"`  // Peak acceleration in m/s^2
	Frequency float64    `yaml:"frequency"` // Noise samples per second
	Direction [3]float64 `yaml:"direction"` // Mean blowing direction
	Seed      int64      `yaml:"seed"`
}

// SolverConfig holds parameters shared by every cloth.
type SolverConfig struct {
	MaxSpeedScale float64 `yaml:"max_speed_scale"` // Speed cap = scale * thickness / dt
}

// Pin modes for ClothConfig.Pin.
const (
	PinTopRow  = "top_row"
	PinCorners = "corners"
	PinNone    = "none"
)

// Bending modes for ClothConfig.Bending.
const (
	BendingPerformant = "performant"
	BendingIsometric  = "isometric"
	BendingBoth       = "both"
	BendingNone       = "none"
)

// ClothConfig describes one grid cloth in the scene.
type ClothConfig struct {
	Name              string     `yaml:"name"`
	Cols              int        `yaml:"cols"`
	Rows              int        `yaml:"rows"`
	Width             float64    `yaml:"width"`
	Height            float64    `yaml:"height"`
	Origin            [3]float64 `yaml:"origin"`
	Pin               string     `yaml:"pin"`
	Thickness         float64    `yaml:"thickness"`
	Friction          float64    `yaml:"friction"`
	StretchCompliance float64    `yaml:"stretch_compliance"`
	BendCompliance    float64    `yaml:"bend_compliance"`
	Bending           string     `yaml:"bending"`
	SelfCollision     bool       `yaml:"self_collision"`
	Color             [3]uint8   `yaml:"color"`
}

// TelemetryConfig holds stats and perf collection parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Frames per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks kept by the perf collector
}

// SnapshotConfig holds headless image capture parameters.
type SnapshotConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"` // Render at this multiple, then downscale
	Format      string `yaml:"format"`      // webp, tga or png
	EveryN      int    `yaml:"every_n_frames"`
}

// CameraConfig holds the initial orbit camera.
type CameraConfig struct {
	Target   [3]float64 `yaml:"target"`
	Distance float64    `yaml:"distance"`
	Yaw      float64    `yaml:"yaw"`   // Degrees
	Pitch    float64    `yaml:"pitch"` // Degrees
	FOV      float64    `yaml:"fov"`   // Vertical, degrees
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT32       float32
	SubDT32    float32
	Gravity32  [3]float32
	ClothIndex map[string]int
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file. A cloths list replaces
		// the default list wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("simulation.dt must be positive, got %v", c.Simulation.DT)
	}
	if c.Simulation.Substeps < 1 {
		return fmt.Errorf("simulation.substeps must be at least 1, got %d", c.Simulation.Substeps)
	}
	seen := make(map[string]bool, len(c.Cloths))
	for i, cl := range c.Cloths {
		if cl.Name == "" {
			return fmt.Errorf("cloths[%d]: missing name", i)
		}
		if seen[cl.Name] {
			return fmt.Errorf("cloths[%d]: duplicate name %q", i, cl.Name)
		}
		seen[cl.Name] = true
		if cl.Cols < 2 || cl.Rows < 2 {
			return fmt.Errorf("cloth %q: grid needs at least 2x2 vertices, got %dx%d", cl.Name, cl.Cols, cl.Rows)
		}
		switch cl.Pin {
		case "", PinTopRow, PinCorners, PinNone:
		default:
			return fmt.Errorf("cloth %q: unknown pin mode %q", cl.Name, cl.Pin)
		}
		switch cl.Bending {
		case "", BendingPerformant, BendingIsometric, BendingBoth, BendingNone:
		default:
			return fmt.Errorf("cloth %q: unknown bending mode %q", cl.Name, cl.Bending)
		}
	}
	switch c.Snapshot.Format {
	case "webp", "tga", "png":
	default:
		return fmt.Errorf("snapshot.format must be webp, tga or png, got %q", c.Snapshot.Format)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.SubDT32 = float32(c.Simulation.DT / float64(c.Simulation.Substeps))
	for i, g := range c.Simulation.Gravity {
		c.Derived.Gravity32[i] = float32(g)
	}

	// Fill per-cloth defaults
	for i := range c.Cloths {
		cl := &c.Cloths[i]
		if cl.Pin == "" {
			cl.Pin = PinTopRow
		}
		if cl.Bending == "" {
			cl.Bending = BendingPerformant
		}
		if cl.Width == 0 {
			cl.Width = 1
		}
		if cl.Height == 0 {
			cl.Height = 1
		}
		if cl.Thickness == 0 {
			cl.Thickness = 0.01
		}
	}

	c.Derived.ClothIndex = make(map[string]int, len(c.Cloths))
	for i, cl := range c.Cloths {
		c.Derived.ClothIndex[cl.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
