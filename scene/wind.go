package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/drape/config"
)

// turbulence is the cross-wind noise amplitude relative to Strength.
const turbulence = 0.25

// Wind is a time-varying acceleration field sampled from simplex noise.
// A gust term modulates the mean direction and a smaller per-axis term
// adds turbulence. A nil Wind is calm.
type Wind struct {
	Enabled   bool
	Strength  float32 // Peak gust acceleration in m/s^2
	Frequency float64 // Noise samples per second

	dir   mgl32.Vec3
	noise opensimplex.Noise
}

// NewWind creates a wind field from config, seeded with seed.
func NewWind(cfg config.WindConfig, seed int64) *Wind {
	dir := mgl32.Vec3{float32(cfg.Direction[0]), float32(cfg.Direction[1]), float32(cfg.Direction[2])}
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	return &Wind{
		Enabled:   cfg.Enabled,
		Strength:  float32(cfg.Strength),
		Frequency: cfg.Frequency,
		dir:       dir.Normalize(),
		noise:     opensimplex.New(seed),
	}
}

// Direction returns the normalized mean direction.
func (w *Wind) Direction() mgl32.Vec3 {
	if w == nil {
		return mgl32.Vec3{}
	}
	return w.dir
}

// At returns the wind acceleration at time t seconds.
func (w *Wind) At(t float64) [3]float32 {
	var a [3]float32
	if w == nil || !w.Enabled || w.Strength == 0 {
		return a
	}
	x := t * w.Frequency
	gust := float32(0.5 + 0.5*w.noise.Eval2(x, 0))
	for i := range a {
		turb := float32(w.noise.Eval2(x, 7.3*float64(i+1)))
		a[i] = w.Strength * (w.dir[i]*gust + turbulence*turb)
	}
	return a
}
