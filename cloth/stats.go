package cloth

import (
	"log/slog"
	"math"
)

// Stats is a snapshot of cloth diagnostics.
type Stats struct {
	KineticEnergy float64
	MaxStretch    float64 // relative edge length error
	MeanStretch   float64
	Pairs         int // adjacency pairs from the last PreIntegration
	Contacts      int // self-collision corrections in the last substep
	MinY          float32
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_stretch", s.MaxStretch),
		slog.Float64("mean_stretch", s.MeanStretch),
		slog.Int("pairs", s.Pairs),
		slog.Int("contacts", s.Contacts),
		slog.Float64("min_y", float64(s.MinY)),
	)
}

// Stats computes diagnostics for the current state. Stretch error is
// measured against the first registered distance constraint.
func (c *Cloth) Stats() Stats {
	s := Stats{
		KineticEnergy: c.p.KineticEnergy(),
		Pairs:         c.hash.NumPairs(),
		MinY:          math.MaxFloat32,
	}
	if c.stretch != nil {
		s.MaxStretch, s.MeanStretch = c.stretch.StretchError(c.p)
	}
	if c.self != nil {
		s.Contacts = c.self.Contacts()
	}
	for i := 1; i < len(c.p.Pos); i += 3 {
		s.MinY = min(s.MinY, c.p.Pos[i])
	}
	if c.p.Len() == 0 {
		s.MinY = 0
	}
	return s
}
