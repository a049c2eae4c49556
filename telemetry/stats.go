package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// WindowStats holds aggregated statistics of one cloth over a frame window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Cloth            string  `csv:"cloth"`

	// Energy over the window
	KineticMean float64 `csv:"kinetic_mean"`
	KineticMax  float64 `csv:"kinetic_max"`
	KineticEnd  float64 `csv:"kinetic_end"`

	// Relative edge stretch
	StretchMean float64 `csv:"stretch_mean"`
	StretchP90  float64 `csv:"stretch_p90"`
	StretchMax  float64 `csv:"stretch_max"`

	// Collision load
	PairsMean     float64 `csv:"pairs_mean"`
	ContactsTotal int     `csv:"contacts_total"`

	// Lowest point at window end
	MinY float64 `csv:"min_y"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize returns mean, p90 and max of values. Returns zeros if empty.
func Summarize(values []float64) (mean, p90, maxV float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return floats.Sum(sorted) / float64(len(sorted)), Percentile(sorted, 0.9), floats.Max(sorted)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("cloth", s.Cloth),
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("kinetic_mean", s.KineticMean),
		slog.Float64("kinetic_max", s.KineticMax),
		slog.Float64("kinetic_end", s.KineticEnd),
		slog.Float64("stretch_mean", s.StretchMean),
		slog.Float64("stretch_p90", s.StretchP90),
		slog.Float64("stretch_max", s.StretchMax),
		slog.Float64("pairs_mean", s.PairsMean),
		slog.Int("contacts_total", s.ContactsTotal),
		slog.Float64("min_y", s.MinY),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
