package telemetry

import "github.com/pthm-cable/drape/cloth"

// Collector accumulates per-frame cloth stats and produces one WindowStats
// per cloth at the end of each window.
type Collector struct {
	windowFrames int32
	dt           float32

	windowStartFrame int32
	order            []string
	samples          map[string]*clothSamples
}

type clothSamples struct {
	kinetic  []float64
	stretch  []float64
	pairs    []float64
	contacts int
	last     cloth.Stats
}

// NewCollector creates a collector with windows of windowFrames frames of
// length dt.
func NewCollector(windowFrames int, dt float32) *Collector {
	return &Collector{
		windowFrames: int32(max(windowFrames, 1)),
		dt:           dt,
		samples:      make(map[string]*clothSamples),
	}
}

// Record adds one frame of stats for the named cloth.
func (c *Collector) Record(name string, s cloth.Stats) {
	cs, ok := c.samples[name]
	if !ok {
		cs = &clothSamples{}
		c.samples[name] = cs
		c.order = append(c.order, name)
	}
	cs.kinetic = append(cs.kinetic, s.KineticEnergy)
	cs.stretch = append(cs.stretch, s.MaxStretch)
	cs.pairs = append(cs.pairs, float64(s.Pairs))
	cs.contacts += s.Contacts
	cs.last = s
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int32) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces stats for every cloth seen in the window, in first-seen
// order, and resets for the next window.
func (c *Collector) Flush(frame int32) []WindowStats {
	out := make([]WindowStats, 0, len(c.order))
	for _, name := range c.order {
		cs := c.samples[name]
		if len(cs.kinetic) == 0 {
			continue
		}
		kMean, _, kMax := Summarize(cs.kinetic)
		sMean, sP90, sMax := Summarize(cs.stretch)
		pMean, _, _ := Summarize(cs.pairs)

		out = append(out, WindowStats{
			WindowStartFrame: c.windowStartFrame,
			WindowEndFrame:   frame,
			SimTimeSec:       float64(frame) * float64(c.dt),
			Cloth:            name,
			KineticMean:      kMean,
			KineticMax:       kMax,
			KineticEnd:       cs.last.KineticEnergy,
			StretchMean:      sMean,
			StretchP90:       sP90,
			StretchMax:       sMax,
			PairsMean:        pMean,
			ContactsTotal:    cs.contacts,
			MinY:             float64(cs.last.MinY),
		})

		cs.kinetic = cs.kinetic[:0]
		cs.stretch = cs.stretch[:0]
		cs.pairs = cs.pairs[:0]
		cs.contacts = 0
	}
	c.windowStartFrame = frame
	return out
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int32 {
	return c.windowFrames
}
