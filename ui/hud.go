package ui

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drape/cloth"
	"github.com/pthm-cable/drape/components"
	"github.com/pthm-cable/drape/telemetry"
)

// StatsPanel renders the stats of one cloth from its field descriptors.
type StatsPanel struct {
	renderer *Renderer
	fields   []components.FieldDescriptor
	x, y     int32
	width    int32
}

// NewStatsPanel creates a stats panel at x, y.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		fields:   components.StatsFieldDescriptors(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Height returns the panel height in pixels.
func (p *StatsPanel) Height() int32 {
	t := p.renderer.Theme
	return 2*t.Padding + t.LineHeight + 4 + int32(len(p.fields))*t.LineHeight
}

// Draw renders the panel for the named cloth.
func (p *StatsPanel) Draw(title string, s cloth.Stats) {
	r := p.renderer
	r.DrawPanel(p.x, p.y, p.width, p.Height())

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, title)
	inner := p.width - 2*r.Theme.Padding

	for _, f := range p.fields {
		text := components.FormatField(s, f)
		if f.Max > 0 {
			frac := float32(components.FieldValue(s, f.ID)) / f.Max
			y = r.DrawBar(x, y, f.Label, text, frac, inner)
		} else {
			y = r.DrawLabelValue(x, y, f.Label, text)
		}
	}
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders phases sorted by average duration, slowest first.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Frame: %s  (%.0f fps)", stats.AvgTickDuration.Round(time.Microsecond), stats.FPS), x, y, 14, rl.Yellow)
	y += 16

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(stats.PhaseAvg[b], stats.PhaseAvg[a])
	})

	for _, name := range names {
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
