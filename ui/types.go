// Package ui provides the panel widgets of the viewer. Panels are driven by
// field descriptors so the HUD follows the stats types it displays.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	ValueWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFillLow:     rl.Color{R: 100, G: 200, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 200, G: 100, B: 100, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     100,
		ValueWidth:     90,
		BarHeight:      10,
		FontSize:       14,
		HeaderFontSize: 16,
	}
}

// BarColor picks the fill for a bar at frac of full scale. Bars measure
// error, so a fuller bar is worse.
func (t Theme) BarColor(frac float32) rl.Color {
	switch {
	case frac > 0.8:
		return t.BarFillHigh
	case frac > 0.5:
		return t.BarFillMedium
	default:
		return t.BarFillLow
	}
}
